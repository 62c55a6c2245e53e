package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/losalerces/backend/internal/logger"
	"github.com/losalerces/backend/internal/token"
)

const requestIDHeader = "x-request-id"

// LoggingInterceptor logs one line per unary call with its code and latency.
func LoggingInterceptor(log *logger.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		requestID := ""
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if v := md.Get(requestIDHeader); len(v) > 0 {
				requestID = v[0]
			}
		}
		if requestID == "" {
			requestID = uuid.NewString()
		}
		_ = grpc.SetHeader(ctx, metadata.Pairs(requestIDHeader, requestID))

		start := time.Now()
		resp, err := handler(ctx, req)
		code := status.Code(err)

		kv := []any{"method", info.FullMethod, "code", code.String(), "duration", time.Since(start), "requestID", requestID}
		switch code {
		case codes.OK:
			log.Debug("rpc", kv...)
		case codes.Internal, codes.Unknown:
			log.Error("rpc", append(kv, "error", err)...)
		default:
			log.Info("rpc", append(kv, "error", err)...)
		}
		return resp, err
	}
}

type claimsKey struct{}

// ClaimsFromContext returns the token claims stored by AuthInterceptor.
func ClaimsFromContext(ctx context.Context) (*token.Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*token.Claims)
	return c, ok
}

// AuthInterceptor requires "authorization: Bearer <token>" on every method
// whose full name does not start with one of the public prefixes.
func AuthInterceptor(issuer *token.Issuer, publicPrefixes ...string) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		for _, p := range publicPrefixes {
			if strings.HasPrefix(info.FullMethod, p) {
				return handler(ctx, req)
			}
		}

		md, _ := metadata.FromIncomingContext(ctx)
		values := md.Get("authorization")
		if len(values) == 0 {
			return nil, status.Error(codes.Unauthenticated, "missing bearer token")
		}
		raw, ok := strings.CutPrefix(values[0], "Bearer ")
		if !ok || raw == "" {
			return nil, status.Error(codes.Unauthenticated, "malformed authorization header")
		}
		claims, err := issuer.Parse(raw)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, "invalid bearer token")
		}
		return handler(context.WithValue(ctx, claimsKey{}, claims), req)
	}
}
