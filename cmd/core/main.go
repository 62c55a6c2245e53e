package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"google.golang.org/grpc"

	"github.com/losalerces/backend/internal/app"
	"github.com/losalerces/backend/internal/repository"
	"github.com/losalerces/backend/internal/service"
	"github.com/losalerces/backend/internal/token"
)

func main() {
	profile := flag.String("profile", os.Getenv("APP_PROFILE"), "configuration profile (configs/<profile>.yaml)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *profile); err != nil {
		fmt.Fprintln(os.Stderr, "core:", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, profile string) error {
	deps, err := app.Bootstrap(profile, "core")
	if err != nil {
		return err
	}
	defer deps.Close()
	log := deps.Log

	var extra []grpc.UnaryServerInterceptor
	if deps.Config.GRPC.RequireAuth {
		issuer, err := token.NewIssuer(deps.Config.JWT)
		if err != nil {
			return fmt.Errorf("init token issuer: %w", err)
		}
		extra = append(extra, service.AuthInterceptor(issuer, "/grpc.health.v1.", "/grpc.reflection."))
	}

	catalog := service.NewCatalogService(
		repository.NewGormClientRepository(deps.DB),
		repository.NewGormProductRepository(deps.DB),
		repository.NewGormStaffRepository(deps.DB),
		repository.NewGormQuotationRepository(deps.DB),
		log,
	)

	srv, hs := service.NewServer(log, deps.Metrics, extra...)
	service.RegisterCatalogServiceServer(srv, catalog)
	service.MarkServing(hs, service.CatalogServiceName)

	if err := deps.Serve(ctx, srv, deps.Config.GRPC.CoreAddr); err != nil {
		log.Error("core server stopped", "error", err)
		return err
	}
	return nil
}
