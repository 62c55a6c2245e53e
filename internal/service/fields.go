package service

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

func stringField(req *structpb.Struct, name string) string {
	v, ok := req.GetFields()[name]
	if !ok {
		return ""
	}
	return strings.TrimSpace(v.GetStringValue())
}

// optionalString returns nil when the field is absent or blank.
func optionalString(req *structpb.Struct, name string) *string {
	s := stringField(req, name)
	if s == "" {
		return nil
	}
	return &s
}

// decimalField accepts "1250.50" or 1250.5; an absent field is zero.
func decimalField(req *structpb.Struct, name string) (decimal.Decimal, error) {
	v, ok := req.GetFields()[name]
	if !ok {
		return decimal.Zero, nil
	}
	switch k := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		d, err := decimal.NewFromString(strings.TrimSpace(k.StringValue))
		if err != nil {
			return decimal.Zero, status.Errorf(codes.InvalidArgument, "%s must be a decimal number", name)
		}
		return d, nil
	case *structpb.Value_NumberValue:
		if math.IsNaN(k.NumberValue) || math.IsInf(k.NumberValue, 0) {
			return decimal.Zero, status.Errorf(codes.InvalidArgument, "%s must be finite", name)
		}
		return decimal.NewFromFloat(k.NumberValue), nil
	default:
		return decimal.Zero, status.Errorf(codes.InvalidArgument, "%s must be a decimal number", name)
	}
}

func requiredString(req *structpb.Struct, name string) (string, error) {
	s := stringField(req, name)
	if s == "" {
		return "", status.Errorf(codes.InvalidArgument, "%s is required", name)
	}
	return s, nil
}

func toInt64(v *structpb.Value, name string) (int64, error) {
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, status.Errorf(codes.InvalidArgument, "%s must be a number", name)
	}
	f := n.NumberValue
	// float64(MaxInt64) rounds up to 2^63, so the upper bound is exclusive.
	if f != math.Trunc(f) || f < -0x1p63 || f >= 0x1p63 {
		return 0, status.Errorf(codes.InvalidArgument, "%s must be an integer", name)
	}
	return int64(f), nil
}

func requiredInt64(req *structpb.Struct, name string) (int64, error) {
	v, ok := req.GetFields()[name]
	if !ok {
		return 0, status.Errorf(codes.InvalidArgument, "%s is required", name)
	}
	return toInt64(v, name)
}

func listField(req *structpb.Struct, name string) []*structpb.Value {
	v, ok := req.GetFields()[name]
	if !ok {
		return nil
	}
	return v.GetListValue().GetValues()
}

func mustStruct(m map[string]any) (*structpb.Struct, error) {
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return s, nil
}

func indexed(name string, i int) string {
	return fmt.Sprintf("%s[%d]", name, i)
}
