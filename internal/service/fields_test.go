package service

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

func TestToInt64(t *testing.T) {
	tests := []struct {
		name    string
		in      *structpb.Value
		want    int64
		wantErr bool
	}{
		{"integer", structpb.NewNumberValue(42), 42, false},
		{"negative", structpb.NewNumberValue(-7), -7, false},
		{"lowest", structpb.NewNumberValue(-0x1p63), math.MinInt64, false},
		{"fraction", structpb.NewNumberValue(1.5), 0, true},
		{"two to the 63", structpb.NewNumberValue(0x1p63), 0, true},
		{"max int64 as float", structpb.NewNumberValue(float64(math.MaxInt64)), 0, true},
		{"below range", structpb.NewNumberValue(-0x1p64), 0, true},
		{"infinity", structpb.NewNumberValue(math.Inf(1)), 0, true},
		{"string", structpb.NewStringValue("42"), 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := toInt64(tt.in, "id")
			if tt.wantErr {
				assert.Equal(t, codes.InvalidArgument, status.Code(err))
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
