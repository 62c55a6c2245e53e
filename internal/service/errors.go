package service

import (
	"errors"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/losalerces/backend/internal/apperr"
)

// toStatus maps domain errors onto gRPC codes. Unknown errors become Internal
// without leaking their text.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	switch {
	case apperr.IsNotFound(err):
		return status.Error(codes.NotFound, err.Error())
	case apperr.IsConstraintViolation(err):
		st := status.New(codes.FailedPrecondition, err.Error())
		var cv *apperr.ConstraintViolationError
		if errors.As(err, &cv) {
			if withDetails, dErr := st.WithDetails(&errdetails.PreconditionFailure{
				Violations: []*errdetails.PreconditionFailure_Violation{{
					Type:        cv.Constraint,
					Subject:     cv.Entity + "." + cv.Field,
					Description: cv.Detail,
				}},
			}); dErr == nil {
				st = withDetails
			}
		}
		return st.Err()
	case apperr.IsValidation(err):
		st := status.New(codes.InvalidArgument, err.Error())
		var verr *apperr.ValidationError
		if errors.As(err, &verr) {
			br := &errdetails.BadRequest{}
			for _, r := range verr.Reasons {
				br.FieldViolations = append(br.FieldViolations, &errdetails.BadRequest_FieldViolation{
					Field:       r.Code,
					Description: r.Description,
				})
			}
			if withDetails, dErr := st.WithDetails(br); dErr == nil {
				st = withDetails
			}
		}
		return st.Err()
	case apperr.IsAuthenticationFailure(err):
		return status.Error(codes.Unauthenticated, apperr.ErrAuthenticationFailure.Error())
	default:
		return status.Error(codes.Internal, "internal error")
	}
}

// ValidationCodes extracts the reason codes carried by an InvalidArgument status.
func ValidationCodes(err error) []string {
	st, ok := status.FromError(err)
	if !ok {
		return nil
	}
	var out []string
	for _, d := range st.Details() {
		if br, ok := d.(*errdetails.BadRequest); ok {
			for _, v := range br.GetFieldViolations() {
				out = append(out, v.GetField())
			}
		}
	}
	return out
}
