package changestreamcore

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Error is a coded error, pairing a plain sentinel-style message with a
// google.golang.org/grpc/codes.Code the way a Spanner client's own errors
// carry spanner.ErrCode/codes.AlreadyExists.
type Error struct {
	Code codes.Code
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// GRPCStatus lets status.Code(err) and status.FromError(err) recover the
// carried code from an *Error, matching how callers already inspect
// spanner client errors via the same grpc/status machinery.
func (e *Error) GRPCStatus() *status.Status {
	return status.New(e.Code, e.Error())
}

func newError(code codes.Code, err error, format string, args ...any) *Error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...), Err: err}
}

func errInvalidArgument(format string, args ...any) error {
	return newError(codes.InvalidArgument, nil, format, args...)
}

func errFailedPrecondition(err error, format string, args ...any) error {
	return newError(codes.FailedPrecondition, err, format, args...)
}

func errNotFound(format string, args ...any) error {
	return newError(codes.NotFound, nil, format, args...)
}

func errInternal(err error, format string, args ...any) error {
	return newError(codes.Internal, err, format, args...)
}

// Sentinels for conditions with no useful extra context (errors.Is
// comparisons only).
var (
	errSchemaMissingTable        = errors.New("changestreamcore: schema has no such table")
	errSchemaMissingChangeStream = errors.New("changestreamcore: schema has no such change stream")
)
