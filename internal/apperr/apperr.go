// Package apperr is the error taxonomy shared by the services.
//
// Every failure that leaves a service operation is an *Error carrying a
// canonical gRPC code, a stable reason string and a human-readable message.
// The same value can be turned into a gRPC status or an HTTP status.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	ReasonValidation         = "validation"
	ReasonNotFound           = "not_found"
	ReasonConflict           = "conflict"
	ReasonMultipleOpenOrders = "multiple_open_orders"
	ReasonPersistence        = "persistence"
	ReasonUnavailable        = "unavailable"
	ReasonUnauthenticated    = "unauthenticated"
	ReasonForbidden          = "forbidden"
)

type Error struct {
	Code    codes.Code
	Reason  string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// GRPCStatus lets status.FromError and status.Code read the error directly.
func (e *Error) GRPCStatus() *status.Status {
	return status.New(e.Code, e.Message)
}

// HTTPStatus maps the canonical code onto the HTTP status the handlers send.
func (e *Error) HTTPStatus() int {
	switch e.Code {
	case codes.InvalidArgument, codes.OutOfRange:
		return http.StatusBadRequest
	case codes.NotFound:
		return http.StatusNotFound
	case codes.FailedPrecondition, codes.Aborted, codes.AlreadyExists:
		return http.StatusConflict
	case codes.Unauthenticated:
		return http.StatusUnauthorized
	case codes.PermissionDenied:
		return http.StatusForbidden
	case codes.Unavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func Validation(format string, args ...any) *Error {
	return &Error{Code: codes.InvalidArgument, Reason: ReasonValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) *Error {
	return &Error{Code: codes.NotFound, Reason: ReasonNotFound, Message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) *Error {
	return &Error{Code: codes.FailedPrecondition, Reason: ReasonConflict, Message: fmt.Sprintf(format, args...)}
}

// Consistency flags stored state that violates an invariant the service
// relies on; an operator has to look at it.
func Consistency(reason, format string, args ...any) *Error {
	return &Error{Code: codes.Aborted, Reason: reason, Message: fmt.Sprintf(format, args...)}
}

func Persistence(err error, format string, args ...any) *Error {
	return &Error{Code: codes.Internal, Reason: ReasonPersistence, Message: fmt.Sprintf(format, args...), Err: err}
}

func Unavailable(err error, format string, args ...any) *Error {
	return &Error{Code: codes.Unavailable, Reason: ReasonUnavailable, Message: fmt.Sprintf(format, args...), Err: err}
}

func Unauthenticated() *Error {
	return &Error{Code: codes.Unauthenticated, Reason: ReasonUnauthenticated, Message: "unauthorized"}
}

func Forbidden() *Error {
	return &Error{Code: codes.PermissionDenied, Reason: ReasonForbidden, Message: "insufficient permissions"}
}

// From categorizes err. Values that are already *Error pass through; anything
// else is treated as a persistence failure.
func From(err error, msg string) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return Persistence(err, "%s", msg)
}

// Is reports whether err is an *Error with the given reason.
func Is(err error, reason string) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Reason == reason
}
