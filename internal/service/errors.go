package service

import (
	"errors"
	"fmt"
	"sort"

	"github.com/emrgen/headline/internal/store"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	// ErrHeadlineNotFound is returned when a headline does not exist or is deleted.
	ErrHeadlineNotFound = status.Error(codes.NotFound, "headline not found")
)

// FieldErrors maps a request field to its messages.
type FieldErrors map[string][]string

func (f FieldErrors) Add(field, message string) {
	f[field] = append(f[field], message)
}

func (f FieldErrors) Empty() bool {
	return len(f) == 0
}

// NewValidationError builds an InvalidArgument status carrying the field messages.
func NewValidationError(fields FieldErrors) error {
	return withFieldViolations(codes.InvalidArgument, "the given data was invalid", fields)
}

// newConflictError builds an AlreadyExists status naming the offending field.
func newConflictError(field string) error {
	return withFieldViolations(codes.AlreadyExists, fmt.Sprintf("%s is duplicated.", field), FieldErrors{
		field: {fmt.Sprintf("%s is duplicated.", field)},
	})
}

func withFieldViolations(code codes.Code, message string, fields FieldErrors) error {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	badRequest := &errdetails.BadRequest{}
	for _, name := range names {
		for _, msg := range fields[name] {
			badRequest.FieldViolations = append(badRequest.FieldViolations, &errdetails.BadRequest_FieldViolation{
				Field:       name,
				Description: msg,
			})
		}
	}

	st, err := status.New(code, message).WithDetails(badRequest)
	if err != nil {
		return status.Error(code, message)
	}

	return st.Err()
}

// FieldViolations returns the per-field messages carried by err, if any.
func FieldViolations(err error) FieldErrors {
	st, ok := status.FromError(err)
	if !ok {
		return nil
	}

	var fields FieldErrors
	for _, detail := range st.Details() {
		badRequest, ok := detail.(*errdetails.BadRequest)
		if !ok {
			continue
		}
		if fields == nil {
			fields = make(FieldErrors)
		}
		for _, v := range badRequest.GetFieldViolations() {
			fields.Add(v.GetField(), v.GetDescription())
		}
	}

	return fields
}

// notFound maps store misses onto the NotFound status.
func notFound(err error) error {
	if errors.Is(err, store.ErrHeadlineNotFound) {
		return ErrHeadlineNotFound
	}
	return err
}
