package server

import (
	"context"
	"fmt"
	"maps"
	"net/http"
	"slices"

	"github.com/emrgen/headline/internal/service"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type messageBody struct {
	Message string `json:"message"`
}

type validationBody struct {
	Message string              `json:"message"`
	Errors  service.FieldErrors `json:"errors"`
}

// writeError renders a service error in the response shape of its code.
func writeError(w http.ResponseWriter, r *http.Request, m runtime.Marshaler, err error) {
	st, ok := status.FromError(err)
	if !ok {
		st = status.New(codes.Unknown, err.Error())
	}

	switch st.Code() {
	case codes.InvalidArgument:
		fields := service.FieldViolations(err)
		writeJSON(w, m, http.StatusUnprocessableEntity, &validationBody{
			Message: summary(fields, st.Message()),
			Errors:  fields,
		})
	case codes.AlreadyExists:
		fields := service.FieldViolations(err)
		if fields == nil {
			fields = service.FieldErrors{}
		}
		writeJSON(w, m, http.StatusConflict, fields)
	case codes.NotFound:
		writeJSON(w, m, http.StatusNotFound, &messageBody{Message: st.Message()})
	default:
		logrus.WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"request_id": requestID(r.Context()),
		}).Errorf("request failed: %v", err)
		writeJSON(w, m, http.StatusInternalServerError, &messageBody{Message: "server error"})
	}
}

// summary picks the first field message and counts the rest.
func summary(fields service.FieldErrors, fallback string) string {
	var first string
	count := 0
	for _, name := range slices.Sorted(maps.Keys(fields)) {
		for _, msg := range fields[name] {
			if count == 0 {
				first = msg
			}
			count++
		}
	}

	switch {
	case count == 0:
		return fallback
	case count == 1:
		return first
	case count == 2:
		return fmt.Sprintf("%s (and 1 more error)", first)
	default:
		return fmt.Sprintf("%s (and %d more errors)", first, count-1)
	}
}

// routingError answers requests the mux has no route for.
func routingError(_ context.Context, _ *runtime.ServeMux, m runtime.Marshaler, w http.ResponseWriter, r *http.Request, httpStatus int) {
	switch httpStatus {
	case http.StatusMethodNotAllowed:
		writeJSON(w, m, httpStatus, &messageBody{Message: "method not allowed"})
	case http.StatusBadRequest:
		writeJSON(w, m, httpStatus, &messageBody{Message: "bad request"})
	default:
		writeJSON(w, m, http.StatusNotFound, &messageBody{Message: "not found"})
	}
}
