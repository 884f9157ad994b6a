package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	v1 "github.com/emrgen/headline/apis/v1"
	"github.com/emrgen/headline/internal/service"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"github.com/sirupsen/logrus"
)

// decoder reads request bodies. The mux marshaler only encodes responses,
// JSONPb allocates nil pointers when decoding non-proto values and would
// lose the difference between null and an empty list.
var decoder = &runtime.JSONBuiltin{}

// headlineHandler adapts the headline service to REST routes.
type headlineHandler struct {
	mux *runtime.ServeMux
	svc v1.HeadlineServiceServer
}

// outbound returns the response marshaler the mux picks for r.
func (h *headlineHandler) outbound(r *http.Request) runtime.Marshaler {
	_, m := runtime.MarshalerForRequest(h.mux, r)
	return m
}

// RegisterHeadlineRoutes registers the headline routes on mux under prefix.
func RegisterHeadlineRoutes(mux *runtime.ServeMux, prefix string, svc v1.HeadlineServiceServer) error {
	prefix = strings.TrimRight(prefix, "/")
	if prefix != "" && !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}

	h := &headlineHandler{mux: mux, svc: svc}
	routes := []struct {
		method  string
		path    string
		handler runtime.HandlerFunc
	}{
		{http.MethodGet, "/categories", h.listCategories},
		{http.MethodGet, "/headlines", h.listHeadlines},
		{http.MethodPost, "/headlines", h.createHeadline},
		{http.MethodGet, "/headlines/{id}", h.getHeadline},
		{http.MethodPut, "/headlines/{id}", h.updateHeadline},
		{http.MethodPatch, "/headlines/{id}", h.updateHeadline},
		{http.MethodDelete, "/headlines/{id}", h.deleteHeadline},
	}

	for _, route := range routes {
		if err := mux.HandlePath(route.method, prefix+route.path, observe(route.path, route.handler)); err != nil {
			return fmt.Errorf("register %s %s: %w", route.method, route.path, err)
		}
	}

	return nil
}

func (h *headlineHandler) listCategories(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	res, err := h.svc.ListCategories(r.Context(), &v1.ListCategoriesRequest{})
	if err != nil {
		writeError(w, r, h.outbound(r), err)
		return
	}

	writeJSON(w, h.outbound(r), http.StatusOK, res)
}

func (h *headlineHandler) listHeadlines(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	res, err := h.svc.ListHeadlines(r.Context(), &v1.ListHeadlinesRequest{
		Categories: r.URL.Query().Get("categories"),
	})
	if err != nil {
		writeError(w, r, h.outbound(r), err)
		return
	}

	writeJSON(w, h.outbound(r), http.StatusOK, res)
}

func (h *headlineHandler) getHeadline(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
	id, ok := parseID(pathParams)
	if !ok {
		writeError(w, r, h.outbound(r), service.ErrHeadlineNotFound)
		return
	}

	res, err := h.svc.GetHeadline(r.Context(), &v1.GetHeadlineRequest{Id: id})
	if err != nil {
		writeError(w, r, h.outbound(r), err)
		return
	}

	writeJSON(w, h.outbound(r), http.StatusOK, res)
}

func (h *headlineHandler) createHeadline(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	req := &v1.CreateHeadlineRequest{}
	if !decodeBody(w, r, h.outbound(r), headlineBodyFields(&req.Title, &req.Category, &req.Description, &req.ForwardRefs, &req.BackwardRefs)) {
		return
	}

	res, err := h.svc.CreateHeadline(r.Context(), req)
	if err != nil {
		writeError(w, r, h.outbound(r), err)
		return
	}

	writeJSON(w, h.outbound(r), http.StatusCreated, res)
}

func (h *headlineHandler) updateHeadline(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
	id, ok := parseID(pathParams)
	if !ok {
		writeError(w, r, h.outbound(r), service.ErrHeadlineNotFound)
		return
	}

	req := &v1.UpdateHeadlineRequest{Id: id}
	if !decodeBody(w, r, h.outbound(r), headlineBodyFields(&req.Title, &req.Category, &req.Description, &req.ForwardRefs, &req.BackwardRefs)) {
		return
	}

	res, err := h.svc.UpdateHeadline(r.Context(), req)
	if err != nil {
		writeError(w, r, h.outbound(r), err)
		return
	}

	writeJSON(w, h.outbound(r), http.StatusOK, res)
}

func (h *headlineHandler) deleteHeadline(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
	id, ok := parseID(pathParams)
	if !ok {
		writeError(w, r, h.outbound(r), service.ErrHeadlineNotFound)
		return
	}

	if _, err := h.svc.DeleteHeadline(r.Context(), &v1.DeleteHeadlineRequest{Id: id}); err != nil {
		writeError(w, r, h.outbound(r), err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// parseID accepts positive decimal ids only.
func parseID(pathParams map[string]string) (uint, bool) {
	id, err := strconv.ParseUint(pathParams["id"], 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}

	return uint(id), true
}

type bodyField struct {
	name   string
	target any
	array  bool
}

func headlineBodyFields(title **string, category, description *v1.OptionalString, forward, backward **[]uint) []bodyField {
	return []bodyField{
		{name: "title", target: title},
		{name: "category", target: category},
		{name: "description", target: description},
		{name: "forwardRefs", target: forward, array: true},
		{name: "backwardRefs", target: backward, array: true},
	}
}

// decodeBody decodes a JSON object field by field so a type mismatch is
// reported against the field that caused it. It writes the error response
// itself and reports whether the handler should go on.
func decodeBody(w http.ResponseWriter, r *http.Request, m runtime.Marshaler, fields []bodyField) bool {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, m, http.StatusBadRequest, &messageBody{Message: "could not read request body"})
		return false
	}

	// an empty body is an empty object
	raw := map[string]json.RawMessage{}
	if len(bytes.TrimSpace(data)) > 0 {
		if err = decoder.Unmarshal(data, &raw); err != nil {
			logrus.Debugf("invalid request body: %v", err)
			writeJSON(w, m, http.StatusBadRequest, &messageBody{Message: "request body must be a JSON object"})
			return false
		}
	}

	violations := make(service.FieldErrors)
	for _, field := range fields {
		value, ok := raw[field.name]
		if !ok {
			continue
		}

		err = decoder.Unmarshal(value, field.target)
		var typeErr *json.UnmarshalTypeError
		switch {
		case err == nil:
		case !errors.As(err, &typeErr):
			violations.Add(field.name, fmt.Sprintf("The %s field is invalid.", field.name))
		case field.array && bytes.HasPrefix(bytes.TrimSpace(value), []byte("[")):
			violations.Add(field.name, fmt.Sprintf("The selected %s is invalid.", field.name))
		case field.array:
			violations.Add(field.name, fmt.Sprintf("The %s field must be an array.", field.name))
		default:
			violations.Add(field.name, fmt.Sprintf("The %s field must be a string.", field.name))
		}
	}

	if !violations.Empty() {
		writeError(w, r, m, service.NewValidationError(violations))
		return false
	}

	return true
}

func writeJSON(w http.ResponseWriter, m runtime.Marshaler, code int, body any) {
	data, err := m.Marshal(body)
	if err != nil {
		logrus.Errorf("error encoding response: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", m.ContentType(body))
	w.WriteHeader(code)
	_, _ = w.Write(data)
}
