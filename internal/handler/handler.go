// Package handler serves the store over HTTP with JSON bodies.
package handler

import (
	"net/http"

	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/store-inventory/internal/domain/order"
	"github.com/xenking/store-inventory/internal/domain/store"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// HandlerConfig holds non-dependency configuration for the Handler.
type HandlerConfig struct {
	// PathPrefix is prepended to every API route. Defaults to "/api".
	PathPrefix string
}

// Handler exposes store operations as JSON endpoints.
type Handler struct {
	store  *store.Store
	orders *order.Service
	prefix string
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(cfg HandlerConfig, s *store.Store, orders *order.Service) *Handler {
	prefix := cfg.PathPrefix
	if prefix == "" {
		prefix = "/api"
	}
	return &Handler{store: s, orders: orders, prefix: prefix}
}

// Register adds the API routes to mux. Routes use method patterns, so the
// otelhttp wrapper in front of mux picks the route up from r.Pattern.
func (h *Handler) Register(mux *http.ServeMux) {
	routes := []struct {
		method  string
		path    string
		handler http.HandlerFunc
	}{
		{http.MethodGet, "/products", h.ListProducts},
		{http.MethodGet, "/products/{id}", h.GetProduct},
		{http.MethodGet, "/inventory/total", h.TotalQuantity},
		{http.MethodPost, "/order", h.PlaceOrder},
		{http.MethodPut, "/products/{id}/promotion", h.SetPromotion},
		{http.MethodDelete, "/products/{id}/promotion", h.RemovePromotion},
	}
	for _, rt := range routes {
		route := h.prefix + rt.path
		mux.Handle(rt.method+" "+route, rt.handler)
	}
}

// apiError is a response that maps to the {"code","message"} body.
type apiError struct {
	status  int
	message string
}

func (e *apiError) Error() string { return e.message }

func badRequest(msg string) *apiError { return &apiError{status: http.StatusBadRequest, message: msg} }
func notFound(msg string) *apiError   { return &apiError{status: http.StatusNotFound, message: msg} }
func unprocessable(err error) *apiError {
	return &apiError{status: http.StatusUnprocessableEntity, message: err.Error()}
}

func writeJSON(w http.ResponseWriter, status int, e *jx.Encoder) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

// writeError renders err. Anything that is not an *apiError is logged and
// reported as 500 without leaking its text.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	ae, ok := err.(*apiError)
	if !ok {
		zctx.From(r.Context()).Error("Request failed", zap.Error(err))
		ae = &apiError{status: http.StatusInternalServerError, message: "internal error"}
	}

	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("code", func(e *jx.Encoder) { e.Int(ae.status) })
		e.Field("message", func(e *jx.Encoder) { e.Str(ae.message) })
	})
	writeJSON(w, ae.status, &e)
}
