// Package service serves lookups against a published index over HTTP.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/brimdata/airindex/aie"
	"github.com/brimdata/airindex/lookup"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

type Config struct {
	Index              *lookup.Index
	Registry           *prometheus.Registry
	Logger             *zap.Logger
	CORSAllowedOrigins []string
}

type LookupResponse struct {
	Key      uint64 `json:"key"`
	Position uint64 `json:"position"`
	Found    bool   `json:"found"`
}

type ErrorResponse struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

type handler struct {
	index  *lookup.Index
	logger *zap.Logger
}

// NewHandler returns the HTTP API:
//
//	GET /lookup/{key}  position of key
//	GET /stats         lookup counters
//	GET /metrics       Prometheus metrics
//	GET /status        liveness
func NewHandler(conf Config) http.Handler {
	logger := conf.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &handler{index: conf.Index, logger: logger}
	router := mux.NewRouter()
	router.Use(requestIDMiddleware())
	router.Use(accessLogMiddleware(logger))
	router.Use(panicCatchMiddleware(logger))
	router.HandleFunc("/lookup/{key}", h.handleLookup).Methods("GET")
	router.HandleFunc("/stats", h.handleStats).Methods("GET")
	router.HandleFunc("/status", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	}).Methods("GET")
	if conf.Registry != nil {
		router.Handle("/metrics", promhttp.HandlerFor(conf.Registry, promhttp.HandlerOpts{})).Methods("GET")
	}
	origins := conf.CORSAllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet},
	}).Handler(router)
}

func (h *handler) handleLookup(w http.ResponseWriter, r *http.Request) {
	key, err := strconv.ParseUint(mux.Vars(r)["key"], 10, 64)
	if err != nil {
		h.error(w, r, aie.E(aie.Config, "bad key: %w", err))
		return
	}
	pos, found, err := h.index.Lookup(r.Context(), key)
	if err != nil {
		h.error(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, LookupResponse{Key: key, Position: pos, Found: found})
}

func (h *handler) handleStats(w http.ResponseWriter, r *http.Request) {
	h.respond(w, http.StatusOK, h.index.Stats())
}

func (h *handler) respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Warn("Error writing response", zap.Error(err))
	}
}

func (h *handler) error(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status >= 500 {
		h.logger.Warn("Lookup failed",
			zap.Error(err),
			zap.String("request_id", RequestIDFromContext(r.Context())),
		)
	}
	h.respond(w, status, ErrorResponse{Type: aie.KindOf(err).String(), Error: err.Error()})
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, context.Canceled):
		return 499
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	switch aie.KindOf(err) {
	case aie.Config:
		return http.StatusBadRequest
	case aie.NotFound:
		return http.StatusNotFound
	case aie.Storage:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
