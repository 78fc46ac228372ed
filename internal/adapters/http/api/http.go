// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"dugout/internal/domain/engine"
	"dugout/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Ingest applies one mutation for a game and returns the confirmed result.
	Ingest(ctx context.Context, accountID, gameID string, m model.Mutation) (model.Result, error)

	// List returns a game's confirmed events in ascending-sequence order.
	List(ctx context.Context, accountID, gameID string) []model.ScoreEvent
}

// StreamServer upgrades a viewer connection and attaches it to a game room.
type StreamServer interface {
	Serve(w http.ResponseWriter, r *http.Request, accountID, gameID string)
}

// Server wires HTTP routes for the sync API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	gamesHandler  *GamesHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, stream StreamServer, opts ...ServerOption) *Server {
	s := &Server{
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(statsProvider),
		gamesHandler:  NewGamesHandler(deps, stream),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// ServerOption applies a configuration option to the Server.
type ServerOption func(*Server)

// WithMaxPayloadBytes caps the size of a mutation request body.
func WithMaxPayloadBytes(n int64) ServerOption {
	return func(s *Server) {
		if n > 0 {
			s.gamesHandler.maxPayloadBytes = n
		}
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/games/", s.gamesHandler.HandleGames)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// statusFor maps engine errors to stable outward status codes.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, engine.ErrInvalidMutation):
		return http.StatusBadRequest, "invalid_mutation"
	case errors.Is(err, engine.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, engine.ErrSeqConflict):
		return http.StatusConflict, "sequence_conflict"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
