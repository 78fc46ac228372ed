package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"dugout/internal/domain/model"
)

// defaultMaxPayloadBytes caps a mutation request body.
const defaultMaxPayloadBytes = 64 * 1024

// GamesHandler serves the per-game resources: mutations, events, stream.
type GamesHandler struct {
	deps            Dependencies
	stream          StreamServer
	maxPayloadBytes int64
}

// NewGamesHandler creates the handler for /games/ routes.
func NewGamesHandler(deps Dependencies, stream StreamServer) *GamesHandler {
	return &GamesHandler{
		deps:            deps,
		stream:          stream,
		maxPayloadBytes: defaultMaxPayloadBytes,
	}
}

// HandleGames dispatches /games/{account}/{game}/{resource} requests.
func (h *GamesHandler) HandleGames(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/games/"), "/"), "/")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" {
		http.NotFound(w, r)
		return
	}
	accountID, gameID, resource := parts[0], parts[1], parts[2]

	switch resource {
	case "mutations":
		MetricsMiddleware(func(w http.ResponseWriter, r *http.Request) {
			h.handleMutation(w, r, accountID, gameID)
		}, "mutations")(w, r)
	case "events":
		MetricsMiddleware(func(w http.ResponseWriter, r *http.Request) {
			h.handleEvents(w, r, accountID, gameID)
		}, "events")(w, r)
	case "stream":
		if r.Method != http.MethodGet {
			http.NotFound(w, r)
			return
		}
		h.stream.Serve(w, r, accountID, gameID)
	default:
		http.NotFound(w, r)
	}
}

// handleMutation handles POST /games/{account}/{game}/mutations.
func (h *GamesHandler) handleMutation(w http.ResponseWriter, r *http.Request, accountID, gameID string) {
	const op = "api.post_mutation"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxPayloadBytes)
	var req mutationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	res, err := h.deps.Ingest(r.Context(), accountID, gameID, req.toMutation())
	if err != nil {
		status, code := statusFor(err)
		writeError(w, status, code, err)
		return
	}

	writeJSON(w, http.StatusOK, mutationResponse{
		ServerEventID: res.ServerEventID,
		Sequence:      res.Sequence,
		Event:         res.Event,
	})
}

// handleEvents handles GET /games/{account}/{game}/events.
func (h *GamesHandler) handleEvents(w http.ResponseWriter, r *http.Request, accountID, gameID string) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	events := h.deps.List(r.Context(), accountID, gameID)
	out := make([]map[string]any, len(events))
	for i, e := range events {
		out[i] = e.Confirmed()
	}
	writeJSON(w, http.StatusOK, eventsResponse{Events: out})
}

// mutationRequest mirrors the wire-level mutation envelope.
type mutationRequest struct {
	Type          string         `json:"type"`
	ClientEventID string         `json:"client_event_id"`
	ServerEventID string         `json:"server_event_id"`
	Sequence      int64          `json:"sequence"`
	Event         map[string]any `json:"event"`
	Audit         auditRequest   `json:"audit"`
}

type auditRequest struct {
	UserName  string `json:"user_name"`
	DeviceID  string `json:"device_id"`
	Timestamp string `json:"timestamp"`
}

func (m mutationRequest) validate() error {
	switch m.Type {
	case string(model.MutationCreate), string(model.MutationUpdate), string(model.MutationDelete):
	case "":
		return errors.New("missing type")
	default:
		return errors.New("unsupported type; must be create, update or delete")
	}
	if m.Audit.Timestamp != "" {
		if _, err := time.Parse(time.RFC3339, m.Audit.Timestamp); err != nil {
			return errors.New("invalid audit.timestamp; must be RFC3339")
		}
	}
	return nil
}

func (m mutationRequest) toMutation() model.Mutation {
	ts, _ := time.Parse(time.RFC3339, m.Audit.Timestamp)
	return model.Mutation{
		Type:          model.MutationType(m.Type),
		ClientEventID: m.ClientEventID,
		ServerEventID: m.ServerEventID,
		Sequence:      m.Sequence,
		Event:         m.Event,
		Audit: model.Audit{
			UserName:  m.Audit.UserName,
			DeviceID:  m.Audit.DeviceID,
			Timestamp: ts,
		},
	}
}

// mutationResponse mirrors the wire-level mutation result. Event is null
// after a successful delete.
type mutationResponse struct {
	ServerEventID string         `json:"server_event_id"`
	Sequence      int64          `json:"sequence"`
	Event         map[string]any `json:"event"`
}

type eventsResponse struct {
	Events []map[string]any `json:"events"`
}
