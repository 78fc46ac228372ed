package ws

import (
	"net/http"

	"github.com/gorilla/websocket"

	"dugout/pkg/logger"
)

// Handler upgrades viewer connections and attaches them to a game's room.
type Handler struct {
	hub      *Hub
	upgrader websocket.Upgrader
	logger   logger.Logger
}

// NewHandler creates a websocket handler over the hub.
func NewHandler(hub *Hub) *Handler {
	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origin validation is the deployment proxy's concern
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger.Get().Named("ws"),
	}
}

// Serve upgrades the request and runs the viewer's pumps until disconnect.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request, accountID, gameID string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error(r.Context(), "websocket upgrade failed", logger.Error(err))
		return
	}

	c := newClient(conn, h.hub.bufferSize, h.logger)
	h.hub.register(accountID, gameID, c)

	h.logger.Info(r.Context(), "viewer connected",
		logger.String("account", accountID),
		logger.String("game", gameID),
	)

	c.run(func() {
		h.hub.unregister(accountID, gameID, c)
		h.logger.Info(r.Context(), "viewer disconnected",
			logger.String("account", accountID),
			logger.String("game", gameID),
		)
	})
}
