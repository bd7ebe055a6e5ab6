package http

import (
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"edututor-service/internal/domain"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

// serveClassFeed streams class activity to a websocket client (the educator
// dashboard). The connection is write-only; reads only detect the close.
func (h *Handler) serveClassFeed(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	activities, cancel := h.service.Subscribe(r.Context())
	defer cancel()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case activity, ok := <-activities:
			if !ok {
				return
			}
			if err := conn.WriteJSON(outboundMessage[domain.ClassActivity]{Type: "activity", Payload: activity}); err != nil {
				h.log.Debug("ws write error", zap.Error(err))
				return
			}
		case <-closed:
			return
		case <-r.Context().Done():
			return
		}
	}
}
