package http

import (
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"movies-battle/internal/app"
	"movies-battle/internal/domain"
)

type WSHandler struct {
	ranking  *app.RankingService
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(ranking *app.RankingService, logger *zap.Logger) *WSHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WSHandler{
		ranking: ranking,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the request and streams leaderboard snapshots: the current one on
// connect, then one after every score change. Client messages are ignored.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	updates, cancel, err := h.ranking.Subscribe(r.Context())
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: "ranking unavailable"}})
		h.logger.Error("ranking subscribe failed", zap.Error(err))
		return
	}
	defer cancel()

	// The read loop only exists to notice the peer going away.
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
		case entries, ok := <-updates:
			if !ok {
				return
			}
			if entries == nil {
				entries = []domain.RankingEntry{}
			}
			if err := conn.WriteJSON(outboundMessage[[]domain.RankingEntry]{Type: "ranking", Payload: entries}); err != nil {
				h.logger.Debug("ws write error", zap.Error(err))
				return
			}
		case <-closed:
			return
		case <-r.Context().Done():
			return
		}
	}
}
