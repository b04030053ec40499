package ws

import (
	"context"
	"net/http"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/folio/internal/server/middleware"
	redisstore "github.com/gosuda/folio/internal/store/redis"
)

// Subscriber streams payloads published on a channel.
// *redisstore.Client satisfies this interface.
type Subscriber interface {
	Subscribe(ctx context.Context, channel string) (<-chan []byte, func(), error)
}

// Hub relays revalidation events from Redis pub/sub to WebSocket clients,
// typically an editor preview that reloads when content changes.
type Hub struct {
	sub Subscriber
}

func NewHub(sub Subscriber) *Hub {
	return &Hub{sub: sub}
}

// ServeRevalidations streams the revalidation events of the website named by
// the websiteID URL parameter. The caller must be allowed to manage it.
func (h *Hub) ServeRevalidations(w http.ResponseWriter, r *http.Request) {
	websiteID, err := uuid.Parse(chi.URLParam(r, "websiteID"))
	if err != nil {
		http.Error(w, "invalid website id", http.StatusBadRequest)
		return
	}
	if !middleware.CanManageWebsite(r.Context(), websiteID) {
		http.Error(w, "website not accessible", http.StatusForbidden)
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket accept")
		return
	}
	defer conn.CloseNow()

	// Clients only listen; CloseRead handles their control frames and cancels
	// ctx once they disconnect.
	ctx := conn.CloseRead(r.Context())

	messages, cleanup, err := h.sub.Subscribe(ctx, redisstore.RevalidationChannel(websiteID))
	if err != nil {
		log.Error().Err(err).Stringer("website_id", websiteID).Msg("websocket subscribe")
		_ = conn.Close(websocket.StatusInternalError, "subscribe failed")
		return
	}
	defer cleanup()

	for {
		select {
		case <-ctx.Done():
			_ = conn.Close(websocket.StatusNormalClosure, "connection closed")
			return
		case msg, ok := <-messages:
			if !ok {
				_ = conn.Close(websocket.StatusNormalClosure, "channel closed")
				return
			}
			if err := conn.Write(ctx, websocket.MessageText, msg); err != nil {
				log.Debug().Err(err).Msg("websocket write")
				return
			}
		}
	}
}
