package live

import (
	"context"
	"encoding/json"

	"sentra/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Subscriber interface {
	SubscribeIncidentEvents(ctx context.Context) *redis.PubSub
}

// Listen relays incident events published by any API instance into the
// hub until ctx is done.
func (h *Hub) Listen(ctx context.Context, sub Subscriber) {
	pubsub := sub.SubscribeIncidentEvents(ctx)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var ev models.IncidentEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				h.log.Warn("malformed incident event", zap.String("channel", msg.Channel), zap.Error(err))
				continue
			}
			if !h.Broadcast(ctx, ev) {
				return
			}
		}
	}
}
