package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"sentra/backend/internal/apperr"
	"sentra/backend/internal/models"

	"github.com/redis/go-redis/v9"
)

const revokedTokenPrefix = "sentra:revoked:"

// PublishIncidentEvent broadcasts ev to every API instance listening on the
// events channel.
func (s *Service) PublishIncidentEvent(ctx context.Context, ev models.IncidentEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return apperr.Unexpected(err)
	}
	if err := s.Redis.Publish(ctx, s.EventsChannel, payload).Err(); err != nil {
		return apperr.Unexpected(fmt.Errorf("publish %s: %w", ev.Type, err))
	}
	return nil
}

func (s *Service) SubscribeIncidentEvents(ctx context.Context) *redis.PubSub {
	return s.Redis.Subscribe(ctx, s.EventsChannel)
}

// RevokeToken denylists a token id until the token would have expired
// anyway. Non-positive ttl is a no-op.
func (s *Service) RevokeToken(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := s.Redis.Set(ctx, revokedTokenPrefix+jti, "1", ttl).Err(); err != nil {
		return apperr.Unexpected(err)
	}
	return nil
}

func (s *Service) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.Redis.Exists(ctx, revokedTokenPrefix+jti).Result()
	if err != nil {
		return false, apperr.Unexpected(err)
	}
	return n > 0, nil
}
