package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/dialin/domain"
)

// IdentityStore keeps the signed-in identity in Redis so several terminals on
// one profile share a session. Entries expire after ttl of inactivity.
type IdentityStore struct {
	client redislib.Cmdable
	key    string
	ttl    time.Duration
}

// NewIdentityStore scopes the stored identity to profile.
func NewIdentityStore(client redislib.Cmdable, profile string, ttl time.Duration) *IdentityStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if profile == "" {
		profile = "default"
	}
	return &IdentityStore{
		client: client,
		key:    fmt.Sprintf("dialin.identity:%s", profile),
		ttl:    ttl,
	}
}

func (s *IdentityStore) Load(ctx context.Context) (*domain.Identity, error) {
	result, err := s.client.Get(ctx, s.key).Result()
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var identity domain.Identity
	if err := json.Unmarshal([]byte(result), &identity); err != nil {
		return nil, err
	}
	// sliding expiry
	if err := s.client.Expire(ctx, s.key, s.ttl).Err(); err != nil {
		return nil, err
	}
	return &identity, nil
}

func (s *IdentityStore) Save(ctx context.Context, identity domain.Identity) error {
	if !identity.Valid() {
		return domain.ErrInvalidPayload
	}
	payload, err := json.Marshal(identity)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key, payload, s.ttl).Err()
}

func (s *IdentityStore) Clear(ctx context.Context) error {
	return s.client.Del(ctx, s.key).Err()
}
