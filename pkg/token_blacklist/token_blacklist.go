package tokenblacklist

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/limbo/worklog/pkg/cleanup"
)

const keyPrefix = "revoked_token:"

// Blacklist keeps revoked refresh tokens in redis until their natural expiry.
// Access tokens are short-lived and are not tracked. maxTTL caps every entry
// at the longest token life so a skewed expiry claim can't pin a key forever.
type Blacklist struct {
	client *redis.Client
	maxTTL time.Duration
}

func New(redisURL string, maxTTL time.Duration) (*Blacklist, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, errors.New("parsing redis url error: " + err.Error())
	}
	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.New("pinging redis error: " + err.Error())
	}
	cleanup.Register(&cleanup.Job{
		Name: "closing redis client",
		F:    client.Close,
	})
	return &Blacklist{client: client, maxTTL: maxTTL}, nil
}

func NewWithClient(client *redis.Client, maxTTL time.Duration) *Blacklist {
	return &Blacklist{client: client, maxTTL: maxTTL}
}

func (b *Blacklist) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		// Already expired, nothing to reject later
		return nil
	}
	err := b.client.Set(ctx, keyPrefix+token, "1", b.clampTTL(ttl)).Err()
	if err != nil {
		return errors.New("revoking token error: " + err.Error())
	}
	return nil
}

func (b *Blacklist) clampTTL(ttl time.Duration) time.Duration {
	if b.maxTTL > 0 && ttl > b.maxTTL {
		return b.maxTTL
	}
	return ttl
}

func (b *Blacklist) IsRevoked(ctx context.Context, token string) (bool, error) {
	_, err := b.client.Get(ctx, keyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, errors.New("checking token revocation error: " + err.Error())
	}
	return true, nil
}
