package rollhistory

import (
	"context"
	"time"

	"github.com/tidwall/gjson"

	"github.com/KirkDiggler/dice-bridge/internal/errors"
	"github.com/KirkDiggler/dice-bridge/internal/pkg/clock"
	redisclient "github.com/KirkDiggler/dice-bridge/internal/redis"
)

const (
	// Key pattern: dice-bridge:storage:{page key}
	storageKeyPrefix = "dice-bridge:storage:"
	defaultTTL       = 24 * time.Hour

	errKeyEmpty = "key cannot be empty"
)

// Config holds the configuration for the Redis repository
type Config struct {
	Client redisclient.Client
	Clock  clock.Clock
	// TTL bounds how long an untouched mirror survives
	TTL time.Duration
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()
	if c.Client == nil {
		vb.RequiredField("Client")
	}
	if c.Clock == nil {
		vb.RequiredField("Clock")
	}
	return vb.Build()
}

type redisRepository struct {
	client redisclient.Client
	clock  clock.Clock
	ttl    time.Duration
}

// NewRedisRepository creates a new Redis repository for mirrored roll histories
func NewRedisRepository(cfg *Config) (Repository, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	ttl := cfg.TTL
	if ttl == 0 {
		ttl = defaultTTL
	}

	return &redisRepository{
		client: cfg.Client,
		clock:  cfg.Clock,
		ttl:    ttl,
	}, nil
}

// Ensure redisRepository implements Repository
var _ Repository = (*redisRepository)(nil)

// Put stores the latest value the page wrote to a storage key
func (r *redisRepository) Put(ctx context.Context, input *PutInput) (*PutOutput, error) {
	if input == nil || input.Key == "" {
		return nil, errors.InvalidArgument(errKeyEmpty)
	}

	if err := r.client.Set(ctx, r.buildKey(input.Key), input.Value, r.ttl).Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to store %s in Redis", input.Key)
	}

	return &PutOutput{UpdatedAt: r.clock.Now()}, nil
}

// Get returns the mirrored value of a key
func (r *redisRepository) Get(ctx context.Context, input *GetInput) (*GetOutput, error) {
	if input == nil || input.Key == "" {
		return nil, errors.InvalidArgument(errKeyEmpty)
	}

	value, err := r.client.Get(ctx, r.buildKey(input.Key)).Result()
	if err != nil {
		if redisclient.IsNil(err) {
			return nil, errors.NotFoundf("storage key %s not found", input.Key)
		}
		return nil, errors.Wrapf(err, "failed to get %s from Redis", input.Key)
	}

	return &GetOutput{Value: value}, nil
}

// Head returns the newest entry under the first candidate key that exists
func (r *redisRepository) Head(ctx context.Context, input *HeadInput) (*HeadOutput, error) {
	if input == nil || len(input.Keys) == 0 {
		return nil, errors.InvalidArgument("at least one key is required")
	}

	for _, key := range input.Keys {
		out, err := r.Get(ctx, &GetInput{Key: key})
		if err != nil {
			if errors.IsNotFound(err) {
				continue
			}
			return nil, err
		}

		return parseHead(key, out.Value)
	}

	return &HeadOutput{}, nil
}

// Remove drops a mirrored key
func (r *redisRepository) Remove(ctx context.Context, input *RemoveInput) error {
	if input == nil || input.Key == "" {
		return errors.InvalidArgument(errKeyEmpty)
	}

	if err := r.client.Del(ctx, r.buildKey(input.Key)).Err(); err != nil {
		return errors.Wrapf(err, "failed to delete %s from Redis", input.Key)
	}
	return nil
}

func (r *redisRepository) buildKey(key string) string {
	return storageKeyPrefix + key
}

func parseHead(key, raw string) (*HeadOutput, error) {
	if !gjson.Valid(raw) {
		return nil, errors.InvalidArgumentf("roll history %s is not valid JSON", key)
	}

	history := gjson.Parse(raw)
	if !history.IsArray() {
		return nil, errors.InvalidArgumentf("roll history %s is not an array", key)
	}

	first := history.Get("0")
	if !first.Exists() || first.Type == gjson.Null {
		return &HeadOutput{Key: key}, nil
	}

	return &HeadOutput{
		Found: true,
		Key:   key,
		Entry: []byte(first.Raw),
	}, nil
}
