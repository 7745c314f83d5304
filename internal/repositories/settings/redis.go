package settings

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/KirkDiggler/dice-bridge/internal/entities"
	"github.com/KirkDiggler/dice-bridge/internal/errors"
	redisclient "github.com/KirkDiggler/dice-bridge/internal/redis"
)

const defaultHashKey = "dice-bridge:settings"

// Config holds the configuration for the Redis settings store
type Config struct {
	Client redisclient.Client
	// HashKey overrides the Redis hash holding the settings
	HashKey string
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()
	if c.Client == nil {
		vb.RequiredField("Client")
	}
	return vb.Build()
}

type redisStore struct {
	client  redisclient.Client
	hashKey string
}

// NewRedisStore creates a settings store backed by a Redis hash
func NewRedisStore(cfg *Config) (Store, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	hashKey := cfg.HashKey
	if hashKey == "" {
		hashKey = defaultHashKey
	}

	return &redisStore{
		client:  cfg.Client,
		hashKey: hashKey,
	}, nil
}

// Ensure redisStore implements Store
var _ Store = (*redisStore)(nil)

func (s *redisStore) Get(ctx context.Context, key Key) (string, error) {
	value, err := s.client.HGet(ctx, s.hashKey, string(key)).Result()
	if err != nil {
		if redisclient.IsNil(err) {
			return "", errors.NotFoundf("setting %s not found", key)
		}
		return "", errors.Wrapf(err, "failed to read setting %s", key)
	}
	return value, nil
}

func (s *redisStore) Set(ctx context.Context, values map[Key]string) error {
	if len(values) == 0 {
		return nil
	}

	fields := make(map[string]interface{}, len(values))
	for k, v := range values {
		if !IsKnown(k) {
			return errors.InvalidArgumentf("unknown setting %s", k)
		}
		fields[string(k)] = v
	}

	if err := s.client.HSet(ctx, s.hashKey, fields).Err(); err != nil {
		return errors.Wrap(err, "failed to write settings")
	}
	return nil
}

func (s *redisStore) Remove(ctx context.Context, key Key) error {
	if err := s.client.HDel(ctx, s.hashKey, string(key)).Err(); err != nil {
		return errors.Wrapf(err, "failed to remove setting %s", key)
	}
	return nil
}

func (s *redisStore) All(ctx context.Context) (map[Key]string, error) {
	raw, err := s.client.HGetAll(ctx, s.hashKey).Result()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read settings")
	}

	out := make(map[Key]string, len(raw))
	for k, v := range raw {
		out[Key(k)] = v
	}
	return out, nil
}

func (s *redisStore) APIKey(ctx context.Context) (string, error) {
	return s.optional(ctx, KeyAPIKey)
}

func (s *redisStore) Room(ctx context.Context) (*entities.Room, error) {
	raw, err := s.optional(ctx, KeyRoom)
	if err != nil || raw == "" {
		return nil, err
	}

	var room entities.Room
	if err := json.Unmarshal([]byte(raw), &room); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInternal, "stored room is malformed")
	}
	if room.Slug == "" {
		return nil, nil
	}
	return &room, nil
}

func (s *redisStore) SetRoom(ctx context.Context, room *entities.Room) error {
	if room == nil {
		return s.Remove(ctx, KeyRoom)
	}

	data, err := json.Marshal(room)
	if err != nil {
		return errors.Wrap(err, "failed to marshal room")
	}
	return s.Set(ctx, map[Key]string{KeyRoom: string(data)})
}

func (s *redisStore) Themes(ctx context.Context) (entities.ThemeSelection, error) {
	var sel entities.ThemeSelection

	values, err := s.client.HMGet(ctx, s.hashKey,
		string(KeyTheme), string(KeyHopeTheme), string(KeyFearTheme), string(KeyPlotDieTheme)).Result()
	if err != nil {
		return sel, errors.Wrap(err, "failed to read themes")
	}

	targets := []**entities.Theme{&sel.Default, &sel.Hope, &sel.Fear, &sel.PlotDie}
	for i, v := range values {
		str, ok := v.(string)
		if !ok || str == "" {
			continue
		}
		*targets[i] = decodeTheme(str)
	}
	return sel, nil
}

func (s *redisStore) SetGameSystem(ctx context.Context, system entities.GameSystem) error {
	return s.Set(ctx, map[Key]string{KeyGameSystem: system.String()})
}

func (s *redisStore) Flag(ctx context.Context, key Key) (bool, error) {
	raw, err := s.optional(ctx, key)
	if err != nil || raw == "" {
		return false, err
	}

	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, nil
	}
	return b, nil
}

func (s *redisStore) optional(ctx context.Context, key Key) (string, error) {
	value, err := s.Get(ctx, key)
	if err != nil {
		if errors.IsNotFound(err) {
			return "", nil
		}
		return "", err
	}
	return value, nil
}

// decodeTheme accepts either a JSON theme object or a bare theme id
func decodeTheme(raw string) *entities.Theme {
	var theme entities.Theme
	if err := json.Unmarshal([]byte(raw), &theme); err == nil && theme.ID != "" {
		return &theme
	}
	return &entities.Theme{ID: raw}
}
