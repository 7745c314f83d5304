// Package engine owns the process-wide handle to the rolling service.
//
// The handle is built from the stored API key, verified against the
// service with exponential backoff, and dropped on teardown or reload.
// Callers fetch the client per operation and never keep it across a
// Reconnect.
package engine

//go:generate mockgen -destination=mock/mock_engine.go -package=enginemock github.com/KirkDiggler/dice-bridge/internal/engine Engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/KirkDiggler/dice-bridge/internal/clients/rolling"
	"github.com/KirkDiggler/dice-bridge/internal/entities"
	"github.com/KirkDiggler/dice-bridge/internal/errors"
	"github.com/KirkDiggler/dice-bridge/internal/repositories/settings"
)

const (
	defaultInitAttempts    = 5
	defaultInitialInterval = 500 * time.Millisecond
	defaultMaxInterval     = 8 * time.Second
)

// Engine is the rendering engine handle
type Engine interface {
	// Connect builds the client from the stored API key and verifies it.
	// It is a no-op when already ready.
	Connect(ctx context.Context) error

	// Reconnect drops the current handle and connects again
	Reconnect(ctx context.Context) error

	// Close drops the handle and cached state
	Close()

	// Initialized reports whether a client has been constructed
	Initialized() bool

	// Ready reports whether the service accepted the API key
	Ready() bool

	// Client returns the current client or nil when not initialized
	Client() rolling.Client

	// User returns the account behind the API key once ready
	User() *entities.User

	// PreloadTheme fetches a theme into the cache
	PreloadTheme(ctx context.Context, themeID string) (*entities.Theme, error)
}

// ClientFactory builds a rolling client for an API key
type ClientFactory func(apiKey string) (rolling.Client, error)

// Config holds the engine dependencies
type Config struct {
	Settings  settings.Store
	NewClient ClientFactory

	// InitAttempts caps connect attempts (optional, defaults to 5)
	InitAttempts int
	// InitialInterval is the first backoff delay (optional)
	InitialInterval time.Duration
	// MaxInterval caps the backoff delay (optional)
	MaxInterval time.Duration
}

// Validate validates the Config and sets defaults if not provided.
func (cfg *Config) Validate() error {
	vb := errors.NewValidationBuilder()
	if cfg.Settings == nil {
		vb.RequiredField("Settings")
	}
	if cfg.NewClient == nil {
		vb.RequiredField("NewClient")
	}
	if cfg.InitAttempts == 0 {
		cfg.InitAttempts = defaultInitAttempts
	}
	errors.ValidatePositive("InitAttempts", int64(cfg.InitAttempts), vb)
	if cfg.InitialInterval == 0 {
		cfg.InitialInterval = defaultInitialInterval
	}
	if cfg.MaxInterval == 0 {
		cfg.MaxInterval = defaultMaxInterval
	}
	return vb.Build()
}

type engine struct {
	settings        settings.Store
	newClient       ClientFactory
	initAttempts    int
	initialInterval time.Duration
	maxInterval     time.Duration

	mu         sync.RWMutex
	client     rolling.Client
	user       *entities.User
	ready      bool
	generation uint64
	themes     map[string]*entities.Theme
}

var _ Engine = (*engine)(nil)

// New creates an engine handle. Nothing connects until Connect is called.
func New(cfg *Config) (Engine, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &engine{
		settings:        cfg.Settings,
		newClient:       cfg.NewClient,
		initAttempts:    cfg.InitAttempts,
		initialInterval: cfg.InitialInterval,
		maxInterval:     cfg.MaxInterval,
		themes:          make(map[string]*entities.Theme),
	}, nil
}

func (e *engine) Connect(ctx context.Context) error {
	e.mu.RLock()
	if e.ready {
		e.mu.RUnlock()
		return nil
	}
	gen := e.generation
	e.mu.RUnlock()

	apiKey, err := e.settings.APIKey(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to read api key")
	}
	if apiKey == "" {
		return errors.FailedPrecondition("no API key configured")
	}

	attempts := 0
	var client rolling.Client
	var user *entities.User

	operation := func() error {
		attempts++

		c, err := e.newClient(apiKey)
		if err != nil {
			return backoff.Permanent(errors.Wrap(err, "failed to construct client"))
		}
		if !e.install(gen, c) {
			return backoff.Permanent(errors.Unavailable("engine closed during connect"))
		}

		u, err := c.GetUser(ctx)
		if err != nil {
			if errors.IsUnauthenticated(err) {
				return backoff.Permanent(err)
			}
			return err
		}

		client = c
		user = u
		return nil
	}

	notify := func(err error, wait time.Duration) {
		slog.Warn("Rolling service connect attempt failed",
			"attempt", attempts,
			"retry_in", wait,
			"error", err)
	}

	if err := backoff.RetryNotify(operation, e.policy(ctx), notify); err != nil {
		slog.Error("Failed to connect to rolling service",
			"attempts", attempts,
			"error", err)
		e.mu.Lock()
		if e.generation == gen {
			e.client = nil
		}
		e.mu.Unlock()

		if errors.IsUnauthenticated(err) || errors.IsInvalidArgument(err) {
			return errors.Wrap(err, "failed to connect to rolling service").WithMeta("attempts", attempts)
		}
		return errors.WrapWithCode(err, errors.CodeUnavailable, "failed to connect to rolling service").
			WithMeta("attempts", attempts)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.generation != gen || e.client != client {
		return errors.Unavailable("engine was reset during connect")
	}
	e.user = user
	e.ready = true

	slog.Info("Connected to rolling service",
		"user", user.Username,
		"attempts", attempts)
	return nil
}

// install stores a freshly constructed client unless the handle was reset
func (e *engine) install(gen uint64, c rolling.Client) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.generation != gen {
		return false
	}
	e.client = c
	return true
}

func (e *engine) policy(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = e.initialInterval
	b.MaxInterval = e.maxInterval
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(e.initAttempts-1)), ctx)
}

func (e *engine) Reconnect(ctx context.Context) error {
	slog.Info("Reconnecting to rolling service")
	e.reset()
	return e.Connect(ctx)
}

func (e *engine) Close() {
	e.reset()
}

func (e *engine) reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.generation++
	e.client = nil
	e.user = nil
	e.ready = false
	e.themes = make(map[string]*entities.Theme)
}

func (e *engine) Initialized() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.client != nil
}

func (e *engine) Ready() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ready
}

func (e *engine) Client() rolling.Client {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.client
}

func (e *engine) User() *entities.User {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.user
}

func (e *engine) PreloadTheme(ctx context.Context, themeID string) (*entities.Theme, error) {
	if themeID == "" {
		return nil, errors.InvalidArgument("theme id is required")
	}

	e.mu.RLock()
	cached, ok := e.themes[themeID]
	client := e.client
	e.mu.RUnlock()
	if ok {
		return cached, nil
	}
	if client == nil {
		return nil, errors.FailedPrecondition("dice engine is not initialized")
	}

	theme, err := client.GetTheme(ctx, themeID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to preload theme %s", themeID)
	}

	e.mu.Lock()
	if e.client == client {
		e.themes[themeID] = theme
	}
	e.mu.Unlock()

	slog.Debug("Preloaded theme", "theme", themeID, "dice", len(theme.DieTypes))
	return theme, nil
}
