// Package notify delivers one-line user notifications.
//
// Every notification is logged, published on the event bus and pushed to
// a capped Redis list that the popup reads newest first.
package notify

//go:generate mockgen -destination=mock/mock_notifier.go -package=notifymock github.com/KirkDiggler/dice-bridge/internal/notify Notifier

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/KirkDiggler/rpg-toolkit/events"

	"github.com/KirkDiggler/dice-bridge/internal/entities"
	"github.com/KirkDiggler/dice-bridge/internal/errors"
	"github.com/KirkDiggler/dice-bridge/internal/pkg/clock"
	"github.com/KirkDiggler/dice-bridge/internal/pkg/idgen"
	"github.com/KirkDiggler/dice-bridge/internal/redis"
)

const (
	// EventNotification is published for every notification
	EventNotification = "dice-bridge.notification"

	// ContextNotification carries the *Notification on the event
	ContextNotification = "notification"

	defaultListKey = "dice-bridge:notifications"
	defaultLimit   = 50
	entityType     = "notification"
)

// Level is the severity shown to the user
type Level string

// Notification levels
const (
	LevelInfo  Level = "info"
	LevelError Level = "error"
)

// Notification is a single user-visible message
type Notification struct {
	ID        string    `json:"id"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Notifier shows messages to the user
type Notifier interface {
	// Info records an informational message
	Info(ctx context.Context, message string)

	// Error records a failure message
	Error(ctx context.Context, message string)

	// List returns up to limit notifications, newest first
	List(ctx context.Context, limit int) ([]*Notification, error)
}

// Config holds the notifier dependencies
type Config struct {
	Client redis.Client
	Bus    events.EventBus
	Clock  clock.Clock
	IDGen  idgen.Generator

	// ListKey overrides the Redis list (optional)
	ListKey string
	// Limit caps stored notifications (optional, defaults to 50)
	Limit int
}

// Validate validates the Config and sets defaults if not provided.
func (cfg *Config) Validate() error {
	vb := errors.NewValidationBuilder()
	if cfg.Client == nil {
		vb.RequiredField("Client")
	}
	if cfg.Bus == nil {
		vb.RequiredField("Bus")
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	if cfg.IDGen == nil {
		cfg.IDGen = idgen.NewUUID("ntf")
	}
	if cfg.ListKey == "" {
		cfg.ListKey = defaultListKey
	}
	if cfg.Limit == 0 {
		cfg.Limit = defaultLimit
	}
	errors.ValidatePositive("Limit", int64(cfg.Limit), vb)
	return vb.Build()
}

type notifier struct {
	client  redis.Client
	bus     events.EventBus
	clock   clock.Clock
	idGen   idgen.Generator
	listKey string
	limit   int
}

var _ Notifier = (*notifier)(nil)

// New creates a Notifier
func New(cfg *Config) (Notifier, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &notifier{
		client:  cfg.Client,
		bus:     cfg.Bus,
		clock:   cfg.Clock,
		idGen:   cfg.IDGen,
		listKey: cfg.ListKey,
		limit:   cfg.Limit,
	}, nil
}

func (n *notifier) Info(ctx context.Context, message string) {
	n.deliver(ctx, LevelInfo, message)
}

func (n *notifier) Error(ctx context.Context, message string) {
	n.deliver(ctx, LevelError, message)
}

func (n *notifier) deliver(ctx context.Context, level Level, message string) {
	note := &Notification{
		ID:        n.idGen.Generate(),
		Level:     level,
		Message:   message,
		CreatedAt: n.clock.Now().UTC(),
	}

	if level == LevelError {
		slog.Warn("User notification", "id", note.ID, "message", message)
	} else {
		slog.Info("User notification", "id", note.ID, "message", message)
	}

	if err := n.store(ctx, note); err != nil {
		slog.Warn("Failed to store notification", "id", note.ID, "error", err)
	}

	event := events.NewGameEvent(EventNotification, &entities.Ref{ID: note.ID, Type: entityType}, nil)
	event.Context().Set(ContextNotification, note)
	if err := n.bus.Publish(ctx, event); err != nil {
		slog.Warn("Failed to publish notification", "id", note.ID, "error", err)
	}
}

func (n *notifier) store(ctx context.Context, note *Notification) error {
	data, err := json.Marshal(note)
	if err != nil {
		return errors.Wrap(err, "failed to encode notification")
	}

	pipe := n.client.TxPipeline()
	pipe.LPush(ctx, n.listKey, data)
	pipe.LTrim(ctx, n.listKey, 0, int64(n.limit-1))
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.WrapWithCode(err, errors.CodeUnavailable, "failed to push notification")
	}
	return nil
}

func (n *notifier) List(ctx context.Context, limit int) ([]*Notification, error) {
	if limit <= 0 || limit > n.limit {
		limit = n.limit
	}

	raw, err := n.client.LRange(ctx, n.listKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "failed to read notifications")
	}

	notes := make([]*Notification, 0, len(raw))
	for _, item := range raw {
		var note Notification
		if err := json.Unmarshal([]byte(item), &note); err != nil {
			slog.Debug("Skipping malformed notification", "error", err)
			continue
		}
		notes = append(notes, &note)
	}
	return notes, nil
}
