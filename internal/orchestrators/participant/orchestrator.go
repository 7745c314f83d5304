// Package participant keeps the room participant name in step with the
// character shown on the host page
package participant

//go:generate mockgen -destination=mock/mock_service.go -package=participantmock github.com/KirkDiggler/dice-bridge/internal/orchestrators/participant Service

import (
	"context"
	"log/slog"

	"github.com/KirkDiggler/dice-bridge/internal/clients/rolling"
	"github.com/KirkDiggler/dice-bridge/internal/engine"
	"github.com/KirkDiggler/dice-bridge/internal/errors"
	"github.com/KirkDiggler/dice-bridge/internal/notify"
	"github.com/KirkDiggler/dice-bridge/internal/page"
	"github.com/KirkDiggler/dice-bridge/internal/repositories/settings"
	"github.com/KirkDiggler/dice-bridge/internal/systems"
)

// Service syncs participant names
type Service interface {
	SyncParticipantName(ctx context.Context, input *SyncParticipantNameInput) (*SyncParticipantNameOutput, error)
}

// SyncParticipantNameInput names the active game system
type SyncParticipantNameInput struct {
	System *systems.GameSystemConfig
}

// SyncParticipantNameOutput reports whether the remote record changed
type SyncParticipantNameOutput struct {
	Updated  bool
	Username string
}

// Config holds the dependencies for the participant orchestrator
type Config struct {
	Engine   engine.Engine
	Settings settings.Store
	Document page.DocumentSource
	Notifier notify.Notifier
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.Engine == nil {
		vb.RequiredField("Engine")
	}
	if c.Settings == nil {
		vb.RequiredField("Settings")
	}
	if c.Document == nil {
		vb.RequiredField("Document")
	}
	if c.Notifier == nil {
		vb.RequiredField("Notifier")
	}

	return vb.Build()
}

type orchestrator struct {
	engine   engine.Engine
	settings settings.Store
	document page.DocumentSource
	notifier notify.Notifier
}

// NewOrchestrator creates a new participant orchestrator with the provided dependencies
func NewOrchestrator(cfg *Config) (Service, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &orchestrator{
		engine:   cfg.Engine,
		settings: cfg.Settings,
		document: cfg.Document,
		notifier: cfg.Notifier,
	}, nil
}

// SyncParticipantName renames the user's participant only when the name on
// the page differs. Every missing piece of context is a silent no-op.
func (o *orchestrator) SyncParticipantName(
	ctx context.Context,
	input *SyncParticipantNameInput,
) (*SyncParticipantNameOutput, error) {
	out := &SyncParticipantNameOutput{}
	if input == nil || input.System == nil || input.System.NameSelector == "" {
		return out, nil
	}

	name, ok := page.TextOf(o.document.Document(), input.System.NameSelector)
	if !ok || name == "" {
		return out, nil
	}
	out.Username = name

	user := o.engine.User()
	if user == nil || user.UUID == "" {
		return out, nil
	}

	room, err := o.settings.Room(ctx)
	if err != nil {
		return out, errors.Wrap(err, "failed to read selected room")
	}

	participant := room.ParticipantForUser(user.UUID)
	if participant == nil || participant.Username == name {
		return out, nil
	}

	client := o.engine.Client()
	if client == nil {
		return out, nil
	}
	previous := participant.Username

	updated, err := client.UpdateParticipant(ctx, &rolling.UpdateParticipantInput{
		RoomSlug:      room.Slug,
		ParticipantID: participant.ID,
		Username:      name,
	})
	if err != nil {
		slog.Error("Failed to update participant name",
			"room", room.Slug,
			"participant", participant.ID,
			"error", err)
		o.notifier.Error(ctx, errors.UserMessage(err))
		if errors.IsConnectionError(err) {
			if rerr := o.engine.Reconnect(ctx); rerr != nil {
				slog.Error("Reconnect after participant update failed", "error", rerr)
			}
		}
		return out, errors.Wrap(err, "failed to update participant")
	}

	if updated == nil || updated.Slug == "" {
		participant.Username = name
		updated = room
	}
	if err := o.settings.SetRoom(ctx, updated); err != nil {
		return out, errors.Wrap(err, "failed to store room")
	}

	slog.Info("Updated participant name",
		"room", room.Slug,
		"from", previous,
		"to", name)

	out.Updated = true
	return out, nil
}
