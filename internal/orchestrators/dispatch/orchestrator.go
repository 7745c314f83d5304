// Package dispatch submits normalized rolls to the rolling service
package dispatch

//go:generate mockgen -destination=mock/mock_service.go -package=dispatchmock github.com/KirkDiggler/dice-bridge/internal/orchestrators/dispatch Service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/KirkDiggler/rpg-toolkit/events"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/KirkDiggler/dice-bridge/internal/clients/rolling"
	"github.com/KirkDiggler/dice-bridge/internal/engine"
	"github.com/KirkDiggler/dice-bridge/internal/entities"
	"github.com/KirkDiggler/dice-bridge/internal/errors"
	"github.com/KirkDiggler/dice-bridge/internal/notify"
	"github.com/KirkDiggler/dice-bridge/internal/pkg/idgen"
	"github.com/KirkDiggler/dice-bridge/internal/repositories/settings"
	"github.com/KirkDiggler/dice-bridge/internal/systems"
)

// Events published on the bus
const (
	EventRollCreated = "dice-bridge.roll.created"
	EventRollFailed  = "dice-bridge.roll.failed"

	ContextLabel         = "label"
	ContextCorrelationID = "correlation_id"
	ContextTotal         = "total"
	ContextError         = "error"
)

// User-facing messages
const (
	MessageNotInitialized = "Dice engine is not connected. Add your API key in the dice-bridge popup."
	MessageNoRoom         = "No room selected. Choose a room in the dice-bridge popup."
	MessageNotReady       = "Dice engine did not become ready. Please refresh the page."
)

const (
	defaultReadyInterval = 250 * time.Millisecond
	defaultReadyAttempts = 40
	rollEntityType       = "roll"
	tracerName           = "github.com/KirkDiggler/dice-bridge/internal/orchestrators/dispatch"
)

// Service submits rolls
type Service interface {
	SubmitRoll(ctx context.Context, input *SubmitRollInput) (*SubmitRollOutput, error)
}

// SubmitRollInput is a roll ready for submission. Processed and Label are
// derived from Raw through the system's adapter when empty.
type SubmitRollInput struct {
	System    *systems.GameSystemConfig
	Raw       systems.RawRoll
	Processed *systems.ProcessedRoll
	Label     string
}

// SubmitRollOutput lists the rolls the service accepted, in call order
type SubmitRollOutput struct {
	CorrelationID string
	Rolls         []*entities.Roll
}

// Config holds the dependencies for the dispatch orchestrator
type Config struct {
	Engine      engine.Engine
	Settings    settings.Store
	Notifier    notify.Notifier
	EventBus    events.EventBus
	IDGenerator idgen.Generator

	// ReadyInterval is the engine readiness poll interval (optional)
	ReadyInterval time.Duration
	// ReadyAttempts caps readiness polls (optional)
	ReadyAttempts int
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
	if c.Notifier == nil {
		vb.RequiredField("Notifier")
	}
	if c.EventBus == nil {
		vb.RequiredField("EventBus")
	}
	if c.IDGenerator == nil {
		vb.RequiredField("IDGenerator")
	}
	if c.ReadyInterval == 0 {
		c.ReadyInterval = defaultReadyInterval
	}
	if c.ReadyAttempts == 0 {
		c.ReadyAttempts = defaultReadyAttempts
	}
	errors.ValidatePositive("ReadyAttempts", int64(c.ReadyAttempts), vb)

	return vb.Build()
}

type orchestrator struct {
	engine        engine.Engine
	settings      settings.Store
	notifier      notify.Notifier
	bus           events.EventBus
	idGen         idgen.Generator
	readyInterval time.Duration
	readyAttempts int
	tracer        trace.Tracer
}

// NewOrchestrator creates a new dispatch orchestrator with the provided dependencies
func NewOrchestrator(cfg *Config) (Service, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &orchestrator{
		engine:        cfg.Engine,
		settings:      cfg.Settings,
		notifier:      cfg.Notifier,
		bus:           cfg.EventBus,
		idGen:         cfg.IDGenerator,
		readyInterval: cfg.ReadyInterval,
		readyAttempts: cfg.ReadyAttempts,
		tracer:        otel.Tracer(tracerName),
	}, nil
}

func (o *orchestrator) SubmitRoll(ctx context.Context, input *SubmitRollInput) (*SubmitRollOutput, error) {
	if input == nil || input.System == nil || input.System.Adapter == nil {
		return nil, errors.InvalidArgument("game system is required")
	}
	adapter := input.System.Adapter

	ctx, span := o.tracer.Start(ctx, "dispatch.SubmitRoll",
		trace.WithAttributes(attribute.String("game_system", string(input.System.ID))))
	defer span.End()

	if !o.engine.Initialized() {
		o.notifier.Error(ctx, MessageNotInitialized)
		return nil, errors.FailedPrecondition("dice engine is not initialized")
	}

	room, err := o.settings.Room(ctx)
	if err != nil {
		o.notifier.Error(ctx, MessageNoRoom)
		return nil, errors.Wrap(err, "failed to read selected room")
	}
	if room == nil || room.Slug == "" {
		o.notifier.Error(ctx, MessageNoRoom)
		return nil, errors.FailedPrecondition("no room selected")
	}

	themes, err := o.settings.Themes(ctx)
	if err != nil {
		slog.Warn("Failed to read theme selection, using defaults", "error", err)
		themes = entities.ThemeSelection{}
	}

	processed := input.Processed
	if processed == nil {
		processed = adapter.ProcessDice(input.Raw)
	}
	label := input.Label
	if label == "" {
		label = systems.RollLabel(adapter, input.Raw)
	}

	calls := systems.Plan(adapter, input.Raw, systems.AssignThemes(adapter, processed, themes), label)
	if len(calls) == 0 {
		slog.Debug("Skipping roll without dice", "label", label, "system", input.System.ID)
		return nil, errors.InvalidArgument("roll has no dice")
	}

	correlationID := o.idGen.Generate()
	span.SetAttributes(
		attribute.String("correlation_id", correlationID),
		attribute.Int("calls", len(calls)))

	if err := o.waitReady(ctx); err != nil {
		o.notifier.Error(ctx, MessageNotReady)
		span.RecordError(err)
		span.SetStatus(codes.Error, "engine not ready")
		return nil, err
	}

	client := o.engine.Client()
	if client == nil {
		o.notifier.Error(ctx, MessageNotInitialized)
		return nil, errors.FailedPrecondition("dice engine was reset")
	}

	output := &SubmitRollOutput{CorrelationID: correlationID}
	for _, call := range calls {
		roll, err := client.CreateRoll(ctx, &rolling.CreateRollInput{
			RoomSlug: room.Slug,
			Label:    call.Label,
			Dice:     call.Dice,
			Operator: call.Operator,
		})
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, errors.UserMessage(err))
			o.handleFailure(ctx, correlationID, call.Label, err)
			return output, errors.Wrapf(err, "failed to submit %q", call.Label)
		}

		output.Rolls = append(output.Rolls, roll)
		o.publish(ctx, EventRollCreated, roll.UUID, map[string]interface{}{
			ContextLabel:         call.Label,
			ContextCorrelationID: correlationID,
			ContextTotal:         roll.Total,
		})
		o.notifier.Info(ctx, fmt.Sprintf("%s: %d", call.Label, roll.Total))
	}

	slog.Info("Submitted roll",
		"label", label,
		"system", input.System.ID,
		"room", room.Slug,
		"calls", len(calls),
		"correlation_id", correlationID)

	return output, nil
}

// waitReady polls the engine until it reports ready or the attempts run out
func (o *orchestrator) waitReady(ctx context.Context) error {
	for attempt := 0; attempt < o.readyAttempts; attempt++ {
		if o.engine.Ready() {
			return nil
		}

		timer := time.NewTimer(o.readyInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return errors.WrapWithCode(ctx.Err(), errors.CodeCanceled, "canceled waiting for dice engine")
		case <-timer.C:
		}
	}

	if o.engine.Ready() {
		return nil
	}
	return errors.DeadlineExceededf("dice engine not ready after %d attempts", o.readyAttempts)
}

func (o *orchestrator) handleFailure(ctx context.Context, correlationID, label string, err error) {
	slog.Error("Failed to create roll",
		"label", label,
		"correlation_id", correlationID,
		"error", err)

	o.notifier.Error(ctx, errors.UserMessage(err))
	o.publish(ctx, EventRollFailed, correlationID, map[string]interface{}{
		ContextLabel:         label,
		ContextCorrelationID: correlationID,
		ContextError:         errors.UserMessage(err),
	})

	if !errors.IsConnectionError(err) {
		return
	}
	if rerr := o.engine.Reconnect(ctx); rerr != nil {
		slog.Error("Reconnect after failed roll did not succeed", "error", rerr)
		o.notifier.Error(ctx, MessageNotReady)
	}
}

func (o *orchestrator) publish(ctx context.Context, eventType, id string, data map[string]interface{}) {
	event := events.NewGameEvent(eventType, &entities.Ref{ID: id, Type: rollEntityType}, nil)
	for k, v := range data {
		event.Context().Set(k, v)
	}
	if err := o.bus.Publish(ctx, event); err != nil {
		slog.Warn("Failed to publish roll event", "event", eventType, "error", err)
	}
}
