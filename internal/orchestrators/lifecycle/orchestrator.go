// Package lifecycle owns the page session: it detects the game system on
// navigation, brings the dice engine up, attaches the matching roll watcher
// and tears everything down when the page leaves a character sheet.
package lifecycle

//go:generate mockgen -destination=mock/mock_service.go -package=lifecyclemock github.com/KirkDiggler/dice-bridge/internal/orchestrators/lifecycle Service

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/KirkDiggler/rpg-toolkit/dice"

	"github.com/KirkDiggler/dice-bridge/internal/engine"
	"github.com/KirkDiggler/dice-bridge/internal/entities"
	"github.com/KirkDiggler/dice-bridge/internal/errors"
	"github.com/KirkDiggler/dice-bridge/internal/notify"
	"github.com/KirkDiggler/dice-bridge/internal/orchestrators/dispatch"
	"github.com/KirkDiggler/dice-bridge/internal/orchestrators/participant"
	"github.com/KirkDiggler/dice-bridge/internal/page"
	rollhistory "github.com/KirkDiggler/dice-bridge/internal/repositories/roll_history"
	"github.com/KirkDiggler/dice-bridge/internal/repositories/settings"
	"github.com/KirkDiggler/dice-bridge/internal/systems"
	"github.com/KirkDiggler/dice-bridge/internal/watchers"
)

// State is the page lifecycle state
type State string

// Lifecycle states
const (
	StateUninitialized State = "UNINITIALIZED"
	StateInitializing  State = "INITIALIZING"
	StateWatching      State = "WATCHING"
	StateTornDown      State = "TORN_DOWN"
)

// MessageConnectFailed is shown when the engine cannot be brought up
const MessageConnectFailed = "Could not connect to the dice service. Check your API key or refresh the page."

// PageBridge is the slice of the page bridge the watchers attach to
type PageBridge interface {
	page.DOMSource
	page.RequestInterceptor
}

// Service drives the page lifecycle
type Service interface {
	// HandleNavigation re-evaluates the game system for a new page URL
	HandleNavigation(ctx context.Context, input *HandleNavigationInput) (*Status, error)

	// ReloadEngine drops the engine handle and initializes it again
	ReloadEngine(ctx context.Context) (*Status, error)

	// PreloadTheme asks the engine to warm a theme
	PreloadTheme(ctx context.Context, themeID string) (*entities.Theme, error)

	// Status reports the current session
	Status() *Status

	// Close tears the session down for good
	Close()
}

// HandleNavigationInput carries the page URL after navigation
type HandleNavigationInput struct {
	URL string
}

// Status is a snapshot of the session
type Status struct {
	State       State               `json:"state"`
	System      entities.GameSystem `json:"game_system"`
	SessionID   string              `json:"session_id,omitempty"`
	EngineReady bool                `json:"engine_ready"`
}

// Config holds the dependencies for the lifecycle orchestrator
type Config struct {
	Registry     *systems.Registry
	Engine       engine.Engine
	Settings     settings.Store
	History      rollhistory.Repository
	Page         PageBridge
	Dispatcher   dispatch.Service
	Participants participant.Service
	Notifier     notify.Notifier

	// Roller rolls intercepted expressions (optional)
	Roller dice.Roller
	// PollInterval is the storage watcher tick (optional)
	PollInterval time.Duration
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.Registry == nil {
		vb.RequiredField("Registry")
	}
	if c.Engine == nil {
		vb.RequiredField("Engine")
	}
	if c.Settings == nil {
		vb.RequiredField("Settings")
	}
	if c.History == nil {
		vb.RequiredField("History")
	}
	if c.Page == nil {
		vb.RequiredField("Page")
	}
	if c.Dispatcher == nil {
		vb.RequiredField("Dispatcher")
	}
	if c.Participants == nil {
		vb.RequiredField("Participants")
	}
	if c.Notifier == nil {
		vb.RequiredField("Notifier")
	}

	return vb.Build()
}

type orchestrator struct {
	registry     *systems.Registry
	engine       engine.Engine
	settings     settings.Store
	history      rollhistory.Repository
	page         PageBridge
	dispatcher   dispatch.Service
	participants participant.Service
	notifier     notify.Notifier
	roller       dice.Roller
	pollInterval time.Duration

	// baseCtx outlives requests; watchers run under it
	baseCtx    context.Context
	cancelBase context.CancelFunc

	// opMu serializes lifecycle operations
	opMu sync.Mutex

	mu        sync.RWMutex
	state     State
	system    *systems.GameSystemConfig
	sessionID string
	watcher   watchers.Watcher

	// generation invalidates roll callbacks from a previous session
	generation atomic.Uint64
}

// NewOrchestrator creates a new lifecycle orchestrator with the provided dependencies
func NewOrchestrator(cfg *Config) (Service, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	baseCtx, cancel := context.WithCancel(context.Background())
	return &orchestrator{
		registry:     cfg.Registry,
		engine:       cfg.Engine,
		settings:     cfg.Settings,
		history:      cfg.History,
		page:         cfg.Page,
		dispatcher:   cfg.Dispatcher,
		participants: cfg.Participants,
		notifier:     cfg.Notifier,
		roller:       cfg.Roller,
		pollInterval: cfg.PollInterval,
		baseCtx:      baseCtx,
		cancelBase:   cancel,
		state:        StateUninitialized,
	}, nil
}

func (o *orchestrator) HandleNavigation(ctx context.Context, input *HandleNavigationInput) (*Status, error) {
	if input == nil || input.URL == "" {
		return nil, errors.InvalidArgument("url is required")
	}

	o.opMu.Lock()
	defer o.opMu.Unlock()

	detected, err := o.registry.Detect(ctx, input.URL)
	if err != nil {
		return nil, err
	}

	if detected.SessionID == "" {
		o.teardown(ctx, detected.System)
		return o.Status(), nil
	}

	o.mu.RLock()
	same := o.state == StateWatching &&
		o.system != nil && o.system.ID == detected.System.ID &&
		o.sessionID == detected.SessionID
	o.mu.RUnlock()
	if same {
		return o.Status(), nil
	}

	o.stopWatcher()
	o.mu.Lock()
	o.system = detected.System
	o.sessionID = detected.SessionID
	o.mu.Unlock()

	if err := o.start(ctx); err != nil {
		return o.Status(), err
	}
	return o.Status(), nil
}

// start connects the engine and attaches the watcher for the current session
func (o *orchestrator) start(ctx context.Context) error {
	apiKey, err := o.settings.APIKey(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to read api key")
	}
	if apiKey == "" {
		slog.Info("No API key configured, waiting for setup")
		o.setState(StateUninitialized)
		return nil
	}

	o.setState(StateInitializing)
	if err := o.engine.Connect(ctx); err != nil {
		o.notifier.Error(ctx, MessageConnectFailed)
		return errors.Wrap(err, "failed to initialize dice engine")
	}

	return o.watch(ctx)
}

// watch attaches the session's watcher. It is a no-op when one is attached.
func (o *orchestrator) watch(ctx context.Context) error {
	o.mu.RLock()
	system, sessionID, attached := o.system, o.sessionID, o.watcher != nil
	o.mu.RUnlock()

	if system == nil || sessionID == "" {
		return nil
	}
	if attached {
		o.setState(StateWatching)
		return nil
	}

	w, err := o.newWatcher(system, sessionID)
	if err != nil {
		return err
	}

	gen := o.generation.Add(1)
	if w != nil {
		if err := w.Start(o.baseCtx, o.rollHandler(gen, system)); err != nil {
			return errors.Wrap(err, "failed to start roll watcher")
		}
	}

	o.mu.Lock()
	o.watcher = w
	o.state = StateWatching
	o.mu.Unlock()

	if err := o.settings.Set(ctx, map[settings.Key]string{settings.KeyDemiplaneInitialized: "true"}); err != nil {
		slog.Warn("Failed to record initialized flag", "error", err)
	}

	slog.Info("Watching for rolls",
		"system", system.ID,
		"session_id", sessionID,
		"source", system.Source)

	o.syncParticipant(ctx, system)
	return nil
}

func (o *orchestrator) newWatcher(system *systems.GameSystemConfig, sessionID string) (watchers.Watcher, error) {
	switch system.Source {
	case systems.SourceStorage:
		return watchers.NewStoragePoller(&watchers.StorageConfig{
			Repository: o.history,
			Keys:       system.StorageKeysFor(sessionID),
			Interval:   o.pollInterval,
		})
	case systems.SourceDOM:
		return watchers.NewDOMWatcher(o.page)
	case systems.SourceIntercept:
		return watchers.NewInterceptWatcher(&watchers.InterceptConfig{
			Interceptor: o.page,
			Adapter:     system.Adapter,
			Roller:      o.roller,
		})
	default:
		return nil, nil
	}
}

func (o *orchestrator) rollHandler(gen uint64, system *systems.GameSystemConfig) watchers.Handler {
	return func(ctx context.Context, roll *watchers.Roll) {
		if o.generation.Load() != gen {
			return
		}

		_, err := o.dispatcher.SubmitRoll(ctx, &dispatch.SubmitRollInput{
			System:    system,
			Raw:       roll.Raw,
			Processed: roll.Processed,
			Label:     roll.Label,
		})
		if err != nil {
			slog.Warn("Roll was not submitted", "system", system.ID, "error", err)
			return
		}

		o.syncParticipant(ctx, system)
	}
}

func (o *orchestrator) syncParticipant(ctx context.Context, system *systems.GameSystemConfig) {
	_, err := o.participants.SyncParticipantName(ctx, &participant.SyncParticipantNameInput{System: system})
	if err != nil {
		slog.Warn("Participant sync failed", "system", system.ID, "error", err)
	}
}

// teardown leaves the tracked page: the watcher stops and the engine
// handle is dropped
func (o *orchestrator) teardown(ctx context.Context, system *systems.GameSystemConfig) {
	o.stopWatcher()
	o.engine.Close()

	o.mu.Lock()
	wasActive := o.state != StateUninitialized && o.state != StateTornDown
	o.system = system
	o.sessionID = ""
	if o.state != StateUninitialized {
		o.state = StateTornDown
	}
	o.mu.Unlock()

	if wasActive {
		if err := o.settings.Set(ctx, map[settings.Key]string{settings.KeyDemiplaneInitialized: "false"}); err != nil {
			slog.Warn("Failed to clear initialized flag", "error", err)
		}
		slog.Info("Left character sheet, session torn down")
	}
}

func (o *orchestrator) stopWatcher() {
	o.generation.Add(1)

	o.mu.Lock()
	w := o.watcher
	o.watcher = nil
	o.mu.Unlock()

	if w != nil {
		w.Stop()
	}
}

func (o *orchestrator) ReloadEngine(ctx context.Context) (*Status, error) {
	o.opMu.Lock()
	defer o.opMu.Unlock()

	slog.Info("Reloading dice engine")
	o.engine.Close()

	o.mu.RLock()
	tracked := o.sessionID != ""
	o.mu.RUnlock()

	if !tracked {
		o.setState(StateInitializing)
		if err := o.engine.Connect(ctx); err != nil {
			o.notifier.Error(ctx, MessageConnectFailed)
			return o.Status(), errors.Wrap(err, "failed to reload dice engine")
		}
		return o.Status(), nil
	}

	if err := o.start(ctx); err != nil {
		return o.Status(), err
	}
	return o.Status(), nil
}

func (o *orchestrator) PreloadTheme(ctx context.Context, themeID string) (*entities.Theme, error) {
	theme, err := o.engine.PreloadTheme(ctx, themeID)
	if err != nil {
		return nil, err
	}
	return theme, nil
}

func (o *orchestrator) Status() *Status {
	o.mu.RLock()
	defer o.mu.RUnlock()

	status := &Status{
		State:       o.state,
		System:      entities.GameSystemUnknown,
		SessionID:   o.sessionID,
		EngineReady: o.engine.Ready(),
	}
	if o.system != nil {
		status.System = o.system.ID
	}
	return status
}

func (o *orchestrator) Close() {
	o.opMu.Lock()
	defer o.opMu.Unlock()

	o.stopWatcher()
	o.engine.Close()
	o.cancelBase()
	o.setState(StateTornDown)
}

func (o *orchestrator) setState(state State) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state = state
}
