package systems

import (
	"context"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/KirkDiggler/dice-bridge/internal/entities"
	"github.com/KirkDiggler/dice-bridge/internal/errors"
	"github.com/KirkDiggler/dice-bridge/internal/repositories/settings"
)

// Source is how a game system exposes its rolls
type Source string

// Roll sources
const (
	SourceNone      Source = "none"
	SourceStorage   Source = "storage"
	SourceDOM       Source = "dom"
	SourceIntercept Source = "intercept"
)

const (
	sessionPlaceholder = "{id}"
	characterNameClass = ".character-name"
)

// GameSystemConfig describes how to recognize and read one game system
type GameSystemConfig struct {
	ID entities.GameSystem
	// PathPattern matches the page path; its last group is the session id
	PathPattern *regexp.Regexp
	// StorageKeys are candidate roll-history keys containing {id}, tried in order
	StorageKeys []string
	Source      Source
	// NameSelector locates the character name in the page; empty disables sync
	NameSelector string
	Adapter      Adapter
}

// Match tests the path and returns the session id
func (c *GameSystemConfig) Match(path string) (string, bool) {
	if c.PathPattern == nil {
		return "", false
	}

	m := c.PathPattern.FindStringSubmatch(path)
	if m == nil {
		return "", false
	}
	return m[len(m)-1], true
}

// StorageKeysFor fills the session id into the storage key templates
func (c *GameSystemConfig) StorageKeysFor(sessionID string) []string {
	keys := make([]string, 0, len(c.StorageKeys))
	for _, k := range c.StorageKeys {
		keys = append(keys, strings.ReplaceAll(k, sessionPlaceholder, sessionID))
	}
	return keys
}

var unknownSystem = &GameSystemConfig{
	ID:      entities.GameSystemUnknown,
	Source:  SourceNone,
	Adapter: baseAdapter{},
}

// DefaultSystems returns the built-in game systems in match order. The
// generic character-sheet pattern must stay last.
func DefaultSystems() []*GameSystemConfig {
	return []*GameSystemConfig{
		{
			ID:           entities.GameSystemDaggerheart,
			PathPattern:  regexp.MustCompile(`^/nexus/daggerheart/character-sheet/([\w-]+)`),
			StorageKeys:  []string{"daggerheart-roll-history-{id}"},
			Source:       SourceStorage,
			NameSelector: characterNameClass,
			Adapter:      daggerheartAdapter{},
		},
		{
			ID:           entities.GameSystemCosmereRPG,
			PathPattern:  regexp.MustCompile(`^/nexus/cosmererpg/character-sheet/([\w-]+)`),
			StorageKeys:  []string{"cosmere-roll-history-{id}"},
			Source:       SourceStorage,
			NameSelector: characterNameClass,
			Adapter:      cosmereAdapter{},
		},
		{
			ID:           entities.GameSystemAvatarLegends,
			PathPattern:  regexp.MustCompile(`^/nexus/avatarlegends/character-sheet/([\w-]+)`),
			StorageKeys:  []string{"avatar-roll-history-{id}"},
			Source:       SourceStorage,
			NameSelector: characterNameClass,
			Adapter:      avatarAdapter{},
		},
		{
			ID:           entities.GameSystemPathfinder2e,
			PathPattern:  regexp.MustCompile(`^/nexus/pathfinder2e/character-sheet/([\w-]+)`),
			StorageKeys:  []string{"pf2e-roll-history-{id}", "roll-history-{id}"},
			Source:       SourceStorage,
			NameSelector: characterNameClass,
			Adapter:      pathfinderAdapter{},
		},
		{
			ID:           entities.GameSystemVampire5e,
			PathPattern:  regexp.MustCompile(`^/nexus/vampire5e/character-sheet/([\w-]+)`),
			Source:       SourceDOM,
			NameSelector: characterNameClass,
			Adapter:      baseAdapter{},
		},
		{
			ID:          entities.GameSystemPathbuilder2e,
			PathPattern: regexp.MustCompile(`^/(app|launch)/(\d+)`),
			Source:      SourceIntercept,
			Adapter:     pathfinderAdapter{},
		},
		{
			ID:           entities.GameSystemGeneric,
			PathPattern:  regexp.MustCompile(`^/nexus/([\w-]+)/character-sheet/([\w-]+)`),
			StorageKeys:  []string{"roll-history-{id}"},
			Source:       SourceStorage,
			NameSelector: characterNameClass,
			Adapter:      baseAdapter{},
		},
	}
}

// RegistryConfig configures the registry
type RegistryConfig struct {
	Settings settings.Store
	// Systems overrides DefaultSystems
	Systems []*GameSystemConfig
}

// Validate ensures all required dependencies are provided
func (c *RegistryConfig) Validate() error {
	vb := errors.NewValidationBuilder()
	if c.Settings == nil {
		vb.RequiredField("Settings")
	}
	for _, s := range c.Systems {
		if s == nil || s.Adapter == nil || s.PathPattern == nil {
			vb.InvalidField("Systems", "every system needs a path pattern and an adapter")
			break
		}
	}
	return vb.Build()
}

// Registry detects the active game system and hands out its adapter
type Registry struct {
	settings settings.Store
	systems  []*GameSystemConfig
	byID     map[entities.GameSystem]*GameSystemConfig
}

// NewRegistry creates a registry over the configured systems
func NewRegistry(cfg *RegistryConfig) (*Registry, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	systems := cfg.Systems
	if len(systems) == 0 {
		systems = DefaultSystems()
	}

	byID := make(map[entities.GameSystem]*GameSystemConfig, len(systems)+1)
	byID[unknownSystem.ID] = unknownSystem
	for _, s := range systems {
		byID[s.ID] = s
	}

	return &Registry{
		settings: cfg.Settings,
		systems:  systems,
		byID:     byID,
	}, nil
}

// DetectOutput is the detected system. SessionID is empty when the page is
// not trackable.
type DetectOutput struct {
	System    *GameSystemConfig
	SessionID string
}

// Detect matches the URL path against the systems in order; first match
// wins. A match is recorded in settings so other surfaces can react.
func (r *Registry) Detect(ctx context.Context, rawURL string) (*DetectOutput, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.InvalidArgumentf("invalid page url %q", rawURL)
	}

	for _, system := range r.systems {
		sessionID, ok := system.Match(u.Path)
		if !ok {
			continue
		}

		if err := r.settings.SetGameSystem(ctx, system.ID); err != nil {
			slog.Warn("Failed to record game system",
				"system", system.ID,
				"error", err)
		}

		slog.Debug("Detected game system",
			"system", system.ID,
			"session_id", sessionID)

		return &DetectOutput{System: system, SessionID: sessionID}, nil
	}

	return &DetectOutput{System: unknownSystem}, nil
}

// Lookup returns the config for id, falling back to the unknown system
func (r *Registry) Lookup(id entities.GameSystem) *GameSystemConfig {
	if s, ok := r.byID[id]; ok {
		return s
	}
	return unknownSystem
}

// Adapter returns the adapter registered for id
func (r *Registry) Adapter(id entities.GameSystem) Adapter {
	return r.Lookup(id).Adapter
}
