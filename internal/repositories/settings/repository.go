// Package settings provides the key-value storage adapter for user settings
// such as the API key, selected room and selected themes.
package settings

import (
	"context"

	"github.com/KirkDiggler/dice-bridge/internal/entities"
)

//go:generate mockgen -destination=mock/mock_store.go -package=settingsmock github.com/KirkDiggler/dice-bridge/internal/repositories/settings Store

// Key names a stored setting
type Key string

// Stored settings
const (
	KeyAPIKey               Key = "apiKey"
	KeyRoom                 Key = "room"
	KeyTheme                Key = "theme"
	KeyHopeTheme            Key = "hopeTheme"
	KeyFearTheme            Key = "fearTheme"
	KeyPlotDieTheme         Key = "plotDieTheme"
	KeyGameSystem           Key = "gameSystem"
	KeyRenderMode           Key = "renderMode"
	KeyDemiplaneInitialized Key = "demiplane_initialized"
)

// AllKeys lists every setting in a stable order
var AllKeys = []Key{
	KeyAPIKey, KeyRoom, KeyTheme, KeyHopeTheme, KeyFearTheme,
	KeyPlotDieTheme, KeyGameSystem, KeyRenderMode, KeyDemiplaneInitialized,
}

// IsKnown reports whether k is one of the stored settings
func IsKnown(k Key) bool {
	for _, known := range AllKeys {
		if known == k {
			return true
		}
	}
	return false
}

// Store is the key-value contract consumed by the rest of the bridge.
// Missing keys return a NotFound error from Get and zero values from the
// typed helpers.
type Store interface {
	// Get returns the raw stored value for key
	Get(ctx context.Context, key Key) (string, error)

	// Set writes several values at once
	Set(ctx context.Context, values map[Key]string) error

	// Remove deletes key
	Remove(ctx context.Context, key Key) error

	// All returns every stored value
	All(ctx context.Context) (map[Key]string, error)

	// APIKey returns the API key or empty when unset
	APIKey(ctx context.Context) (string, error)

	// Room returns the selected room or nil when unset
	Room(ctx context.Context) (*entities.Room, error)

	// SetRoom stores the selected room
	SetRoom(ctx context.Context, room *entities.Room) error

	// Themes returns the selected themes
	Themes(ctx context.Context) (entities.ThemeSelection, error)

	// SetGameSystem records the detected game system
	SetGameSystem(ctx context.Context, system entities.GameSystem) error

	// Flag reads a boolean setting, false when unset
	Flag(ctx context.Context, key Key) (bool, error)
}
