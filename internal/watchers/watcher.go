// Package watchers detects new rolls on the host page and pushes them to a
// handler. Each game system exposes rolls one of three ways: a storage key
// that is polled, a DOM container that is observed after a roll button
// press, or an outgoing request that is intercepted.
package watchers

import (
	"context"

	"github.com/KirkDiggler/dice-bridge/internal/systems"
)

// Roll is a detected roll. Watchers that scrape the page fill Processed
// and Label directly; the rest hand over the raw record.
type Roll struct {
	Raw       systems.RawRoll
	Processed *systems.ProcessedRoll
	Label     string
}

// Handler receives each new roll
type Handler func(ctx context.Context, roll *Roll)

// Watcher is one roll source. Start returns once the watcher is attached;
// Stop detaches it and is safe to call more than once.
type Watcher interface {
	Start(ctx context.Context, handler Handler) error
	Stop()
}
