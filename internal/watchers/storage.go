package watchers

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/KirkDiggler/dice-bridge/internal/errors"
	rollhistory "github.com/KirkDiggler/dice-bridge/internal/repositories/roll_history"
	"github.com/KirkDiggler/dice-bridge/internal/systems"
)

const defaultPollInterval = time.Second

// StorageConfig configures a storage poller
type StorageConfig struct {
	Repository rollhistory.Repository
	// Keys are the candidate history keys, tried in order
	Keys []string
	// Interval between polls (optional, defaults to 1s)
	Interval time.Duration
}

// Validate validates the config and sets defaults if not provided.
func (c *StorageConfig) Validate() error {
	vb := errors.NewValidationBuilder()
	if c.Repository == nil {
		vb.RequiredField("Repository")
	}
	if len(c.Keys) == 0 {
		vb.RequiredField("Keys")
	}
	if c.Interval == 0 {
		c.Interval = defaultPollInterval
	}
	errors.ValidatePositive("Interval", int64(c.Interval), vb)
	return vb.Build()
}

// StoragePoller polls a roll history and emits the newest entry whenever it
// changes. Rolls landing between two ticks are skipped except the latest.
type StoragePoller struct {
	repo     rollhistory.Repository
	keys     []string
	interval time.Duration

	mu       sync.Mutex
	baseline bool
	last     systems.RawRoll
	cancel   context.CancelFunc
	done     chan struct{}
}

var _ Watcher = (*StoragePoller)(nil)

// NewStoragePoller creates a poller
func NewStoragePoller(cfg *StorageConfig) (*StoragePoller, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &StoragePoller{
		repo:     cfg.Repository,
		keys:     append([]string(nil), cfg.Keys...),
		interval: cfg.Interval,
	}, nil
}

// Start takes the baseline synchronously, then polls in the background
func (p *StoragePoller) Start(ctx context.Context, handler Handler) error {
	if handler == nil {
		return errors.InvalidArgument("handler is required")
	}

	p.mu.Lock()
	if p.cancel != nil {
		p.mu.Unlock()
		return errors.FailedPrecondition("poller already started")
	}
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	done := p.done
	p.mu.Unlock()

	p.Poll(ctx)

	go func() {
		defer close(done)

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if roll := p.Poll(ctx); roll != nil {
					handler(ctx, roll)
				}
			}
		}
	}()

	slog.Debug("Watching roll history", "keys", p.keys, "interval", p.interval)
	return nil
}

// Stop ends polling and waits for the loop to exit
func (p *StoragePoller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel = nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Poll runs one tick. The first tick only records the baseline. Read and
// parse failures are logged and treated as no new roll.
func (p *StoragePoller) Poll(ctx context.Context) *Roll {
	out, err := p.repo.Head(ctx, &rollhistory.HeadInput{Keys: p.keys})
	if err != nil {
		slog.Warn("Failed to read roll history", "keys", p.keys, "error", err)
		return nil
	}

	var head systems.RawRoll
	if out.Found {
		head, err = systems.ParseRawRoll(out.Entry)
		if err != nil {
			slog.Warn("Skipping malformed roll history entry", "key", out.Key, "error", err)
			return nil
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.baseline {
		p.baseline = true
		p.last = head
		return nil
	}

	if head.IsZero() || head.Equal(p.last) {
		return nil
	}

	p.last = head
	return &Roll{Raw: head}
}
