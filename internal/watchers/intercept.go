package watchers

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"

	"github.com/KirkDiggler/rpg-toolkit/dice"

	"github.com/KirkDiggler/dice-bridge/internal/entities"
	"github.com/KirkDiggler/dice-bridge/internal/errors"
	"github.com/KirkDiggler/dice-bridge/internal/page"
	"github.com/KirkDiggler/dice-bridge/internal/systems"
)

// Query parameters on intercepted roll requests
const (
	DiceParam  = "dice"
	NameParam  = "name"
	LabelParam = "label"
)

// InterceptConfig configures an intercept watcher
type InterceptConfig struct {
	Interceptor page.RequestInterceptor
	// Adapter builds the synthetic response from the rolled record
	Adapter systems.Adapter
	// Roller rolls the expression locally (optional, defaults to the toolkit roller)
	Roller dice.Roller
}

// Validate validates the config and sets defaults if not provided.
func (c *InterceptConfig) Validate() error {
	vb := errors.NewValidationBuilder()
	if c.Interceptor == nil {
		vb.RequiredField("Interceptor")
	}
	if c.Adapter == nil {
		vb.RequiredField("Adapter")
	}
	if c.Roller == nil {
		c.Roller = dice.DefaultRoller
	}
	return vb.Build()
}

// InterceptWatcher claims outgoing requests that carry a dice expression,
// rolls them locally and answers the page without touching the network.
type InterceptWatcher struct {
	interceptor page.RequestInterceptor
	adapter     systems.Adapter
	roller      dice.Roller

	mu      sync.Mutex
	cancel  func()
	handler Handler
	wg      sync.WaitGroup
}

var _ Watcher = (*InterceptWatcher)(nil)

// NewInterceptWatcher creates an intercept watcher
func NewInterceptWatcher(cfg *InterceptConfig) (*InterceptWatcher, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &InterceptWatcher{
		interceptor: cfg.Interceptor,
		adapter:     cfg.Adapter,
		roller:      cfg.Roller,
	}, nil
}

// Start registers the interceptor
func (w *InterceptWatcher) Start(_ context.Context, handler Handler) error {
	if handler == nil {
		return errors.InvalidArgument("handler is required")
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel != nil {
		return errors.FailedPrecondition("intercept watcher already started")
	}

	w.handler = handler
	w.cancel = w.interceptor.Intercept(w.intercept)
	return nil
}

// Stop unregisters the interceptor and waits for in-flight handlers
func (w *InterceptWatcher) Stop() {
	w.mu.Lock()
	cancel := w.cancel
	w.cancel, w.handler = nil, nil
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	w.wg.Wait()
}

type interceptedDie struct {
	Type  string `json:"type"`
	Value int    `json:"value"`
}

type interceptedRoll struct {
	Label string           `json:"label"`
	Dice  []interceptedDie `json:"dice"`
	Total int              `json:"total"`
}

func (w *InterceptWatcher) intercept(ctx context.Context, req *page.InterceptRequest) (*page.InterceptResponse, bool, error) {
	query := req.URL.Query()
	expr := strings.TrimSpace(query.Get(DiceParam))
	if expr == "" {
		return nil, false, nil
	}

	name := query.Get(NameParam)
	if name == "" {
		name = query.Get(LabelParam)
	}

	raw, err := systems.ExpressionRoll(name, expr, w.roller)
	if err != nil {
		slog.Warn("Failed to roll intercepted expression", "expression", expr, "error", err)
		return nil, true, errors.Wrapf(err, "failed to roll %q", expr)
	}

	processed := w.adapter.ProcessDice(raw)
	body := interceptedRoll{
		Label: systems.RollLabel(w.adapter, raw),
		Total: int(raw.Get("total").Int()),
	}
	for i, d := range processed.Dice {
		value := d.Value
		if d.Type != entities.ModDieType && processed.Operator.Inverts(i) {
			value = -value
		}
		body.Dice = append(body.Dice, interceptedDie{Type: d.Type, Value: value})
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, true, errors.Wrap(err, "failed to encode intercepted roll")
	}

	w.mu.Lock()
	handler := w.handler
	if handler != nil {
		w.wg.Add(1)
	}
	w.mu.Unlock()

	if handler != nil {
		go func() {
			defer w.wg.Done()
			handler(context.WithoutCancel(ctx), &Roll{Raw: raw})
		}()
	}

	slog.Debug("Intercepted roll request", "expression", expr, "label", body.Label)
	return &page.InterceptResponse{
		ContentType: "application/json",
		Body:        data,
	}, true, nil
}
