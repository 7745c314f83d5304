package watchers

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/net/html"

	"github.com/KirkDiggler/dice-bridge/internal/entities"
	"github.com/KirkDiggler/dice-bridge/internal/errors"
	"github.com/KirkDiggler/dice-bridge/internal/page"
	"github.com/KirkDiggler/dice-bridge/internal/systems"
)

// Roll history markup
const (
	HistoryItemSelector = ".dice-history-item"
	DieValueSelector    = ".die-value"
	ModifierSelector    = ".roll-modifier"
	RollNameSelector    = ".roll-name"
	HungerClass         = "hunger"
	HungerLabel         = "Hunger"

	historyDie = "d10"
)

var (
	historyItem = page.MustParseSelector(HistoryItemSelector)
	dieValue    = page.MustParseSelector(DieValueSelector)
	modifier    = page.MustParseSelector(ModifierSelector)
	rollName    = page.MustParseSelector(RollNameSelector)
)

// DOMWatcher arms a single-shot mutation observer on every roll button
// press and scrapes the newest history item once it renders.
type DOMWatcher struct {
	source page.DOMSource

	mu         sync.Mutex
	handler    Handler
	stopPress  func()
	disconnect func()
}

var _ Watcher = (*DOMWatcher)(nil)

// NewDOMWatcher creates a watcher over the page's DOM feed
func NewDOMWatcher(source page.DOMSource) (*DOMWatcher, error) {
	if source == nil {
		return nil, errors.InvalidArgument("dom source is required")
	}
	return &DOMWatcher{source: source}, nil
}

// Start listens for roll button presses
func (w *DOMWatcher) Start(_ context.Context, handler Handler) error {
	if handler == nil {
		return errors.InvalidArgument("handler is required")
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopPress != nil {
		return errors.FailedPrecondition("dom watcher already started")
	}

	w.handler = handler
	w.stopPress = w.source.OnPress(w.arm)
	return nil
}

// Stop detaches the press listener and any armed observer
func (w *DOMWatcher) Stop() {
	w.mu.Lock()
	stopPress, disconnect := w.stopPress, w.disconnect
	w.stopPress, w.disconnect, w.handler = nil, nil, nil
	w.mu.Unlock()

	if disconnect != nil {
		disconnect()
	}
	if stopPress != nil {
		stopPress()
	}
}

// arm attaches the observer unless one is already waiting
func (w *DOMWatcher) arm(context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.disconnect != nil || w.stopPress == nil {
		return
	}
	w.disconnect = w.source.Observe(w.observe)
}

func (w *DOMWatcher) observe(ctx context.Context, m page.Mutation) {
	if m.Type != page.MutationChildList {
		return
	}

	roll, ok := ScrapeHistory(m.HTML)
	if !ok {
		return
	}

	w.mu.Lock()
	disconnect, handler := w.disconnect, w.handler
	w.disconnect = nil
	w.mu.Unlock()

	if disconnect == nil {
		return
	}
	disconnect()

	if handler != nil {
		handler(ctx, roll)
	}
}

// ScrapeHistory reads the newest roll from the history container markup.
// Every die is a d10; hunger dice carry the Hunger label.
func ScrapeHistory(doc string) (*Roll, bool) {
	if doc == "" {
		return nil, false
	}
	root, err := page.Parse(doc)
	if err != nil {
		slog.Debug("Failed to parse roll history markup", "error", err)
		return nil, false
	}

	item := page.FindFirst(root, historyItem)
	if item == nil {
		return nil, false
	}

	processed := &systems.ProcessedRoll{}
	for _, n := range page.FindAll(item, dieValue) {
		value, err := strconv.Atoi(page.Text(n))
		if err != nil {
			continue
		}
		die := entities.NormalizedDie{Type: historyDie, Value: value}
		if page.HasClass(n, HungerClass) {
			die.Label = HungerLabel
		}
		processed.Dice = append(processed.Dice, die)
	}
	if len(processed.Dice) == 0 {
		return nil, false
	}

	if mod := firstText(item, modifier); mod != "" {
		if value, err := strconv.Atoi(strings.ReplaceAll(mod, " ", "")); err == nil && value != 0 {
			processed.Dice = append(processed.Dice, entities.NormalizedDie{Type: entities.ModDieType, Value: value})
		}
	}

	label := firstText(item, rollName)
	if label == "" {
		label = "Roll"
	}

	return &Roll{Processed: processed, Label: label}, true
}

func firstText(root *html.Node, sel page.Selector) string {
	n := page.FindFirst(root, sel)
	if n == nil {
		return ""
	}
	return page.Text(n)
}
