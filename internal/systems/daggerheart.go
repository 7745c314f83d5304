package systems

import (
	"strings"

	"github.com/KirkDiggler/dice-bridge/internal/entities"
)

// Duality dice labels
const (
	HopeLabel = "Hope"
	FearLabel = "Fear"
)

type daggerheartAdapter struct {
	baseAdapter
}

// TypeResult prefers the status slug and otherwise compares the duality dice
func (a daggerheartAdapter) TypeResult(roll RawRoll) string {
	switch statusSlug(roll.data) {
	case "critical-success":
		return " Critical Success"
	case "roll-with-hope":
		return " with Hope"
	case "roll-with-fear":
		return " with Fear"
	}

	hope, fear := -1, -1
	for _, d := range a.ProcessDice(roll).Dice {
		switch {
		case hope < 0 && strings.EqualFold(d.Label, HopeLabel):
			hope = d.Value
		case fear < 0 && strings.EqualFold(d.Label, FearLabel):
			fear = d.Value
		}
	}

	switch {
	case hope < 0 || fear < 0:
		return ""
	case hope == fear:
		return " Critical Success"
	case hope > fear:
		return " with Hope"
	default:
		return " with Fear"
	}
}

// ThemeFor routes the duality dice to their dedicated themes
func (daggerheartAdapter) ThemeFor(die entities.NormalizedDie, themes entities.ThemeSelection) string {
	switch {
	case strings.EqualFold(die.Label, HopeLabel):
		return themes.IDOr(themes.Hope)
	case strings.EqualFold(die.Label, FearLabel):
		return themes.IDOr(themes.Fear)
	default:
		return themes.DefaultID()
	}
}
