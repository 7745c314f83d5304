package systems

import "github.com/KirkDiggler/dice-bridge/internal/entities"

type pathfinderAdapter struct {
	baseAdapter
}

// TypeResult reports natural 20s and 1s on the kept d20
func (a pathfinderAdapter) TypeResult(roll RawRoll) string {
	processed := a.ProcessDice(roll)

	kept := 0
	found := false
	for _, d := range processed.Dice {
		if d.Type != "d20" {
			continue
		}
		switch {
		case !found:
			kept = d.Value
		case processed.Operator.Keep == entities.KeepHighestOne && d.Value > kept:
			kept = d.Value
		case processed.Operator.Keep == entities.KeepLowestOne && d.Value < kept:
			kept = d.Value
		}
		found = true
	}

	switch {
	case !found:
		return ""
	case kept == 20:
		return " Critical Success"
	case kept == 1:
		return " Critical Failure"
	default:
		return ""
	}
}
