package systems

import "github.com/tidwall/gjson"

type avatarAdapter struct {
	baseAdapter
}

// TypeResult maps the total onto the hit tiers
func (a avatarAdapter) TypeResult(roll RawRoll) string {
	total := roll.Get("total")
	value := 0
	if total.Type == gjson.Number {
		value = int(total.Int())
	} else {
		value = a.ProcessDice(roll).Total()
	}

	switch {
	case value > 10:
		return " (Strong Hit)"
	case value > 7:
		return " (Weak Hit)"
	default:
		return " (Miss)"
	}
}
