package systems

import (
	"encoding/json"
	"strings"

	"github.com/KirkDiggler/rpg-toolkit/dice"

	"github.com/KirkDiggler/dice-bridge/internal/errors"
)

// ExpressionRoll rolls a dice expression locally and returns it as a roll
// record in the host wire format, so it can run through an adapter.
func ExpressionRoll(name, expr string, roller dice.Roller) (RawRoll, error) {
	if roller == nil {
		return RawRoll{}, errors.InvalidArgument("roller is required")
	}

	parts, err := ParseExpression(expr)
	if err != nil {
		return RawRoll{}, err
	}
	if err := RollParts(parts, roller); err != nil {
		return RawRoll{}, err
	}

	b := &rollBuilder{}
	b.walkParts(parts, "")

	wire := make([]map[string]interface{}, 0, len(parts))
	for _, p := range parts {
		wire = append(wire, p.wire())
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = defaultRollName
	}

	data, err := json.Marshal(map[string]interface{}{
		"name":    name,
		"rawDice": map[string]interface{}{"parts": wire},
		"total":   b.result().Total(),
	})
	if err != nil {
		return RawRoll{}, errors.Wrap(err, "failed to encode roll")
	}
	return ParseRawRoll(data)
}
