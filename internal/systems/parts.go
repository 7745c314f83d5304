package systems

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/KirkDiggler/rpg-toolkit/dice"
	"github.com/tidwall/gjson"

	"github.com/KirkDiggler/dice-bridge/internal/entities"
	"github.com/KirkDiggler/dice-bridge/internal/errors"
)

// PartKind tags a token of a raw dice expression
type PartKind string

// Part kinds used by rawDice.parts
const (
	PartDice     PartKind = "dice"
	PartOperator PartKind = "operator"
	PartConstant PartKind = "constant"
)

const maxExpressionDice = 100

// Part is one token of a dice expression
type Part struct {
	Kind PartKind
	// Die is the face code for dice parts, e.g. "d20"
	Die string
	// Count is how many dice to roll when Faces is empty
	Count int
	// Faces holds rolled values for dice parts
	Faces []int
	// Operator is "+" or "-" for operator parts
	Operator string
	// Constant is the magnitude of a constant part
	Constant int
	Label    string
}

// wire renders the part in the host rawDice.parts format
func (p Part) wire() map[string]interface{} {
	out := map[string]interface{}{"type": string(p.Kind)}
	switch p.Kind {
	case PartDice:
		out["die"] = p.Die
		out["value"] = p.Faces
	case PartOperator:
		out["value"] = p.Operator
	default:
		out["value"] = p.Constant
	}
	return out
}

var expressionToken = regexp.MustCompile(`(?i)([+-])|(\d*)d(\d+)|(\d+)`)

// ParseExpression tokenizes an expression such as "1d20+7-1d4" into parts.
// Dice parts carry Count but no Faces.
func ParseExpression(expr string) ([]Part, error) {
	expr = strings.ReplaceAll(strings.TrimSpace(expr), " ", "")
	if expr == "" {
		return nil, errors.InvalidArgument("dice expression is empty")
	}

	var parts []Part
	total := 0
	pos := 0
	for _, m := range expressionToken.FindAllStringSubmatchIndex(expr, -1) {
		if m[0] != pos {
			return nil, errors.InvalidArgumentf("unexpected %q in dice expression", expr[pos:m[0]])
		}
		pos = m[1]

		switch {
		case m[2] >= 0:
			parts = append(parts, Part{Kind: PartOperator, Operator: expr[m[2]:m[3]]})
		case m[6] >= 0:
			count := 1
			if m[5] > m[4] {
				count, _ = strconv.Atoi(expr[m[4]:m[5]])
			}
			size, _ := strconv.Atoi(expr[m[6]:m[7]])
			if count < 1 || size < 1 {
				return nil, errors.InvalidArgumentf("invalid dice term %q", expr[m[0]:m[1]])
			}
			total += count
			if total > maxExpressionDice {
				return nil, errors.InvalidArgumentf("dice expression rolls more than %d dice", maxExpressionDice)
			}
			parts = append(parts, Part{Kind: PartDice, Die: "d" + strconv.Itoa(size), Count: count})
		default:
			value, err := strconv.Atoi(expr[m[8]:m[9]])
			if err != nil {
				return nil, errors.InvalidArgumentf("invalid constant %q", expr[m[8]:m[9]])
			}
			parts = append(parts, Part{Kind: PartConstant, Constant: value})
		}
	}

	if pos != len(expr) {
		return nil, errors.InvalidArgumentf("unexpected %q in dice expression", expr[pos:])
	}
	return parts, nil
}

// RollParts fills Faces for every unrolled dice part using roller
func RollParts(parts []Part, roller dice.Roller) error {
	for i := range parts {
		p := &parts[i]
		if p.Kind != PartDice || len(p.Faces) > 0 {
			continue
		}

		size, err := strconv.Atoi(strings.TrimPrefix(p.Die, "d"))
		if err != nil || size < 1 {
			return errors.InvalidArgumentf("cannot roll die %q", p.Die)
		}

		faces, err := roller.RollN(p.Count, size)
		if err != nil {
			return errors.Wrapf(err, "failed to roll %d%s", p.Count, p.Die)
		}
		p.Faces = faces
	}
	return nil
}

// partsFromJSON reads rawDice.parts tokens, skipping anything unrecognized
func partsFromJSON(raw gjson.Result) []Part {
	var parts []Part
	for _, p := range raw.Array() {
		switch PartKind(strings.ToLower(p.Get("type").String())) {
		case PartDice:
			part := Part{Kind: PartDice, Die: p.Get("die").String(), Label: p.Get("config.name").String()}
			value := p.Get("value")
			if value.IsArray() {
				for _, f := range value.Array() {
					part.Faces = append(part.Faces, int(f.Int()))
				}
			} else if value.Exists() {
				part.Faces = []int{int(value.Int())}
			}
			parts = append(parts, part)
		case PartOperator:
			parts = append(parts, Part{Kind: PartOperator, Operator: strings.TrimSpace(p.Get("value").String())})
		case PartConstant:
			parts = append(parts, Part{Kind: PartConstant, Constant: int(p.Get("value").Int())})
		}
	}
	return parts
}

// rollBuilder accumulates normalized dice and the operator for one roll
type rollBuilder struct {
	dice []entities.NormalizedDie
	op   entities.Operator
}

func (b *rollBuilder) addDie(dieType string, value int, label, group string) {
	t := entities.NormalizeDieType(dieType)
	if t == "" {
		return
	}

	if value < 0 && t != entities.ModDieType {
		b.op.Invert = append(b.op.Invert, len(b.dice))
		value = -value
	}

	b.dice = append(b.dice, entities.NormalizedDie{
		Type:      t,
		Value:     value,
		Label:     label,
		GroupSlug: group,
	})
}

func (b *rollBuilder) addModifier(value int, group string) {
	if value == 0 {
		return
	}
	b.dice = append(b.dice, entities.NormalizedDie{
		Type:      entities.ModDieType,
		Value:     value,
		GroupSlug: group,
	})
}

func (b *rollBuilder) noteKeep(keep string) {
	if b.op.Keep != "" {
		return
	}
	switch strings.ToLower(keep) {
	case "highest":
		b.op.Keep = entities.KeepHighestOne
	case "lowest":
		b.op.Keep = entities.KeepLowestOne
	}
}

// walkParts applies the current-sign rule: an operator token sets the sign
// for every following constant and die until the next operator token.
func (b *rollBuilder) walkParts(parts []Part, group string) {
	sign := 1
	modifier := 0
	for _, p := range parts {
		switch p.Kind {
		case PartOperator:
			switch p.Operator {
			case "+":
				sign = 1
			case "-":
				sign = -1
			}
		case PartConstant:
			modifier += sign * p.Constant
		case PartDice:
			for _, face := range p.Faces {
				b.addDie(p.Die, sign*face, p.Label, group)
			}
		}
	}
	b.addModifier(modifier, group)
}

// readContainer normalizes one roll container (a record or a result group).
// rawDice.parts takes precedence over the dice list.
func (b *rollBuilder) readContainer(c gjson.Result, group string, withKeep bool) {
	if parts := c.Get("rawDice.parts"); parts.IsArray() && len(parts.Array()) > 0 {
		b.walkParts(partsFromJSON(parts), group)
		return
	}

	for _, d := range c.Get("dice").Array() {
		if !d.IsObject() {
			continue
		}
		b.addDie(d.Get("die").String(), int(d.Get("value").Int()), d.Get("config.name").String(), group)
		if withKeep {
			b.noteKeep(d.Get("config.keep").String())
		}
	}

	b.addModifier(addModifier(c), group)
}

func (b *rollBuilder) result() *ProcessedRoll {
	return &ProcessedRoll{
		Dice:     b.dice,
		Operator: b.op,
	}
}

// addModifier sums the "add" entries of modifiersParsed
func addModifier(c gjson.Result) int {
	total := 0
	for _, m := range c.Get("modifiersParsed").Array() {
		if m.Get("purpose").String() != "add" {
			continue
		}
		total += int(m.Get("value").Int())
	}
	return total
}
