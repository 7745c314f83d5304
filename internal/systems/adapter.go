// Package systems maps host pages to game systems and translates each
// system's roll records into normalized dice for the rolling service.
package systems

import (
	"strings"

	"github.com/KirkDiggler/dice-bridge/internal/entities"
)

const defaultRollName = "Roll"

// ProcessedRoll is the normalized form of a raw roll
type ProcessedRoll struct {
	Dice     []entities.NormalizedDie
	Operator entities.Operator
	// PlotDice is a secondary die submitted as its own roll
	PlotDice *entities.NormalizedDie
}

// Total returns the signed sum the rolling service would compute,
// honoring keep-one qualifiers across the non-modifier dice.
func (p *ProcessedRoll) Total() int {
	if p == nil {
		return 0
	}

	total := 0
	var kept []int
	for i, d := range p.Dice {
		value := d.Value
		if !d.IsMod() && p.Operator.Inverts(i) {
			value = -value
		}
		if d.IsMod() {
			total += value
			continue
		}
		kept = append(kept, value)
	}

	switch p.Operator.Keep {
	case entities.KeepHighestOne, entities.KeepLowestOne:
		if len(kept) == 0 {
			return total
		}
		best := kept[0]
		for _, v := range kept[1:] {
			if (p.Operator.Keep == entities.KeepHighestOne && v > best) ||
				(p.Operator.Keep == entities.KeepLowestOne && v < best) {
				best = v
			}
		}
		return total + best
	default:
		for _, v := range kept {
			total += v
		}
		return total
	}
}

// clone returns a deep copy so callers can decorate dice without touching
// the adapter's output
func (p *ProcessedRoll) clone() *ProcessedRoll {
	out := &ProcessedRoll{
		Dice: append([]entities.NormalizedDie(nil), p.Dice...),
		Operator: entities.Operator{
			Keep:   p.Operator.Keep,
			Invert: append([]int(nil), p.Operator.Invert...),
		},
	}
	if p.PlotDice != nil {
		plot := *p.PlotDice
		out.PlotDice = &plot
	}
	return out
}

// Adapter translates one game system's roll records. Implementations are
// pure: the same record always yields the same output.
type Adapter interface {
	// RollName derives a human label for the roll
	RollName(roll RawRoll) string

	// TypeResult derives an outcome suffix such as " Critical Success"
	TypeResult(roll RawRoll) string

	// ProcessDice normalizes the record. Malformed records yield no dice.
	ProcessDice(roll RawRoll) *ProcessedRoll

	// ThemeFor picks the theme for a normalized die
	ThemeFor(die entities.NormalizedDie, themes entities.ThemeSelection) string
}

// Splitter is implemented by adapters whose rolls are submitted as several
// labelled calls, one per result group plus one for the plot die.
type Splitter interface {
	GroupLabel(roll RawRoll, slug string) string
	PlotLabel(roll RawRoll) string
}

// RollLabel joins the roll name and outcome suffix
func RollLabel(a Adapter, roll RawRoll) string {
	return a.RollName(roll) + a.TypeResult(roll)
}

// baseAdapter implements the rules shared by every storage-polled system
type baseAdapter struct{}

// RollName returns the first non-empty label annotation, then the record
// name, then "Roll".
func (baseAdapter) RollName(roll RawRoll) string {
	for _, m := range roll.Get("modifiersParsed").Array() {
		if m.Get("purpose").String() != "label" {
			continue
		}
		if label := strings.TrimSpace(m.Get("value").String()); label != "" {
			return label
		}
	}

	if name := strings.TrimSpace(roll.Get("name").String()); name != "" {
		return name
	}
	return defaultRollName
}

func (baseAdapter) TypeResult(RawRoll) string {
	return ""
}

func (baseAdapter) ProcessDice(roll RawRoll) *ProcessedRoll {
	b := &rollBuilder{}
	if !roll.IsZero() {
		b.readContainer(roll.data, "", true)
	}
	return b.result()
}

func (baseAdapter) ThemeFor(_ entities.NormalizedDie, themes entities.ThemeSelection) string {
	return themes.DefaultID()
}

// AssignThemes returns a copy of p with every die themed by a. The plot die
// takes the plot theme (else the default) and becomes a "dpl" face when
// that theme ships one.
func AssignThemes(a Adapter, p *ProcessedRoll, themes entities.ThemeSelection) *ProcessedRoll {
	if p == nil {
		return &ProcessedRoll{}
	}

	out := p.clone()
	for i := range out.Dice {
		out.Dice[i].Theme = a.ThemeFor(out.Dice[i], themes)
	}

	if out.PlotDice != nil {
		theme := themes.PlotDie
		if theme == nil || theme.ID == "" {
			theme = themes.Default
		}
		out.PlotDice.Theme = themes.IDOr(theme)
		out.PlotDice.Type = plotDieFace
		if theme.HasDie(dedicatedPlotFace) {
			out.PlotDice.Type = dedicatedPlotFace
		}
	}
	return out
}

// SubRoll is one roll-creation call
type SubRoll struct {
	Label    string
	Dice     []entities.NormalizedDie
	Operator entities.Operator
}

// Plan splits a themed roll into roll-creation calls in submission order.
// Splitters get one call per result group, then one for the plot die; only
// the main group keeps the keep qualifier. Everything else is one call.
func Plan(a Adapter, roll RawRoll, p *ProcessedRoll, label string) []SubRoll {
	if p == nil {
		return nil
	}

	splitter, ok := a.(Splitter)
	groups := groupOrder(p.Dice)
	if !ok || (len(groups) < 2 && p.PlotDice == nil) {
		if len(p.Dice) == 0 {
			return nil
		}
		return []SubRoll{{Label: label, Dice: p.Dice, Operator: p.Operator}}
	}

	var calls []SubRoll
	for _, slug := range groups {
		var indices []int
		var dice []entities.NormalizedDie
		for i, d := range p.Dice {
			if d.GroupSlug == slug {
				indices = append(indices, i)
				dice = append(dice, d)
			}
		}
		calls = append(calls, SubRoll{
			Label:    splitter.GroupLabel(roll, slug),
			Dice:     dice,
			Operator: p.Operator.Subset(indices, slug == MainGroupSlug || len(groups) == 1),
		})
	}

	if p.PlotDice != nil {
		calls = append(calls, SubRoll{
			Label: splitter.PlotLabel(roll),
			Dice:  []entities.NormalizedDie{*p.PlotDice},
		})
	}
	return calls
}

func groupOrder(dice []entities.NormalizedDie) []string {
	var order []string
	seen := map[string]bool{}
	for _, d := range dice {
		if seen[d.GroupSlug] {
			continue
		}
		seen[d.GroupSlug] = true
		order = append(order, d.GroupSlug)
	}
	return order
}
