package systems

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/KirkDiggler/dice-bridge/internal/entities"
)

// Cosmere result group slugs
const (
	MainGroupSlug   = "main-d20-group"
	DamageGroupSlug = "damage-group"
	PlotDieSlug     = "plot-die"
)

// PlotDieLabel labels the secondary plot die
const PlotDieLabel = "Plot Die"

const (
	plotDieFace       = "d6"
	dedicatedPlotFace = "dpl"
)

type cosmereAdapter struct {
	baseAdapter
}

// TypeResult checks the plot die face before the status slug
func (a cosmereAdapter) TypeResult(roll RawRoll) string {
	if plot := a.ProcessDice(roll).PlotDice; plot != nil {
		switch plot.Value {
		case 5, 6:
			return " Opportunity"
		case 1, 2:
			return " Complication"
		}
	}

	switch statusSlug(roll.data) {
	case "opportunity":
		return " Opportunity"
	case "complication":
		return " Complication"
	}
	return ""
}

// ProcessDice normalizes each result group, tagging dice with the group slug.
// The plot group's die moves to PlotDice. Records without result groups
// follow the base rules.
func (a cosmereAdapter) ProcessDice(roll RawRoll) *ProcessedRoll {
	results := roll.Get("results")
	if !results.IsArray() || len(results.Array()) == 0 {
		return a.baseAdapter.ProcessDice(roll)
	}

	b := &rollBuilder{}
	var plot *entities.NormalizedDie
	for _, group := range results.Array() {
		if !group.IsObject() {
			continue
		}

		slug := group.Get("slug").String()
		if slug == PlotDieSlug {
			die := group.Get("dice.0")
			if plot == nil && die.Exists() {
				value := int(die.Get("value").Int())
				if value < 0 {
					value = -value
				}
				plot = &entities.NormalizedDie{
					Type:      plotDieFace,
					Value:     value,
					Label:     PlotDieLabel,
					GroupSlug: PlotDieSlug,
				}
			}
			continue
		}

		b.readContainer(group, slug, slug == MainGroupSlug)
	}

	out := b.result()
	out.PlotDice = plot
	return out
}

func (cosmereAdapter) ThemeFor(die entities.NormalizedDie, themes entities.ThemeSelection) string {
	if die.Label == PlotDieLabel {
		return themes.IDOr(themes.PlotDie)
	}
	return themes.DefaultID()
}

// GroupLabel names the main group after the roll and prefixes the others
func (a cosmereAdapter) GroupLabel(roll RawRoll, slug string) string {
	name := a.RollName(roll)
	if slug == MainGroupSlug || slug == "" {
		return name
	}

	for _, group := range roll.Get("results").Array() {
		if group.Get("slug").String() != slug {
			continue
		}
		if label := strings.TrimSpace(group.Get("label").String()); label != "" {
			return name + ": " + label
		}
	}
	// a Caser carries state between calls, so each label gets its own
	title := cases.Title(language.English)
	return name + ": " + title.String(strings.ReplaceAll(slug, "-", " "))
}

// PlotLabel carries the opportunity or complication outcome
func (a cosmereAdapter) PlotLabel(roll RawRoll) string {
	return a.RollName(roll) + ": " + PlotDieLabel + a.TypeResult(roll)
}
