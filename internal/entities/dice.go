// Package entities provides the core data structures shared across dice-bridge.
package entities

import (
	"encoding/json"
	"sort"
	"strings"
)

// ModDieType marks a flat modifier entry that has no die face
const ModDieType = "mod"

// Keep qualifiers understood by the rolling service
const (
	KeepHighestOne = "h1"
	KeepLowestOne  = "l1"
)

// NormalizedDie is one die or flat modifier submitted to the rolling service
type NormalizedDie struct {
	Type      string `json:"type"`
	Value     int    `json:"value"`
	Theme     string `json:"theme,omitempty"`
	Label     string `json:"label,omitempty"`
	GroupSlug string `json:"groupSlug,omitempty"`
}

// IsMod reports whether the entry is a flat modifier
func (d NormalizedDie) IsMod() bool {
	return d.Type == ModDieType
}

// Operator describes post-roll transforms applied across a dice list by index.
// Indices always point into the list the operator is submitted with.
type Operator struct {
	// Keep is KeepHighestOne, KeepLowestOne or empty
	Keep string
	// Invert lists indices whose values are subtracted instead of added
	Invert []int
}

// IsEmpty reports whether the operator carries no transforms
func (o Operator) IsEmpty() bool {
	return o.Keep == "" && len(o.Invert) == 0
}

// Inverts reports whether index i is sign-inverted
func (o Operator) Inverts(i int) bool {
	for _, idx := range o.Invert {
		if idx == i {
			return true
		}
	}
	return false
}

// Subset returns the operator for a sub-list built from the given indices of
// the original list, in order. Inversions are remapped to their new positions.
// Keep is carried only when keepApplies is true.
func (o Operator) Subset(indices []int, keepApplies bool) Operator {
	out := Operator{}
	if keepApplies {
		out.Keep = o.Keep
	}
	for newIdx, oldIdx := range indices {
		if o.Inverts(oldIdx) {
			out.Invert = append(out.Invert, newIdx)
		}
	}
	return out
}

// MarshalJSON encodes the operator in the rolling service wire format:
// {"k":"h1","*":{"-1":[0,2]}}
func (o Operator) MarshalJSON() ([]byte, error) {
	wire := map[string]interface{}{}
	if o.Keep != "" {
		wire["k"] = o.Keep
	}
	if len(o.Invert) > 0 {
		invert := append([]int(nil), o.Invert...)
		sort.Ints(invert)
		wire["*"] = map[string][]int{"-1": invert}
	}
	return json.Marshal(wire)
}

// UnmarshalJSON decodes the rolling service wire format
func (o *Operator) UnmarshalJSON(data []byte) error {
	var wire struct {
		Keep     string           `json:"k"`
		Multiply map[string][]int `json:"*"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	o.Keep = wire.Keep
	o.Invert = wire.Multiply["-1"]
	return nil
}

// String renders the operator for logs
func (o Operator) String() string {
	if o.IsEmpty() {
		return "{}"
	}
	b, err := o.MarshalJSON()
	if err != nil {
		return "{}"
	}
	return string(b)
}

// Roll is a roll accepted by the rolling service
type Roll struct {
	UUID  string          `json:"uuid"`
	Label string          `json:"label"`
	Total int             `json:"total"`
	Room  string          `json:"room,omitempty"`
	Dice  []NormalizedDie `json:"dice"`
}

// NormalizeDieType lowercases a die code and drops any leading count,
// so "1D20" and "d20" both become "d20".
func NormalizeDieType(die string) string {
	die = strings.ToLower(strings.TrimSpace(die))
	if die == ModDieType {
		return die
	}
	if i := strings.Index(die, "d"); i > 0 {
		return die[i:]
	}
	return die
}
