package systems

import (
	"reflect"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/KirkDiggler/dice-bridge/internal/errors"
)

// RawRoll is a read-only, game-specific roll record taken from the host page.
// The zero value is an absent roll.
type RawRoll struct {
	data gjson.Result
}

// ParseRawRoll validates and wraps a JSON roll record
func ParseRawRoll(data []byte) (RawRoll, error) {
	if !gjson.ValidBytes(data) {
		return RawRoll{}, errors.InvalidArgument("roll record is not valid JSON")
	}

	parsed := gjson.ParseBytes(data)
	if !parsed.IsObject() {
		return RawRoll{}, errors.InvalidArgument("roll record must be a JSON object")
	}

	return RawRoll{data: parsed}, nil
}

// Get reads a gjson path from the record
func (r RawRoll) Get(path string) gjson.Result {
	return r.data.Get(path)
}

// IsZero reports whether the roll is absent
func (r RawRoll) IsZero() bool {
	return !r.data.Exists()
}

// Equal compares two records by value, ignoring key order and formatting
func (r RawRoll) Equal(other RawRoll) bool {
	if r.IsZero() || other.IsZero() {
		return r.IsZero() == other.IsZero()
	}
	return reflect.DeepEqual(r.data.Value(), other.data.Value())
}

// String returns the raw JSON
func (r RawRoll) String() string {
	return r.data.Raw
}

// MarshalJSON returns the record unchanged
func (r RawRoll) MarshalJSON() ([]byte, error) {
	if r.IsZero() {
		return []byte("null"), nil
	}
	return []byte(r.data.Raw), nil
}

// statusSlug reads status.slug, accepting a bare string status as well
func statusSlug(c gjson.Result) string {
	status := c.Get("status")
	if status.Type == gjson.String {
		return strings.ToLower(status.String())
	}
	return strings.ToLower(status.Get("slug").String())
}
