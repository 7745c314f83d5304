package entities

// Theme is a die skin recognized by the rolling service
type Theme struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
	// DieTypes lists the die faces the theme ships, e.g. "d20" or "dpl"
	DieTypes []string `json:"dieTypes,omitempty"`
}

// HasDie reports whether the theme advertises the given die face
func (t *Theme) HasDie(dieType string) bool {
	if t == nil {
		return false
	}
	for _, d := range t.DieTypes {
		if d == dieType {
			return true
		}
	}
	return false
}

// ThemeSelection holds the themes chosen by the user. Only Default is required.
type ThemeSelection struct {
	Default *Theme
	Hope    *Theme
	Fear    *Theme
	PlotDie *Theme
}

// DefaultID returns the default theme id or empty
func (s ThemeSelection) DefaultID() string {
	if s.Default == nil {
		return ""
	}
	return s.Default.ID
}

// IDOr returns t's id, falling back to the default theme
func (s ThemeSelection) IDOr(t *Theme) string {
	if t != nil && t.ID != "" {
		return t.ID
	}
	return s.DefaultID()
}
