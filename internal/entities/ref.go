package entities

import "github.com/KirkDiggler/rpg-toolkit/core"

// Ref identifies something the bridge publishes events about
type Ref struct {
	ID   string
	Type string
}

var _ core.Entity = (*Ref)(nil)

// GetID returns the referenced id
func (r *Ref) GetID() string { return r.ID }

// GetType returns the referenced kind
func (r *Ref) GetType() string { return r.Type }
