// Package rollhistory mirrors the host page's localStorage roll logs so
// watchers can poll them.
package rollhistory

import (
	"context"
	"time"
)

//go:generate mockgen -destination=mock/mock_repository.go -package=rollhistorymock github.com/KirkDiggler/dice-bridge/internal/repositories/roll_history Repository

// PutInput contains parameters for mirroring a storage write
type PutInput struct {
	// Key is the host page storage key, e.g. "daggerheart-roll-history-abc"
	Key string
	// Value is the raw stored string
	Value string
}

// PutOutput contains the result of mirroring a storage write
type PutOutput struct {
	UpdatedAt time.Time
}

// GetInput contains parameters for reading a mirrored key
type GetInput struct {
	Key string
}

// GetOutput contains the raw mirrored value
type GetOutput struct {
	Value string
}

// HeadInput lists candidate keys, tried in order
type HeadInput struct {
	Keys []string
}

// HeadOutput holds the newest history entry of the first key that exists
type HeadOutput struct {
	// Found is false when no key exists or the history array is empty
	Found bool
	// Key is the candidate key that was read
	Key string
	// Entry is the raw JSON of the first array element
	Entry []byte
}

// RemoveInput contains parameters for dropping a mirrored key
type RemoveInput struct {
	Key string
}

// Repository defines storage operations for mirrored roll histories
type Repository interface {
	// Put stores the latest value the page wrote to a storage key
	Put(ctx context.Context, input *PutInput) (*PutOutput, error)

	// Get returns the mirrored value of a key
	Get(ctx context.Context, input *GetInput) (*GetOutput, error)

	// Head returns the first element of the history array found under the
	// first existing candidate key. Malformed JSON is an InvalidArgument error.
	Head(ctx context.Context, input *HeadInput) (*HeadOutput, error)

	// Remove drops a mirrored key
	Remove(ctx context.Context, input *RemoveInput) error
}
