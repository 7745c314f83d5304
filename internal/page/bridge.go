// Package page holds the daemon-side view of the host page. A companion
// script in the page pushes navigation, document snapshots, button presses,
// DOM mutations and outgoing requests here; watchers subscribe to them.
package page

import (
	"context"
	"net/http"
	"net/url"
	"sync"

	"github.com/KirkDiggler/dice-bridge/internal/errors"
)

// MutationChildList is the only mutation type watchers react to
const MutationChildList = "childList"

// Mutation is one DOM mutation record observed by the page
type Mutation struct {
	Type string `json:"type"`
	// HTML is the outer HTML of the observed container after the mutation
	HTML string `json:"html"`
}

// InterceptRequest is an outgoing page request offered to interceptors
type InterceptRequest struct {
	URL *url.URL
}

// InterceptResponse is the synthetic response handed back to the page
type InterceptResponse struct {
	Status      int
	ContentType string
	Body        []byte
}

// InterceptFunc inspects a request and returns a response when it claims it
type InterceptFunc func(ctx context.Context, req *InterceptRequest) (*InterceptResponse, bool, error)

// DocumentSource exposes the latest document snapshot
type DocumentSource interface {
	Document() string
}

// DOMSource delivers button presses and container mutations
type DOMSource interface {
	OnPress(fn func(ctx context.Context)) (cancel func())
	Observe(fn func(ctx context.Context, m Mutation)) (disconnect func())
}

// RequestInterceptor lets a watcher claim outgoing roll requests
type RequestInterceptor interface {
	Intercept(fn InterceptFunc) (cancel func())
}

type subscription[T any] struct {
	id int
	fn T
}

// Bridge fans page signals out to subscribers. It is safe for concurrent use.
type Bridge struct {
	mu           sync.RWMutex
	url          string
	document     string
	nextID       int
	presses      []subscription[func(ctx context.Context)]
	observers    []subscription[func(ctx context.Context, m Mutation)]
	interceptors []subscription[InterceptFunc]
}

// NewBridge creates an empty bridge
func NewBridge() *Bridge {
	return &Bridge{}
}

var (
	_ DocumentSource     = (*Bridge)(nil)
	_ DOMSource          = (*Bridge)(nil)
	_ RequestInterceptor = (*Bridge)(nil)
)

// SetURL records the page URL
func (b *Bridge) SetURL(u string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.url = u
}

// URL returns the last recorded page URL
func (b *Bridge) URL() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.url
}

// SetDocument replaces the document snapshot
func (b *Bridge) SetDocument(html string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.document = html
}

// Document returns the latest document snapshot
func (b *Bridge) Document() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.document
}

// OnPress subscribes to roll button presses
func (b *Bridge) OnPress(fn func(ctx context.Context)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.allocID()
	b.presses = append(b.presses, subscription[func(ctx context.Context)]{id: id, fn: fn})
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.presses = remove(b.presses, id)
	}
}

// Observe subscribes to container mutations until disconnect is called
func (b *Bridge) Observe(fn func(ctx context.Context, m Mutation)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.allocID()
	b.observers = append(b.observers, subscription[func(ctx context.Context, m Mutation)]{id: id, fn: fn})
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.observers = remove(b.observers, id)
	}
}

// Intercept registers a request interceptor
func (b *Bridge) Intercept(fn InterceptFunc) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.allocID()
	b.interceptors = append(b.interceptors, subscription[InterceptFunc]{id: id, fn: fn})
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.interceptors = remove(b.interceptors, id)
	}
}

// Press notifies press subscribers
func (b *Bridge) Press(ctx context.Context) {
	b.mu.RLock()
	subs := append([]subscription[func(ctx context.Context)](nil), b.presses...)
	b.mu.RUnlock()

	for _, s := range subs {
		s.fn(ctx)
	}
}

// Mutate notifies observers of a mutation
func (b *Bridge) Mutate(ctx context.Context, m Mutation) {
	b.mu.RLock()
	subs := append([]subscription[func(ctx context.Context, m Mutation)](nil), b.observers...)
	b.mu.RUnlock()

	for _, s := range subs {
		s.fn(ctx, m)
	}
}

// Observing reports whether any observer is connected
func (b *Bridge) Observing() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.observers) > 0
}

// HandleRequest offers an outgoing request to the interceptors in
// registration order. handled is false when nobody claims it, in which case
// the page lets the request through.
func (b *Bridge) HandleRequest(ctx context.Context, rawURL string) (resp *InterceptResponse, handled bool, err error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, false, errors.InvalidArgumentf("invalid request url %q", rawURL)
	}

	b.mu.RLock()
	subs := append([]subscription[InterceptFunc](nil), b.interceptors...)
	b.mu.RUnlock()

	req := &InterceptRequest{URL: u}
	for _, s := range subs {
		resp, ok, err := s.fn(ctx, req)
		if err != nil {
			return nil, true, err
		}
		if !ok {
			continue
		}
		if resp.Status == 0 {
			resp.Status = http.StatusOK
		}
		return resp, true, nil
	}
	return nil, false, nil
}

// Reset drops the document and every subscription
func (b *Bridge) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.document = ""
	b.presses = nil
	b.observers = nil
	b.interceptors = nil
}

func (b *Bridge) allocID() int {
	b.nextID++
	return b.nextID
}

func remove[T any](subs []subscription[T], id int) []subscription[T] {
	out := subs[:0]
	for _, s := range subs {
		if s.id != id {
			out = append(out, s)
		}
	}
	return out
}
