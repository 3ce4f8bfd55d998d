// Package address debounces address lookups for one checkout form.
package address

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/jcmexdev/storefront-checkout/internal/checkout-gateway/core/domain/entity"
	"github.com/jcmexdev/storefront-checkout/internal/checkout-gateway/core/ports"
)

const (
	DefaultDelay     = 300 * time.Millisecond
	DefaultMinLength = 3
)

var ErrNoDetails = errors.New("lookup returned no address details")

// UpdateFunc receives the suggestion list each time it changes. It is called
// without internal locks held and never for a superseded query.
type UpdateFunc func(query string, suggestions []entity.AddressSuggestion)

type Option func(*Autocomplete)

func WithDelay(d time.Duration) Option {
	return func(a *Autocomplete) { a.delay = d }
}

func WithMinLength(n int) Option {
	return func(a *Autocomplete) { a.minLength = n }
}

func WithOnUpdate(fn UpdateFunc) Option {
	return func(a *Autocomplete) { a.onUpdate = fn }
}

// Autocomplete turns keystrokes into at most one lookup per pause in typing.
// A new query stops the pending timer, cancels the in-flight lookup and bumps
// a generation counter so that late results for old queries are dropped.
type Autocomplete struct {
	lookup    ports.AddressLookup
	delay     time.Duration
	minLength int
	onUpdate  UpdateFunc

	base context.Context
	stop context.CancelFunc

	// emitMu orders updates: a result is checked against the current
	// generation and delivered without another update interleaving.
	emitMu sync.Mutex
	mu     sync.Mutex
	gen    uint64
	timer  *time.Timer
	cancel context.CancelFunc

	query       string
	suggestions []entity.AddressSuggestion
}

func NewAutocomplete(lookup ports.AddressLookup, opts ...Option) *Autocomplete {
	a := &Autocomplete{
		lookup:    lookup,
		delay:     DefaultDelay,
		minLength: DefaultMinLength,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.base, a.stop = context.WithCancel(context.Background())
	return a
}

// OnQueryChange schedules a lookup for text after the debounce delay. Short
// queries clear the suggestions at once and never reach the lookup service.
func (a *Autocomplete) OnQueryChange(text string) {
	a.mu.Lock()
	gen := a.supersedeLocked()
	a.query = text

	if utf8.RuneCountInString(strings.TrimSpace(text)) < a.minLength {
		a.mu.Unlock()
		a.publish(gen, text, nil)
		return
	}

	a.timer = time.AfterFunc(a.delay, func() { a.search(gen, text) })
	a.mu.Unlock()
}

func (a *Autocomplete) search(gen uint64, query string) {
	a.mu.Lock()
	if gen != a.gen || a.base.Err() != nil {
		a.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(a.base)
	a.cancel = cancel
	a.mu.Unlock()
	defer cancel()

	results, err := a.lookup.Search(ctx, query)
	if err != nil && ctx.Err() == nil {
		slog.Warn("address search failed", "query", query, "error", err)
	}
	if err != nil {
		results = nil
	}
	if !a.publish(gen, query, results) {
		slog.Debug("discarding stale address suggestions", "query", query)
	}
}

// Select fetches the details of a suggestion into the billing address and,
// when shipping mirrors billing, into shipping too. The query and the
// suggestion list are cleared whatever the outcome.
func (a *Autocomplete) Select(ctx context.Context, id string, form *entity.CheckoutForm) error {
	a.mu.Lock()
	gen := a.supersedeLocked()
	a.mu.Unlock()

	details, err := a.lookup.Details(ctx, id)
	a.publish(gen, "", nil)

	if err != nil {
		return fmt.Errorf("address details %s: %w", id, err)
	}
	if details == nil {
		return fmt.Errorf("address details %s: %w", id, ErrNoDetails)
	}
	details.ApplyTo(&form.Billing)
	if form.ShippingSameAsBilling {
		details.ApplyTo(&form.Shipping)
	}
	return nil
}

func (a *Autocomplete) Query() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.query
}

func (a *Autocomplete) Suggestions() []entity.AddressSuggestion {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]entity.AddressSuggestion(nil), a.suggestions...)
}

// Close cancels pending and in-flight lookups. No updates are emitted
// afterwards.
func (a *Autocomplete) Close() {
	a.mu.Lock()
	a.supersedeLocked()
	a.mu.Unlock()
	a.stop()
}

// supersedeLocked invalidates all earlier work and returns the new
// generation. a.mu must be held.
func (a *Autocomplete) supersedeLocked() uint64 {
	a.gen++
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	return a.gen
}

// publish stores and emits the state for gen. It reports false, and changes
// nothing, when gen has been superseded.
func (a *Autocomplete) publish(gen uint64, query string, suggestions []entity.AddressSuggestion) bool {
	a.emitMu.Lock()
	defer a.emitMu.Unlock()

	a.mu.Lock()
	if gen != a.gen {
		a.mu.Unlock()
		return false
	}
	a.query = query
	a.suggestions = suggestions
	a.mu.Unlock()

	if a.onUpdate != nil && a.base.Err() == nil {
		a.onUpdate(query, suggestions)
	}
	return true
}
