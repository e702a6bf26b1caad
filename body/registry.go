package body

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/echoflaresat/spaceview/ephemeris"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// ErrBodyNotFound is returned for names the registry does not hold.
var ErrBodyNotFound = errors.New("body not found")

// Registry owns the body records. Callers only ever see copies.
type Registry struct {
	provider    ephemeris.Provider
	log         zerolog.Logger
	concurrency int

	mu     sync.RWMutex
	bodies map[string]*Body
	order  []string
	date   string
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLogger sets the registry logger.
func WithLogger(log zerolog.Logger) RegistryOption {
	return func(r *Registry) { r.log = log }
}

// WithConcurrency bounds the number of parallel ephemeris requests.
func WithConcurrency(n int) RegistryOption {
	return func(r *Registry) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// NewRegistry creates a body for each catalog entry and loads its state for date.
func NewRegistry(ctx context.Context, provider ephemeris.Provider, catalog []Spec, date string, opts ...RegistryOption) (*Registry, error) {
	r := &Registry{
		provider:    provider,
		log:         zerolog.Nop(),
		concurrency: 4,
		bodies:      make(map[string]*Body, len(catalog)),
	}
	for _, opt := range opts {
		opt(r)
	}
	for _, s := range catalog {
		if _, dup := r.bodies[s.Name]; dup {
			return nil, fmt.Errorf("duplicate body %q in catalog", s.Name)
		}
		r.bodies[s.Name] = &Body{Name: s.Name, Index: s.Index, Color: s.Color, Radius: s.Radius}
		r.order = append(r.order, s.Name)
	}
	if err := r.SetDate(ctx, date); err != nil {
		return nil, err
	}
	return r, nil
}

// Get returns a copy of the named body.
func (r *Registry) Get(name string) (Body, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.bodies[name]
	if !ok {
		return Body{}, fmt.Errorf("%w: %q", ErrBodyNotFound, name)
	}
	return *b, nil
}

// Bodies returns copies of all bodies in catalog order.
func (r *Registry) Bodies() []Body {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Body, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, *r.bodies[name])
	}
	return out
}

// Names returns the body names in catalog order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Date returns the date all bodies were last loaded for.
func (r *Registry) Date() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.date
}

// SetDate refetches every body whose data is not already for date. Either
// all bodies move to the new date or none do.
func (r *Registry) SetDate(ctx context.Context, date string) error {
	d, err := ephemeris.ParseDate(date)
	if err != nil {
		return err
	}

	r.mu.RLock()
	var stale []Body
	for _, name := range r.order {
		if b := r.bodies[name]; b.DataDate != date {
			stale = append(stale, *b)
		}
	}
	r.mu.RUnlock()

	states := make([]ephemeris.State, len(stale))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, b := range stale {
		g.Go(func() error {
			st, err := r.provider.State(gctx, b.Index, d)
			if err != nil {
				return fmt.Errorf("load %s (%d) for %s: %w", b.Name, b.Index, date, err)
			}
			states[i] = st
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for i, b := range stale {
		rec := r.bodies[b.Name]
		rec.Position = states[i].Position
		if states[i].Radius > 0 {
			rec.Radius = states[i].Radius
		}
		rec.DataDate = date
	}
	r.date = date
	r.log.Info().
		Str("date", date).
		Int("refreshed", len(stale)).
		Str("provider", r.provider.Name()).
		Msg("bodies loaded")
	return nil
}
