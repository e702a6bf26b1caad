package ephemeris

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru"
	"github.com/rs/zerolog"
)

type cacheKey struct {
	id int
	jd float64
}

// CachedProvider memoizes another provider's states per (body, date).
type CachedProvider struct {
	next  Provider
	cache *lru.Cache
}

// Cached wraps p with an LRU cache holding up to size entries.
func Cached(p Provider, size int) (*CachedProvider, error) {
	c, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("ephemeris cache: %w", err)
	}
	return &CachedProvider{next: p, cache: c}, nil
}

func (c *CachedProvider) Name() string { return c.next.Name() }

func (c *CachedProvider) State(ctx context.Context, id int, date Date) (State, error) {
	key := cacheKey{id: id, jd: date.JD}
	if v, ok := c.cache.Get(key); ok {
		return v.(State), nil
	}
	st, err := c.next.State(ctx, id, date)
	if err != nil {
		return State{}, err
	}
	c.cache.Add(key, st)
	return st, nil
}

// Len reports the number of cached entries.
func (c *CachedProvider) Len() int { return c.cache.Len() }

// FallbackProvider asks the primary provider first and the secondary one
// when the primary fails.
type FallbackProvider struct {
	primary   Provider
	secondary Provider
	log       zerolog.Logger
}

// Fallback chains two providers.
func Fallback(primary, secondary Provider, log zerolog.Logger) *FallbackProvider {
	return &FallbackProvider{primary: primary, secondary: secondary, log: log}
}

func (f *FallbackProvider) Name() string {
	return f.primary.Name() + "+" + f.secondary.Name()
}

func (f *FallbackProvider) State(ctx context.Context, id int, date Date) (State, error) {
	st, err := f.primary.State(ctx, id, date)
	if err == nil {
		return st, nil
	}
	if ctx.Err() != nil {
		return State{}, err
	}
	f.log.Warn().
		Err(err).
		Int("body", id).
		Str("date", date.String()).
		Str("fallback", f.secondary.Name()).
		Msg("primary ephemeris failed")

	st, err2 := f.secondary.State(ctx, id, date)
	if err2 != nil {
		return State{}, fmt.Errorf("%s: %w; %s: %w", f.primary.Name(), err, f.secondary.Name(), err2)
	}
	return st, nil
}

// Options selects and tunes the provider built by NewProvider.
type Options struct {
	Mode      Mode
	Horizons  []HorizonsOption
	Endpoint  string
	CacheSize int
	Logger    zerolog.Logger
}

// NewProvider builds the provider stack for opts.Mode, cached when
// opts.CacheSize is positive.
func NewProvider(opts Options) (Provider, error) {
	var p Provider
	switch opts.Mode {
	case ModeHorizons:
		p = NewHorizons(opts.Endpoint, opts.Horizons...)
	case ModeMeeus:
		p = NewMeeus()
	case ModeAuto:
		p = Fallback(NewHorizons(opts.Endpoint, opts.Horizons...), NewMeeus(), opts.Logger)
	default:
		return nil, fmt.Errorf("unsupported ephemeris mode %d", opts.Mode)
	}
	if opts.CacheSize <= 0 {
		return p, nil
	}
	cached, err := Cached(p, opts.CacheSize)
	if err != nil {
		return nil, err
	}
	return cached, nil
}
