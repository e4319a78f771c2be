// Package registry maps calendar names and aliases to built, memoized
// session indexes.
package registry

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/gerrymanoim/exchange-calendars/internal/calendar"
)

// Store is an optional warm cache of built indexes consulted before a
// build and written after one. Failures are logged and treated as
// misses; the store is never a source of truth.
type Store interface {
	Load(name string, start, end time.Time) (*calendar.SessionIndex, bool)
	Save(ix *calendar.SessionIndex) error
}

type cached struct {
	index *calendar.SessionIndex
}

// Registry is the shared mutable resource of the system: the name and
// alias maps plus the per-calendar memoization cache. Registration and
// aliasing are rare writer operations; resolution and retrieval are
// frequent reader operations, so both maps sit behind one RWMutex.
// Concurrent Get calls for the same calendar share a single build.
type Registry struct {
	mu        sync.RWMutex
	calendars map[string]calendar.Config
	aliases   map[string]string
	cache     map[string]*cached
	// gens counts configuration changes per canonical name. A build
	// captures the generation it started under; memoize discards the
	// result if the configuration was replaced in the meantime.
	gens map[string]uint64

	group singleflight.Group
	store Store
	log   zerolog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithStore attaches a snapshot store.
func WithStore(s Store) Option {
	return func(r *Registry) { r.store = s }
}

// New creates an empty registry.
func New(log zerolog.Logger, opts ...Option) *Registry {
	r := &Registry{
		calendars: make(map[string]calendar.Config),
		aliases:   make(map[string]string),
		cache:     make(map[string]*cached),
		gens:      make(map[string]uint64),
		log:       log.With().Str("component", "registry").Logger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a calendar configuration under its canonical name.
// Registering a name that already exists fails with a
// NameCollisionError unless replace is set, in which case the new
// configuration takes effect for subsequent builds.
func (r *Registry) Register(cfg calendar.Config, replace bool) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if !replace {
		if r.taken(cfg.Name) {
			return &calendar.NameCollisionError{Name: cfg.Name}
		}
	} else if _, isAlias := r.aliases[cfg.Name]; isAlias {
		// Replace only swaps canonical entries; it never silently
		// shadows an alias.
		return &calendar.NameCollisionError{Name: cfg.Name}
	}

	r.calendars[cfg.Name] = cfg
	delete(r.cache, cfg.Name)
	r.gens[cfg.Name]++
	r.log.Debug().Str("calendar", cfg.Name).Bool("replace", replace).Msg("Calendar registered")
	return nil
}

// Alias maps name to target. The target may be registered later;
// cycles are caught at resolve time, not here.
func (r *Registry) Alias(name, target string, replace bool) error {
	if name == target {
		return &calendar.CyclicAliasError{Cycle: []string{name, target}}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if !replace {
		if r.taken(name) {
			return &calendar.NameCollisionError{Name: name}
		}
	} else if _, isCanonical := r.calendars[name]; isCanonical {
		return &calendar.NameCollisionError{Name: name}
	}

	r.aliases[name] = target
	r.log.Debug().Str("alias", name).Str("target", target).Msg("Alias registered")
	return nil
}

func (r *Registry) taken(name string) bool {
	if _, ok := r.calendars[name]; ok {
		return true
	}
	_, ok := r.aliases[name]
	return ok
}

// Resolve follows alias edges from name to a canonical calendar name.
// A name revisited before reaching a canonical entry is a
// CyclicAliasError; an edge to a name that is neither registered nor
// aliased is an UnknownCalendarError. Resolving an already-canonical
// name returns it unchanged.
func (r *Registry) Resolve(name string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.resolveLocked(name)
}

func (r *Registry) resolveLocked(name string) (string, error) {
	visited := make(map[string]struct{})
	var path []string

	cur := name
	for {
		if _, ok := r.calendars[cur]; ok {
			return cur, nil
		}
		if _, seen := visited[cur]; seen {
			return "", &calendar.CyclicAliasError{Cycle: append(path, cur)}
		}
		visited[cur] = struct{}{}
		path = append(path, cur)

		next, ok := r.aliases[cur]
		if !ok {
			return "", &calendar.UnknownCalendarError{Name: cur}
		}
		cur = next
	}
}

// Get resolves name and returns a session index covering [start, end],
// building one if no memoized index covers the range. A sub-range of an
// already-built wider index is served from cache without rebuilding; a
// wider request rebuilds over the union of the cached and requested
// ranges and replaces the cache entry. At most one build runs per
// canonical name at a time; concurrent callers await the in-flight
// build.
func (r *Registry) Get(name string, start, end time.Time) (*calendar.SessionIndex, error) {
	start, end = calendar.Midnight(start), calendar.Midnight(end)

	r.mu.RLock()
	canonical, err := r.resolveLocked(name)
	if err != nil {
		r.mu.RUnlock()
		return nil, err
	}
	if entry, ok := r.cache[canonical]; ok && entry.index.Covers(start, end) {
		r.mu.RUnlock()
		return entry.index, nil
	}
	r.mu.RUnlock()

	// The singleflight key is the canonical name: overlapping range
	// requests coalesce into one widened build rather than racing.
	key := canonical
	ix, err, _ := r.group.Do(key, func() (interface{}, error) {
		return r.build(canonical, start, end)
	})
	if err != nil {
		return nil, err
	}

	index := ix.(*calendar.SessionIndex)
	if !index.Covers(start, end) {
		// A concurrent caller's narrower build won the flight; retry
		// with the cache now holding its result.
		return r.Get(name, start, end)
	}
	return index, nil
}

func (r *Registry) build(canonical string, start, end time.Time) (*calendar.SessionIndex, error) {
	r.mu.RLock()
	cfg, ok := r.calendars[canonical]
	entry := r.cache[canonical]
	gen := r.gens[canonical]
	r.mu.RUnlock()
	if !ok {
		return nil, &calendar.UnknownCalendarError{Name: canonical}
	}

	// Widen to cover any previously built range so the replacement
	// serves every query the old index could.
	if entry != nil {
		if entry.index.Covers(start, end) {
			return entry.index, nil
		}
		if entry.index.Start().Before(start) {
			start = entry.index.Start()
		}
		if entry.index.End().After(end) {
			end = entry.index.End()
		}
	}

	if r.store != nil {
		if ix, ok := r.store.Load(canonical, start, end); ok {
			r.memoize(canonical, ix, gen)
			return ix, nil
		}
	}

	began := time.Now()
	ix, err := calendar.Build(cfg, start, end)
	if err != nil {
		return nil, err
	}
	r.log.Debug().
		Str("calendar", canonical).
		Str("start", calendar.FormatDate(start)).
		Str("end", calendar.FormatDate(end)).
		Int("sessions", ix.Len()).
		Dur("took", time.Since(began)).
		Msg("Calendar built")

	if r.store != nil {
		if err := r.store.Save(ix); err != nil {
			r.log.Warn().Err(err).Str("calendar", canonical).Msg("Failed to persist calendar snapshot")
		}
	}

	r.memoize(canonical, ix, gen)
	return ix, nil
}

func (r *Registry) memoize(canonical string, ix *calendar.SessionIndex, gen uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	// A replace during the build changed the configuration; the result
	// reflects the old one and must not be cached.
	if r.gens[canonical] != gen {
		return
	}
	// Keep whichever index covers more; a stale narrower build must not
	// clobber a wider one.
	if entry, ok := r.cache[canonical]; ok && entry.index.Covers(ix.Start(), ix.End()) {
		return
	}
	r.cache[canonical] = &cached{index: ix}
}

// Names returns every canonical calendar name, unordered.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.calendars))
	for name := range r.calendars {
		out = append(out, name)
	}
	return out
}

// Aliases returns a copy of the alias map.
func (r *Registry) Aliases() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]string, len(r.aliases))
	for k, v := range r.aliases {
		out[k] = v
	}
	return out
}

// Config returns the registered configuration for a canonical name.
func (r *Registry) Config(canonical string) (calendar.Config, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.calendars[canonical]
	if !ok {
		return calendar.Config{}, &calendar.UnknownCalendarError{Name: canonical}
	}
	return cfg, nil
}

// Deregister removes a canonical calendar or an alias and any memoized
// index. Removing an unknown name is an UnknownCalendarError.
func (r *Registry) Deregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.calendars[name]; ok {
		delete(r.calendars, name)
		delete(r.cache, name)
		r.gens[name]++
		return nil
	}
	if _, ok := r.aliases[name]; ok {
		delete(r.aliases, name)
		return nil
	}
	return &calendar.UnknownCalendarError{Name: name}
}

// Reset clears every registration, alias, and memoized index. Intended
// for test isolation.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calendars = make(map[string]calendar.Config)
	r.aliases = make(map[string]string)
	r.cache = make(map[string]*cached)
	// Generations survive a reset so an in-flight build from before the
	// reset cannot memoize against a re-registered name.
	for name := range r.gens {
		r.gens[name]++
	}
}

// String summarizes the registry contents for logs.
func (r *Registry) String() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return fmt.Sprintf("registry(%d calendars, %d aliases)", len(r.calendars), len(r.aliases))
}
