package widget

import (
	"sync"

	"go.uber.org/zap"
)

type scriptPhase int

const (
	scriptLoading scriptPhase = iota + 1
	scriptLoaded
	scriptFailed
)

type scriptEntry struct {
	src     string
	phase   scriptPhase
	err     error
	waiters []func(error)
}

// Registry is the page-wide owner of script elements and container loaders.
// A page keeps exactly one Registry for its lifetime.
type Registry struct {
	host   ScriptHost
	clock  Clock
	logger *zap.Logger

	mu      sync.Mutex
	scripts map[string]*scriptEntry
	loaders map[string]*Loader
}

// Option customises a Registry.
type Option func(*Registry)

// WithClock replaces the system clock.
func WithClock(c Clock) Option {
	return func(r *Registry) {
		if c != nil {
			r.clock = c
		}
	}
}

// WithLogger sets the base logger of every loader.
func WithLogger(l *zap.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRegistry builds a registry driving host.
func NewRegistry(host ScriptHost, opts ...Option) *Registry {
	r := &Registry{
		host:    host,
		clock:   SystemClock{},
		logger:  zap.NewNop(),
		scripts: map[string]*scriptEntry{},
		loaders: map[string]*Loader{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Loader returns the loader bound to cfg's container, creating it on first
// use. A later call for the same container returns the existing loader and
// ignores the rest of cfg.
func (r *Registry) Loader(cfg Config) (*Loader, error) {
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.loaders[cfg.ContainerID]; ok {
		return l, nil
	}
	l := newLoader(r, cfg)
	r.loaders[cfg.ContainerID] = l
	return l, nil
}

// awaitScript arranges for done to receive the load outcome of s. At most one
// element per script id is ever injected; concurrent callers share the
// in-flight load. A failed element is re-observed when the host allows it,
// otherwise done receives ErrReloadRequired.
func (r *Registry) awaitScript(s Script, done func(error)) {
	settle := func(err error) { r.settle(s.ID, err) }

	r.mu.Lock()
	entry, ok := r.scripts[s.ID]
	if !ok {
		entry = &scriptEntry{src: s.Src, phase: scriptLoading, waiters: []func(error){done}}
		r.scripts[s.ID] = entry
		present := r.host.ScriptPresent(s.ID)
		r.mu.Unlock()
		if !present {
			r.host.InjectScript(s, settle)
			return
		}
		// Placed by someone else; follow it, or let polling decide.
		if !r.host.RewaitScript(s.ID, settle) {
			settle(nil)
		}
		return
	}

	switch entry.phase {
	case scriptLoading:
		entry.waiters = append(entry.waiters, done)
		r.mu.Unlock()
	case scriptLoaded:
		r.mu.Unlock()
		done(nil)
	default:
		entry.phase = scriptLoading
		entry.err = nil
		entry.waiters = append(entry.waiters, done)
		r.mu.Unlock()
		if !r.host.RewaitScript(s.ID, settle) {
			settle(ErrReloadRequired)
		}
	}
}

func (r *Registry) settle(id string, err error) {
	r.mu.Lock()
	entry := r.scripts[id]
	if entry == nil || entry.phase != scriptLoading {
		r.mu.Unlock()
		return
	}
	waiters := entry.waiters
	entry.waiters = nil
	if err != nil {
		entry.phase = scriptFailed
		entry.err = err
	} else {
		entry.phase = scriptLoaded
	}
	r.mu.Unlock()

	for _, w := range waiters {
		w(err)
	}
}
