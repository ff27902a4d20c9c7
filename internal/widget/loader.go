// Package widget mounts the hosted store's product browser into a page
// container. It drives script injection, readiness polling and the entry
// point call through a ScriptHost, so the same state machine runs in the
// browser and under test.
package widget

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

const (
	DefaultPollInterval = 50 * time.Millisecond
	DefaultTimeout      = 5 * time.Second
	DefaultEntryPoint   = "xProductBrowser"
	DefaultNamespace    = "Ecwid"
)

// ErrInvalidConfig is wrapped by configuration errors.
var ErrInvalidConfig = errors.New("widget: invalid config")

// ContainerIDFor derives the container element id for a store.
func ContainerIDFor(storeID string) string {
	return "my-store-" + strings.TrimSpace(storeID)
}

// ScriptIDFor derives the script element id for a store.
func ScriptIDFor(storeID string) string {
	return "ecwid-script-" + strings.TrimSpace(storeID)
}

// Config describes one mount point.
type Config struct {
	StoreID     string
	ContainerID string
	Script      Script
	EntryPoint  string
	// Directives are handed to the entry point verbatim. An "id=" directive
	// naming the container is appended unless one is present.
	Directives   []string
	PollInterval time.Duration
	Timeout      time.Duration
}

func (c Config) withDefaults() (Config, error) {
	c.StoreID = strings.TrimSpace(c.StoreID)
	if c.StoreID == "" {
		return c, errors.Join(ErrInvalidConfig, errors.New("store id is required"))
	}
	if strings.TrimSpace(c.Script.Src) == "" {
		return c, errors.Join(ErrInvalidConfig, errors.New("script src is required"))
	}
	if c.ContainerID == "" {
		c.ContainerID = ContainerIDFor(c.StoreID)
	}
	if c.Script.ID == "" {
		c.Script.ID = ScriptIDFor(c.StoreID)
	}
	if c.EntryPoint == "" {
		c.EntryPoint = DefaultEntryPoint
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	directives := make([]string, 0, len(c.Directives)+1)
	hasID := false
	for _, d := range c.Directives {
		if strings.HasPrefix(d, "id=") {
			hasID = true
		}
		directives = append(directives, d)
	}
	if !hasID {
		directives = append(directives, "id="+c.ContainerID)
	}
	c.Directives = directives
	return c, nil
}

// Loader owns the lifecycle of one container. Hosts attach with Mount; the
// loader runs at most one attempt at a time and keeps the container bound
// once the entry point has rendered into it.
type Loader struct {
	reg    *Registry
	cfg    Config
	logger *zap.Logger

	mu     sync.Mutex
	status Status
	mounts []*Mount
	cur    *attempt
	bound  bool
}

// attempt is the cancellation token of one run. Its fields are guarded by
// Loader.mu.
type attempt struct {
	id        string
	cancelled bool
	settling  bool
	tick      Timer
	deadline  Timer
}

// Mount is one host's attachment to a loader.
type Mount struct {
	loader  *Loader
	observe func(Status)
	closed  bool
}

func newLoader(r *Registry, cfg Config) *Loader {
	return &Loader{
		reg:    r,
		cfg:    cfg,
		logger: r.logger.With(zap.String("container", cfg.ContainerID), zap.String("store_id", cfg.StoreID)),
	}
}

// Config returns the effective configuration.
func (l *Loader) Config() Config {
	c := l.cfg
	c.Directives = append([]string(nil), l.cfg.Directives...)
	return c
}

// Status returns the current status.
func (l *Loader) Status() Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.status
}

// Bound reports whether the external widget has rendered into the container.
func (l *Loader) Bound() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.bound
}

// Mount attaches a host. observe receives the current status immediately
// and every change until Unmount. The first mount starts an attempt; later
// mounts while an attempt is running or the container is bound only observe.
func (l *Loader) Mount(observe func(Status)) *Mount {
	m := &Mount{loader: l, observe: observe}
	l.mu.Lock()
	l.mounts = append(l.mounts, m)
	var att *attempt
	if l.cur == nil && l.status.State == StateIdle {
		att = l.beginLocked()
	}
	st := l.status
	l.mu.Unlock()

	if observe != nil {
		observe(st)
	}
	if att != nil {
		l.run(att)
	}
	return m
}

// Status returns the loader status as seen by this mount.
func (m *Mount) Status() Status {
	return m.loader.Status()
}

// Unmount detaches the host. When the last host leaves, the running attempt
// is cancelled and its timers released; late callbacks become no-ops. The
// script element is left in place.
func (m *Mount) Unmount() {
	l := m.loader
	l.mu.Lock()
	defer l.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	for i, other := range l.mounts {
		if other == m {
			l.mounts = append(l.mounts[:i], l.mounts[i+1:]...)
			break
		}
	}
	if len(l.mounts) > 0 {
		return
	}
	if att := l.cur; att != nil {
		att.cancelled = true
		stopTimersLocked(att)
		l.cur = nil
	}
	l.status = Status{State: StateIdle}
	l.bound = false
}

// Retry starts a fresh attempt from StateFailed or StateTimedOut. It
// reports whether an attempt was started.
func (m *Mount) Retry() bool {
	l := m.loader
	l.mu.Lock()
	if m.closed || l.cur != nil || !l.status.Retryable() {
		l.mu.Unlock()
		return false
	}
	att := l.beginLocked()
	n := l.noticeLocked()
	l.mu.Unlock()

	n.send()
	l.run(att)
	return true
}

func (l *Loader) beginLocked() *attempt {
	att := &attempt{id: ulid.Make().String()}
	l.cur = att
	l.status = Status{State: StateIdle}
	return att
}

func (l *Loader) run(att *attempt) {
	if l.reg.host.EntryPointReady() {
		l.invoke(att)
		return
	}
	if !l.transition(att, Status{State: StateScriptInjecting}) {
		return
	}
	l.reg.awaitScript(l.cfg.Script, func(err error) { l.scriptSettled(att, err) })
}

func (l *Loader) scriptSettled(att *attempt, err error) {
	if err != nil {
		st := Status{
			State:  StateFailed,
			Reason: ReasonScriptLoad,
			Err:    &ScriptLoadError{Src: l.cfg.Script.Src, Err: err},
		}
		if !l.finish(att, st) {
			return
		}
		l.logger.Warn("store widget script failed",
			zap.String("attempt", att.id), zap.String("script_id", l.cfg.Script.ID), zap.Error(err))
		if errors.Is(err, ErrReloadRequired) {
			l.reg.host.ReloadPage()
		}
		return
	}
	if !l.transition(att, Status{State: StateScriptLoaded}) {
		return
	}
	if l.reg.host.EntryPointReady() {
		l.invoke(att)
		return
	}
	l.poll(att)
}

func (l *Loader) poll(att *attempt) {
	l.mu.Lock()
	if !l.liveLocked(att) {
		l.mu.Unlock()
		return
	}
	l.status = Status{State: StatePolling}
	n := l.noticeLocked()
	att.deadline = l.reg.clock.AfterFunc(l.cfg.Timeout, func() { l.expire(att) })
	att.tick = l.reg.clock.AfterFunc(l.cfg.PollInterval, func() { l.tick(att) })
	l.mu.Unlock()
	n.send()
}

func (l *Loader) tick(att *attempt) {
	if !l.live(att) {
		return
	}
	if l.reg.host.EntryPointReady() {
		l.invoke(att)
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.liveLocked(att) {
		att.tick = l.reg.clock.AfterFunc(l.cfg.PollInterval, func() { l.tick(att) })
	}
}

func (l *Loader) expire(att *attempt) {
	st := Status{
		State: StateTimedOut,
		Err:   &InitTimeoutError{EntryPoint: l.cfg.EntryPoint, Waited: l.cfg.Timeout},
	}
	if l.finish(att, st) {
		l.logger.Warn("store widget entry point timed out", zap.String("attempt", att.id), zap.Duration("waited", l.cfg.Timeout))
	}
}

// invoke calls the entry point at most once per attempt.
func (l *Loader) invoke(att *attempt) {
	l.mu.Lock()
	if !l.liveLocked(att) {
		l.mu.Unlock()
		return
	}
	att.settling = true
	stopTimersLocked(att)
	l.mu.Unlock()

	err := l.reg.host.InvokeEntryPoint(l.cfg.Directives)

	st := Status{State: StateReady}
	if err != nil {
		l.logger.Error("store widget init failed", zap.String("attempt", att.id), zap.Error(err))
		st = Status{
			State:  StateFailed,
			Reason: ReasonInit,
			Err:    &InitInvocationError{EntryPoint: l.cfg.EntryPoint, Err: err},
		}
	}

	l.mu.Lock()
	if att.cancelled || l.cur != att {
		l.mu.Unlock()
		return
	}
	l.status = st
	l.bound = err == nil
	l.cur = nil
	att.cancelled = true
	n := l.noticeLocked()
	l.mu.Unlock()
	n.send()
}

// finish moves a live attempt to a terminal status.
func (l *Loader) finish(att *attempt, st Status) bool {
	l.mu.Lock()
	if !l.liveLocked(att) {
		l.mu.Unlock()
		return false
	}
	stopTimersLocked(att)
	att.cancelled = true
	l.cur = nil
	l.status = st
	n := l.noticeLocked()
	l.mu.Unlock()
	n.send()
	return true
}

func (l *Loader) transition(att *attempt, st Status) bool {
	l.mu.Lock()
	if !l.liveLocked(att) {
		l.mu.Unlock()
		return false
	}
	l.status = st
	n := l.noticeLocked()
	l.mu.Unlock()
	n.send()
	return true
}

func (l *Loader) live(att *attempt) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.liveLocked(att)
}

func (l *Loader) liveLocked(att *attempt) bool {
	return !att.cancelled && !att.settling && l.cur == att
}

func stopTimersLocked(att *attempt) {
	if att.tick != nil {
		att.tick.Stop()
		att.tick = nil
	}
	if att.deadline != nil {
		att.deadline.Stop()
		att.deadline = nil
	}
}

type notice struct {
	observers []func(Status)
	status    Status
}

func (l *Loader) noticeLocked() notice {
	n := notice{status: l.status}
	for _, m := range l.mounts {
		if m.observe != nil {
			n.observers = append(n.observers, m.observe)
		}
	}
	return n
}

func (n notice) send() {
	for _, fn := range n.observers {
		fn(n.status)
	}
}
