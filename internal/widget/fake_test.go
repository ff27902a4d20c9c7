package widget

import (
	"sort"
	"sync"
	"time"
)

// manualClock fires callbacks only when Advance moves past their deadline.
type manualClock struct {
	mu     sync.Mutex
	now    time.Duration
	seq    int
	timers []*manualTimer
}

type manualTimer struct {
	clock   *manualClock
	at      time.Duration
	seq     int
	fn      func()
	stopped bool
	fired   bool
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	t := &manualTimer{clock: c, at: c.now + d, seq: c.seq, fn: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Advance moves time forward by d, firing due timers in deadline order.
func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now + d
	c.mu.Unlock()
	for {
		c.mu.Lock()
		next := c.nextLocked(target)
		if next == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		c.now = next.at
		next.fired = true
		c.mu.Unlock()
		next.fn()
	}
}

func (c *manualClock) nextLocked(limit time.Duration) *manualTimer {
	var due []*manualTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && t.at <= limit {
			due = append(due, t)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].at == due[j].at {
			return due[i].seq < due[j].seq
		}
		return due[i].at < due[j].at
	})
	return due[0]
}

// Pending counts timers that have neither fired nor been stopped.
func (c *manualClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// fakeHost records what the loader asks of the page.
type fakeHost struct {
	mu sync.Mutex

	ready     bool
	present   map[string]bool
	injected  []Script
	loads     map[string][]func(error)
	canRewait bool
	rewaits   int
	invoked   [][]string
	invokeErr error
	reloads   int
}

func newFakeHost() *fakeHost {
	return &fakeHost{present: map[string]bool{}, loads: map[string][]func(error){}, canRewait: true}
}

func (h *fakeHost) EntryPointReady() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.ready
}

func (h *fakeHost) ScriptPresent(id string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.present[id]
}

func (h *fakeHost) InjectScript(s Script, done func(error)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.present[s.ID] = true
	h.injected = append(h.injected, s)
	h.loads[s.ID] = append(h.loads[s.ID], done)
}

func (h *fakeHost) RewaitScript(id string, done func(error)) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.canRewait {
		return false
	}
	h.rewaits++
	h.loads[id] = append(h.loads[id], done)
	return true
}

func (h *fakeHost) InvokeEntryPoint(directives []string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.invoked = append(h.invoked, append([]string(nil), directives...))
	return h.invokeErr
}

func (h *fakeHost) ReloadPage() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.reloads++
}

// finishLoad settles every pending load callback for id.
func (h *fakeHost) finishLoad(id string, err error) {
	h.mu.Lock()
	pending := h.loads[id]
	delete(h.loads, id)
	h.mu.Unlock()
	for _, done := range pending {
		done(err)
	}
}

func (h *fakeHost) setReady(v bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ready = v
}

func (h *fakeHost) setInvokeErr(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.invokeErr = err
}

func (h *fakeHost) injectCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.injected)
}

func (h *fakeHost) invokeCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.invoked)
}

func (h *fakeHost) reloadCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.reloads
}

// recorder collects the states a mount observes.
type recorder struct {
	mu     sync.Mutex
	states []Status
}

func (r *recorder) observe(s Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, s)
}

func (r *recorder) sequence() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]State, len(r.states))
	for i, s := range r.states {
		out[i] = s.State
	}
	return out
}

func (r *recorder) last() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.states) == 0 {
		return Status{}
	}
	return r.states[len(r.states)-1]
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.states)
}
