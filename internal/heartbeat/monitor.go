// Package heartbeat detects silent connections. A Monitor probes the peer
// after a quiet period and declares it dead after a bounded number of
// unanswered retries.
package heartbeat

import (
	"sync"
	"time"
)

// State is the liveness state of a connection.
type State int

const (
	Idle State = iota
	Probing
	Retrying
	Dead
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Probing:
		return "probing"
	case Retrying:
		return "retrying"
	case Dead:
		return "dead"
	}
	return "unknown"
}

// Config controls probe timing.
type Config struct {
	Initial    time.Duration
	Retry      time.Duration
	MaxRetries int
}

// DefaultConfig waits 5s before the first probe, then probes every 2.5s and
// gives up after three retries.
func DefaultConfig() Config {
	return Config{
		Initial:    5 * time.Second,
		Retry:      2500 * time.Millisecond,
		MaxRetries: 3,
	}
}

// DetectionLatency is the longest a dead peer can go unnoticed.
func (c Config) DetectionLatency() time.Duration {
	return c.Initial + time.Duration(c.MaxRetries)*c.Retry
}

// Monitor is the per-connection liveness timer. onProbe and onDead are
// invoked from timer goroutines without the monitor's lock held.
type Monitor struct {
	mu      sync.Mutex
	cfg     Config
	onProbe func()
	onDead  func()

	timer   *time.Timer
	gen     uint64
	state   State
	retries int
	stopped bool
}

// New builds an unstarted Monitor.
func New(cfg Config, onProbe, onDead func()) *Monitor {
	if onProbe == nil {
		onProbe = func() {}
	}
	if onDead == nil {
		onDead = func() {}
	}
	return &Monitor{cfg: cfg, onProbe: onProbe, onDead: onDead}
}

// Start arms the initial silence window.
func (m *Monitor) Start() {
	m.Rearm()
}

// Rearm records inbound traffic: pending probes are cancelled and the
// initial window starts over.
func (m *Monitor) Rearm() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopped || m.state == Dead {
		return
	}
	m.state = Idle
	m.retries = 0
	m.schedule(m.cfg.Initial)
}

// Stop cancels all timers. A stopped monitor never fires again.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = true
	m.gen++
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

// State returns the current state.
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Retries returns the number of retry probes sent since the last rearm.
func (m *Monitor) Retries() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.retries
}

// schedule must be called with mu held.
func (m *Monitor) schedule(d time.Duration) {
	m.gen++
	if m.timer != nil {
		m.timer.Stop()
	}
	gen := m.gen
	m.timer = time.AfterFunc(d, func() { m.fire(gen) })
}

func (m *Monitor) fire(gen uint64) {
	m.mu.Lock()
	// stale fire from a timer replaced by Rearm or Stop
	if gen != m.gen || m.stopped || m.state == Dead {
		m.mu.Unlock()
		return
	}

	dead := false
	switch m.state {
	case Idle:
		m.state = Probing
		m.schedule(m.cfg.Retry)
	case Probing, Retrying:
		m.retries++
		if m.retries >= m.cfg.MaxRetries {
			m.state = Dead
			m.timer = nil
			dead = true
		} else {
			m.state = Retrying
			m.schedule(m.cfg.Retry)
		}
	}
	m.mu.Unlock()

	m.onProbe()
	if dead {
		m.onDead()
	}
}
