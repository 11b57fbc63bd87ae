package effect

import (
	"github.com/rs/zerolog/log"
)

// ManagerState is a snapshot for health and monitoring endpoints.
type ManagerState struct {
	ActiveCount    int      `json:"activeCount"`
	Active         []string `json:"activeEffects"`
	Releasing      int      `json:"releasing"`
	LastTriggered  string   `json:"lastTriggered,omitempty"`
	LastTriggerMs  float64  `json:"lastTriggerMs"`
	TotalTriggered uint64   `json:"totalTriggered"`
}

// Manager runs effects fired outside the timeline (operator buttons,
// control messages). Instances are kept in trigger order.
type Manager struct {
	reg    *Registry
	seed   uint32
	active []Effect

	clockMs        float64
	total          uint64
	lastTriggered  string
	lastTriggerMs  float64
	defaultMusical *MusicalContext
}

func NewManager(reg *Registry, seed uint32) *Manager {
	return &Manager{reg: reg, seed: seed}
}

// SetMusicalContext sets the snapshot used when a trigger carries none.
func (m *Manager) SetMusicalContext(ctx *MusicalContext) { m.defaultMusical = ctx }

// Trigger creates and starts an instance of typ. A zero seed in cfg is
// replaced by one derived from the manager seed and trigger count unless
// cfg.HasSeed is set.
func (m *Manager) Trigger(typ string, cfg TriggerConfig) (string, error) {
	e, err := m.reg.New(typ)
	if err != nil {
		return "", err
	}
	m.total++
	cfg = m.fill(cfg)
	e.Trigger(cfg)
	m.active = append(m.active, e)
	m.lastTriggered = typ
	m.lastTriggerMs = m.clockMs
	log.Debug().Str("effect", e.ID()).Str("source", cfg.Source).Str("reason", cfg.Reason).Msg("live effect triggered")
	return e.ID(), nil
}

// Retrigger hands cfg to a live instance. Effects that are not
// re-triggerable ignore it; the result only reports whether id was found.
func (m *Manager) Retrigger(id string, cfg TriggerConfig) bool {
	for _, e := range m.active {
		if e.ID() != id {
			continue
		}
		m.total++
		e.Trigger(m.fill(cfg))
		m.lastTriggered = e.Type()
		m.lastTriggerMs = m.clockMs
		return true
	}
	return false
}

func (m *Manager) fill(cfg TriggerConfig) TriggerConfig {
	if cfg.Seed == 0 && !cfg.HasSeed {
		cfg.Seed = SeedFor(m.seed, uint32(m.total))
	}
	if cfg.Musical == nil {
		cfg.Musical = m.defaultMusical
	}
	if cfg.Source == "" {
		cfg.Source = "manual"
	}
	return cfg
}

// Update advances every instance and drops the finished ones.
func (m *Manager) Update(deltaMs float64) {
	if deltaMs > 0 {
		m.clockMs += deltaMs
	}
	kept := m.active[:0]
	for _, e := range m.active {
		e.Advance(deltaMs)
		if e.Finished() {
			continue
		}
		kept = append(kept, e)
	}
	for i := len(kept); i < len(m.active); i++ {
		m.active[i] = nil
	}
	m.active = kept
}

// Active returns live instances in trigger order. The slice is owned by the
// manager and valid until the next Update or Trigger.
func (m *Manager) Active() []Effect { return m.active }

func (m *Manager) Abort(id string) bool {
	for _, e := range m.active {
		if e.ID() == id {
			e.Abort()
			return true
		}
	}
	return false
}

func (m *Manager) AbortAll() {
	for _, e := range m.active {
		e.Abort()
	}
	m.active = m.active[:0]
}

// Release fades an instance out over ms; effects that cannot fade are aborted.
func (m *Manager) Release(id string, ms float64) bool {
	for _, e := range m.active {
		if e.ID() != id {
			continue
		}
		if r, ok := e.(Releaser); ok {
			r.StartRelease(ms)
		} else {
			e.Abort()
		}
		return true
	}
	return false
}

func (m *Manager) Available() []string { return m.reg.List() }

func (m *Manager) State() ManagerState {
	st := ManagerState{
		ActiveCount:    len(m.active),
		Active:         make([]string, 0, len(m.active)),
		LastTriggered:  m.lastTriggered,
		LastTriggerMs:  m.lastTriggerMs,
		TotalTriggered: m.total,
	}
	for _, e := range m.active {
		st.Active = append(st.Active, e.Type())
		if r, ok := e.(Releaser); ok && r.Releasing() {
			st.Releasing++
		}
	}
	return st
}
