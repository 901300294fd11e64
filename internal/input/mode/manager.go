package mode

import "sync"

// ChangeCallback is called after the mode changes.
type ChangeCallback func(from, to Kind)

// Manager tracks the current mode and notifies observers on change.
type Manager struct {
	mu sync.RWMutex

	current  Kind
	previous Kind

	callbacks []ChangeCallback
}

// NewManager creates a manager starting in Normal mode.
func NewManager() *Manager {
	return &Manager{current: Normal, previous: Normal}
}

// Current returns the active mode.
func (m *Manager) Current() Kind {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Previous returns the mode that was active before the last switch.
func (m *Manager) Previous() Kind {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.previous
}

// Is reports whether the current mode is any of kinds.
func (m *Manager) Is(kinds ...Kind) bool {
	cur := m.Current()
	for _, k := range kinds {
		if cur == k {
			return true
		}
	}
	return false
}

// Switch makes to the current mode. Switching to the current mode is a
// no-op and fires no callbacks. It returns the mode that was left.
func (m *Manager) Switch(to Kind) Kind {
	m.mu.Lock()
	from := m.current
	if from == to {
		m.mu.Unlock()
		return from
	}
	m.previous = from
	m.current = to
	callbacks := make([]ChangeCallback, 0, len(m.callbacks))
	for _, cb := range m.callbacks {
		if cb != nil {
			callbacks = append(callbacks, cb)
		}
	}
	m.mu.Unlock()

	// Callbacks run outside the lock so they may query the manager.
	for _, cb := range callbacks {
		cb(from, to)
	}
	return from
}

// OnChange registers a callback and returns a function that removes it.
func (m *Manager) OnChange(cb ChangeCallback) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.callbacks = append(m.callbacks, cb)
	index := len(m.callbacks) - 1

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if index < len(m.callbacks) {
			m.callbacks[index] = nil
		}
	}
}
