package eventproxy

import (
	"log/slog"
	"sync"

	"github.com/gogpu/subcanvas"
)

// Manager keeps one Proxy per canvas id.
type Manager struct {
	mu      sync.RWMutex
	proxies map[string]*Proxy
	log     *slog.Logger
}

// NewManager returns an empty manager. A nil logger falls back to
// subcanvas.Logger().
func NewManager(log *slog.Logger) *Manager {
	return &Manager{proxies: make(map[string]*Proxy), log: log}
}

func (m *Manager) logger() *slog.Logger { return subcanvas.LoggerOr(m.log) }

// Create makes a fresh proxy for id, replacing any existing one.
func (m *Manager) Create(id string) *Proxy {
	p := NewProxy()
	m.mu.Lock()
	m.proxies[id] = p
	m.mu.Unlock()
	return p
}

// Get returns the proxy for id.
func (m *Manager) Get(id string) (*Proxy, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.proxies[id]
	return p, ok
}

// Remove drops the proxy for id. Unknown ids are ignored.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	delete(m.proxies, id)
	m.mu.Unlock()
}

// Route hands ev to the proxy for id. Events for unknown ids are dropped.
// It reports whether a proxy received the event.
func (m *Manager) Route(id string, ev Event) bool {
	p, ok := m.Get(id)
	if !ok {
		m.logger().Debug("eventproxy: dropping event for unknown canvas", "id", id, "type", ev.Type)
		return false
	}
	p.HandleEvent(ev)
	return true
}

// Len returns the number of live proxies.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.proxies)
}
