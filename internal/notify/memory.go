package notify

import (
	"sort"
	"sync"
)

// Memory is an in-process Service used in tests and as a fallback
// when no store is wired.
type Memory struct {
	mu      sync.Mutex
	pending map[string]Request
}

func NewMemory() *Memory {
	return &Memory{pending: make(map[string]Request)}
}

func (m *Memory) RequestAuthorization() error { return nil }

func (m *Memory) Submit(req Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending[req.ID] = req
	return nil
}

func (m *Memory) Cancel(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.pending, id)
	return nil
}

func (m *Memory) ListPending() ([]Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, 0, len(m.pending))
	for _, r := range m.pending {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TriggerAt.Before(out[j].TriggerAt) })
	return out, nil
}
