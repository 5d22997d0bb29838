package layer

import (
	"sort"
	"sync"
)

// Manager holds configuration layers and merges them.
type Manager struct {
	mu     sync.RWMutex
	layers []*Layer // sorted by priority (ascending)
}

// NewManager creates an empty layer manager.
func NewManager() *Manager {
	return &Manager{}
}

// SetLayer adds l, replacing a layer with the same name.
func (m *Manager) SetLayer(l *Layer) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, x := range m.layers {
		if x.Name == l.Name {
			m.layers[i] = l
			m.sortLayers()
			return
		}
	}
	m.layers = append(m.layers, l)
	m.sortLayers()
}

// RemoveLayer removes a layer by name.
// Returns true if the layer was found and removed.
func (m *Manager) RemoveLayer(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, l := range m.layers {
		if l.Name == name {
			m.layers = append(m.layers[:i], m.layers[i+1:]...)
			return true
		}
	}
	return false
}

// GetLayer returns a layer by name, or nil.
func (m *Manager) GetLayer(name string) *Layer {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, l := range m.layers {
		if l.Name == name {
			return l
		}
	}
	return nil
}

// Layers returns the layers sorted by priority.
func (m *Manager) Layers() []*Layer {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Layer, len(m.layers))
	copy(out, m.layers)
	return out
}

// Merge combines all layers into a single map, lowest priority first.
func (m *Manager) Merge() map[string]any {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[string]any)
	for _, l := range m.layers {
		result = DeepMerge(result, l.Data)
	}
	return result
}

// WhichLayer returns the name of the highest priority layer setting path,
// or "" if none does.
func (m *Manager) WhichLayer(path string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := len(m.layers) - 1; i >= 0; i-- {
		if _, ok := GetByPath(m.layers[i].Data, path); ok {
			return m.layers[i].Name
		}
	}
	return ""
}

func (m *Manager) sortLayers() {
	sort.SliceStable(m.layers, func(i, j int) bool {
		return m.layers[i].Priority < m.layers[j].Priority
	})
}
