package vector

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
)

// MemoryIndex is an exact cosine-similarity Index held in process memory.
type MemoryIndex struct {
	mu          sync.RWMutex
	collections map[string][]Point
	dims        map[string]int
}

// NewMemoryIndex returns an empty in-memory index.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		collections: make(map[string][]Point),
		dims:        make(map[string]int),
	}
}

// EnsureCollection registers the collection when absent.
func (m *MemoryIndex) EnsureCollection(_ context.Context, name string, dims int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.collections[name]; ok {
		return true, nil
	}
	m.collections[name] = nil
	m.dims[name] = dims
	return false, nil
}

// Upsert replaces points by ID within the collection.
func (m *MemoryIndex) Upsert(_ context.Context, name string, points []Point) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.collections[name]
	if !ok {
		return fmt.Errorf("collection %s does not exist", name)
	}
	dims := m.dims[name]

	byID := make(map[uint64]int, len(existing))
	for i, p := range existing {
		byID[p.ID] = i
	}
	for _, p := range points {
		if len(p.Vector) != dims {
			return fmt.Errorf("point %d has %d dims, collection %s expects %d", p.ID, len(p.Vector), name, dims)
		}
		if i, ok := byID[p.ID]; ok {
			existing[i] = p
			continue
		}
		existing = append(existing, p)
		byID[p.ID] = len(existing) - 1
	}
	m.collections[name] = existing
	return nil
}

// Search returns up to limit points ordered by descending cosine similarity.
func (m *MemoryIndex) Search(_ context.Context, name string, vector []float32, limit int) ([]Hit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	points, ok := m.collections[name]
	if !ok {
		return nil, fmt.Errorf("collection %s does not exist", name)
	}

	hits := make([]Hit, 0, len(points))
	for _, p := range points {
		hits = append(hits, Hit{
			Question: p.Question,
			Answer:   p.Answer,
			Score:    cosine(vector, p.Vector),
		})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })

	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// cosine computes cosine similarity; zero vectors score zero.
func cosine(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
