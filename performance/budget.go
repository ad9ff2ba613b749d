package performance

import (
	"sync"

	"github.com/YuminosukeSato/symforest/pkg/errors"
)

// ErrBudgetExceeded is returned by MemoryBudget.Allocate when a reservation
// does not fit.
var ErrBudgetExceeded = errors.New("memory budget exceeded")

// MemoryBudget tracks byte reservations against a fixed ceiling. It is shared
// by callers that retain large buffers, such as cached evaluators built over
// many example sets.
type MemoryBudget struct {
	maxBytes    int64
	currentUsed int64
	mu          sync.Mutex
}

// NewMemoryBudget creates a budget of maxBytes. maxBytes <= 0 means unlimited.
func NewMemoryBudget(maxBytes int64) *MemoryBudget {
	return &MemoryBudget{maxBytes: maxBytes}
}

// CanAllocate checks if bytes fit in the remaining budget.
func (m *MemoryBudget) CanAllocate(bytes int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxBytes <= 0 || m.currentUsed+bytes <= m.maxBytes
}

// Allocate reserves bytes or fails with ErrBudgetExceeded.
func (m *MemoryBudget) Allocate(bytes int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.maxBytes > 0 && m.currentUsed+bytes > m.maxBytes {
		return errors.Wrapf(ErrBudgetExceeded, "%d + %d > %d", m.currentUsed, bytes, m.maxBytes)
	}
	m.currentUsed += bytes
	return nil
}

// Free releases a reservation.
func (m *MemoryBudget) Free(bytes int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.currentUsed -= bytes
	if m.currentUsed < 0 {
		m.currentUsed = 0
	}
}

// GetUsage returns current usage and the ceiling.
func (m *MemoryBudget) GetUsage() (used, max int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentUsed, m.maxBytes
}
