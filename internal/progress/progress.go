// Package progress tracks completion of long batch operations.
package progress

import (
	"math"
	"sync/atomic"
)

// Update is emitted each time tasks complete
type Update struct {
	Percent int `json:"percent"`
}

// Listener receives updates. It may be called concurrently and out of order.
type Listener func(Update)

// Monitor accumulates a task counter for one logical flow.
// A nil *Monitor is valid and does nothing.
type Monitor struct {
	total     atomic.Int64
	completed atomic.Int64
	percent   atomic.Int64
	listener  Listener
}

// New creates a monitor. listener may be nil.
func New(listener Listener) *Monitor {
	return &Monitor{listener: listener}
}

// AddTasks increases the number of tasks expected
func (m *Monitor) AddTasks(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.total.Add(int64(n))
}

// CompleteTask marks n tasks (at least one) as done and emits the new percentage
func (m *Monitor) CompleteTask(n int) {
	if m == nil {
		return
	}
	if n < 1 {
		n = 1
	}

	completed := m.completed.Add(int64(n))
	percent := percentOf(completed, m.total.Load())
	m.percent.Store(int64(percent))

	if m.listener != nil {
		m.listener(Update{Percent: percent})
	}
}

// Percent returns the last computed percentage
func (m *Monitor) Percent() int {
	if m == nil {
		return 0
	}
	return int(m.percent.Load())
}

func percentOf(completed, total int64) int {
	if total <= 0 {
		return 100
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}
