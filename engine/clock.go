package engine

import (
	"sync"
	"time"
)

// Clock is the time source for a scenario
type Clock interface {
	Now() time.Time
}

// RealClock reads the monotonic system clock
type RealClock struct{}

// Now returns time.Now
func (RealClock) Now() time.Time {
	return time.Now()
}

// MockClock is a manually advanced clock for deterministic runs
type MockClock struct {
	mu  sync.RWMutex
	now time.Time
}

// NewMockClock creates a mock clock at start
func NewMockClock(start time.Time) *MockClock {
	return &MockClock{now: start}
}

// Now returns the mocked time
func (m *MockClock) Now() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.now
}

// Set jumps to t
func (m *MockClock) Set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = t
}

// Advance moves the clock forward by d and returns the new time
func (m *MockClock) Advance(d time.Duration) time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
	return m.now
}
