package status

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricMapGetReturnsCachedPointer(t *testing.T) {
	m := NewMetricMap[AtomicFloat]()
	a := m.Get("run.last_score")
	b := m.Get("run.last_score")
	assert.Same(t, a, b)
	assert.True(t, m.Has("run.last_score"))
	assert.False(t, m.Has("missing"))
}

func TestAtomicFloatConcurrentAdd(t *testing.T) {
	var f AtomicFloat
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				f.Add(0.5)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 4000.0, f.Get())
}

func TestRegistrySnapshot(t *testing.T) {
	r := NewRegistry()
	r.Ints.Get("runs.started").Add(3)
	r.Floats.Get("run.last_reaction").Set(0.42)

	snap := r.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, int64(3), snap["runs.started"])
	assert.Equal(t, 0.42, snap["run.last_reaction"])
	assert.Equal(t, 2, r.Count())
}
