package planner

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBudgetTrackerReserve(t *testing.T) {
	b := NewBudgetTracker(2)

	r1, err := b.TryReserve()
	require.NoError(t, err)
	assert.Equal(t, 1, r1.N)

	r2, err := b.TryReserve()
	require.NoError(t, err)
	assert.Equal(t, 2, r2.N)

	_, err = b.TryReserve()
	assert.ErrorIs(t, err, ErrBudgetExhausted)

	// Exhaustion is permanent.
	_, err = b.TryReserve()
	assert.ErrorIs(t, err, ErrBudgetExhausted)

	assert.Equal(t, 2, b.Used())
	assert.True(t, b.Exhausted())
}

func TestBudgetTrackerZeroCeiling(t *testing.T) {
	b := NewBudgetTracker(0)
	_, err := b.TryReserve()
	assert.ErrorIs(t, err, ErrBudgetExhausted)

	b = NewBudgetTracker(-5)
	_, err = b.TryReserve()
	assert.ErrorIs(t, err, ErrBudgetExhausted)
}

func TestBudgetTrackerConcurrent(t *testing.T) {
	const max = 50
	const workers = 20
	const attemptsPerWorker = 10

	b := NewBudgetTracker(max)

	var granted sync.Map
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < attemptsPerWorker; i++ {
				if r, err := b.TryReserve(); err == nil {
					// Each reservation ordinal must be granted exactly once.
					_, dup := granted.LoadOrStore(r.N, true)
					assert.False(t, dup, "duplicate reservation %d", r.N)
				}
				assert.LessOrEqual(t, b.Used(), max)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, max, b.Used(), "all %d slots should be granted under contention", max)
}

// The invariant used <= max must hold at every point for arbitrary
// phase/query shapes.
func TestBudgetInvariantRandomized(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for trial := 0; trial < 200; trial++ {
		max := rng.Intn(10)
		phases := 1 + rng.Intn(5)
		b := NewBudgetTracker(max)

		total := 0
		for p := 0; p < phases; p++ {
			queries := rng.Intn(8)
			for q := 0; q < queries; q++ {
				if _, err := b.TryReserve(); err == nil {
					total++
				}
				require.LessOrEqual(t, b.Used(), max,
					"trial %d: used exceeded ceiling", trial)
			}
		}

		assert.LessOrEqual(t, total, max)
		assert.Equal(t, total, b.Used())
	}
}
