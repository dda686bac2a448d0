package simulator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResourcePoolImmediateGrant(t *testing.T) {
	p := NewResourcePool("test", 2, 4)

	granted := 0
	p.Acquire(0, func(waited float64) {
		require.Equal(t, 0.0, waited)
		granted++
	})
	p.Acquire(0, func(waited float64) {
		require.Equal(t, 0.0, waited)
		granted++
	})

	require.Equal(t, 2, granted)
	require.Equal(t, 2, p.Holders())
	require.Equal(t, 0, p.QueueLen())
	require.Equal(t, 1.0, p.Utilization())
}

func TestResourcePoolFIFOFairness(t *testing.T) {
	p := NewResourcePool("test", 1, 4)

	p.Acquire(0, func(waited float64) {})

	var order []int
	for i := 0; i < 5; i++ {
		i := i
		p.Acquire(float64(i), func(waited float64) { order = append(order, i) })
	}
	require.Equal(t, 5, p.QueueLen())

	for i := 0; i < 5; i++ {
		p.Release(100)
	}
	require.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestResourcePoolWaitMeasured(t *testing.T) {
	p := NewResourcePool("test", 1, 4)

	p.Acquire(0, func(waited float64) {})

	var measured float64
	p.Acquire(10, func(waited float64) { measured = waited })

	p.Release(25)
	require.Equal(t, 15.0, measured)
}

func TestResourcePoolResizeUpGrantsWaiters(t *testing.T) {
	p := NewResourcePool("test", 1, 10)

	p.Acquire(0, func(waited float64) {})

	var order []int
	for i := 0; i < 5; i++ {
		i := i
		p.Acquire(0, func(waited float64) { order = append(order, i) })
	}

	// Headroom for 3 more: exactly the first 3 waiters get in, in order
	p.Resize(10, 4)
	require.Equal(t, []int{0, 1, 2}, order)
	require.Equal(t, 4, p.Holders())
	require.Equal(t, 2, p.QueueLen())
}

func TestResourcePoolResizeDownEvictsNobody(t *testing.T) {
	p := NewResourcePool("test", 4, 10)

	for i := 0; i < 4; i++ {
		p.Acquire(0, func(waited float64) {})
	}

	p.Resize(5, 2)
	require.Equal(t, 2, p.Capacity())
	require.Equal(t, 4, p.Holders())

	// No grants until holders drop below the new capacity
	granted := false
	p.Acquire(5, func(waited float64) { granted = true })
	p.Release(6)
	p.Release(7)
	require.False(t, granted)
	p.Release(8)
	require.True(t, granted)
}

func TestResourcePoolResizeClampsToMax(t *testing.T) {
	p := NewResourcePool("test", 2, 4)

	p.Resize(0, 100)
	require.Equal(t, 4, p.Capacity())

	p.Resize(0, -3)
	require.Equal(t, 0, p.Capacity())
}

func TestResourcePoolHoldersNeverExceedCapacity(t *testing.T) {
	p := NewResourcePool("test", 3, 6)

	for i := 0; i < 20; i++ {
		p.Acquire(float64(i), func(waited float64) {})
		require.LessOrEqual(t, p.Holders(), p.Capacity())
	}
	for i := 0; i < 20; i++ {
		p.Release(float64(20 + i))
		require.LessOrEqual(t, p.Holders(), p.Capacity())
	}
	require.Equal(t, 0, p.Holders())
	require.Equal(t, 0, p.QueueLen())
}

func TestDepletablePoolStartsFull(t *testing.T) {
	d := NewDepletablePool("parking", 100)
	require.Equal(t, 100, d.Level())
	require.Equal(t, 100, d.Capacity())
}

func TestDepletablePoolGetPut(t *testing.T) {
	d := NewDepletablePool("parking", 3)

	got := 0
	for i := 0; i < 3; i++ {
		require.NoError(t, d.Get(1, func() { got++ }))
	}
	require.Equal(t, 3, got)
	require.Equal(t, 0, d.Level())

	// Fourth getter blocks until a unit comes back
	require.NoError(t, d.Get(1, func() { got++ }))
	require.Equal(t, 3, got)
	require.Equal(t, 1, d.QueueLen())

	d.Put(1)
	require.Equal(t, 4, got)
	require.Equal(t, 0, d.Level())
}

func TestDepletablePoolFIFOBlocking(t *testing.T) {
	d := NewDepletablePool("parking", 2)
	require.NoError(t, d.Get(2, func() {}))

	var order []int
	// Head of the queue needs 2 units; a later getter needing 1 must
	// wait behind it even when 1 unit is available.
	require.NoError(t, d.Get(2, func() { order = append(order, 0) }))
	require.NoError(t, d.Get(1, func() { order = append(order, 1) }))

	d.Put(1)
	require.Empty(t, order)

	d.Put(1)
	require.Equal(t, []int{0}, order)

	d.Put(1)
	require.Equal(t, []int{0, 1}, order)
}

func TestDepletablePoolPutClampsToCapacity(t *testing.T) {
	d := NewDepletablePool("parking", 5)
	d.Put(10)
	require.Equal(t, 5, d.Level())
}

func TestDepletablePoolRejectsImpossibleGet(t *testing.T) {
	d := NewDepletablePool("parking", 5)
	err := d.Get(6, func() { t.Fatal("must not run") })
	require.Error(t, err)
}
