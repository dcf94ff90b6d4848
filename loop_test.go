package timerfd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoopDispatch(t *testing.T) {
	l, err := NewLoop(LoopReadyNum(8))
	require.NoError(t, err)
	defer l.Close()

	tm, err := New(0.01, Interval(0.01))
	require.NoError(t, err)
	defer tm.Close()

	var total uint64
	calls := 0
	require.NoError(t, l.Add(tm, func(expirations uint64) bool {
		total += expirations
		calls++
		if calls >= 3 {
			l.Stop()
			return false
		}
		return true
	}))

	done := make(chan error, 1)
	go func() { done <- l.Run() }()
	select {
	case err = <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		l.Stop()
		t.Fatal("loop did not stop")
	}
	require.Equal(t, 3, calls)
	require.GreaterOrEqual(t, total, uint64(3))
}

func TestLoopAddInvalid(t *testing.T) {
	l, err := NewLoop()
	require.NoError(t, err)
	defer l.Close()

	require.Error(t, l.Add(nil, func(uint64) bool { return true }))

	closed, err := New(0)
	require.NoError(t, err)
	closed.Close()
	require.Error(t, l.Add(closed, func(uint64) bool { return true }))

	tm, err := New(0)
	require.NoError(t, err)
	defer tm.Close()
	require.Error(t, l.Add(tm, nil))
	require.Error(t, l.Remove(tm)) // never added
}

func TestLoopRemove(t *testing.T) {
	l, err := NewLoop()
	require.NoError(t, err)
	defer l.Close()

	tm, err := New(0.5)
	require.NoError(t, err)
	defer tm.Close()

	require.NoError(t, l.Add(tm, func(uint64) bool { return true }))
	require.NoError(t, l.Remove(tm))
	require.Error(t, l.Remove(tm))
	require.GreaterOrEqual(t, tm.Fd(), 0) // handle outlives its registration
}

func TestLoopStopIdempotent(t *testing.T) {
	l, err := NewLoop()
	require.NoError(t, err)
	defer l.Close()

	done := make(chan error, 1)
	go func() { done <- l.Run() }()
	l.Stop()
	l.Stop()
	select {
	case err = <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop")
	}
}
