package timerfd

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBufferedRead(t *testing.T) {
	s, err := NewStream(0.05)
	require.NoError(t, err)
	defer s.Close()
	b := NewBuffered(s)

	var buf [8]byte
	n, err := b.ReadTimeout(buf[:], 1.0)
	require.NoError(t, err)
	require.Equal(t, 8, n)
	require.EqualValues(t, 1, binary.LittleEndian.Uint64(buf[:]))
	require.GreaterOrEqual(t, s.Elapse(), 0.05)
}

func TestBufferedTimeout(t *testing.T) {
	s, err := NewStream(0) // disarmed, never fires
	require.NoError(t, err)
	defer s.Close()
	b := NewBuffered(s)

	var buf [8]byte
	begin := time.Now()
	n, err := b.ReadTimeout(buf[:], 0.05)
	require.Equal(t, 0, n)
	require.ErrorIs(t, err, ErrTimeout)
	require.GreaterOrEqual(t, time.Since(begin), 45*time.Millisecond)
}

func TestBufferedClosed(t *testing.T) {
	s, err := NewStream(1)
	require.NoError(t, err)
	s.Close()
	b := NewBuffered(s)

	var buf [8]byte
	_, err = b.ReadTimeout(buf[:], 0.05)
	require.ErrorIs(t, err, ErrClosed)
}
