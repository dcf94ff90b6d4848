package timerfd

import (
	"syscall"
)

// Buffered wraps a Stream with the timeout/retry loop a buffered-I/O
// layer normally supplies: take the non-blocking read, and when it
// reports "nothing pending yet" poll the descriptor until either the
// timer fires or the deadline passes.
type Buffered struct {
	s *Stream
}

// NewBuffered returns a blocking-with-timeout reader over s. The stream
// stays usable directly; Buffered adds no state beyond the wrapper.
func NewBuffered(s *Stream) *Buffered {
	return &Buffered{s: s}
}

// ReadTimeout fills p from the expiration counter, waiting up to
// timeoutSeconds for the timer to fire. A negative timeout waits
// forever. Returns ErrTimeout when the deadline passes with nothing
// pending, ErrClosed on a closed handle, and any other read errno
// verbatim.
func (b *Buffered) ReadTimeout(p []byte, timeoutSeconds float64) (int, error) {
	deadline := monoMillis() + int64(timeoutSeconds*1000)
	for {
		n, err := b.s.Read(p)
		if err == nil {
			return n, nil
		}
		if err != syscall.EAGAIN {
			return 0, err
		}

		left := -1
		if timeoutSeconds >= 0 {
			left = int(deadline - monoMillis())
			if left <= 0 {
				return 0, ErrTimeout
			}
		}
		ready, perr := waitReadable(b.s.fd, left)
		if perr != nil {
			return 0, perr
		}
		if !ready && timeoutSeconds >= 0 {
			return 0, ErrTimeout
		}
	}
}
