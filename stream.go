package timerfd

// Stream presents the timer's expirations as a byte stream, shaped for a
// buffered-I/O framework's non-blocking read slot. Each successful Read
// drains the whole pending count; there is never "more data" waiting
// behind a short read.
type Stream struct {
	*TimerFd
}

// NewStream creates a timer handle whose Rearm default is RepeatDelay
// (repeat at the delay period), unlike New which defaults to OneShot.
// Override with RearmPolicy. Everything else matches New.
func NewStream(delaySeconds float64, opts ...Option) (*Stream, error) {
	opts = append([]Option{RearmPolicy(RepeatDelay)}, opts...)
	t, err := New(delaySeconds, opts...)
	if err != nil {
		return nil, err
	}
	return &Stream{TimerFd: t}, nil
}

// Read performs one non-blocking read of the expiration counter.
//
// With len(p) >= 8 the counter is read directly into p. A shorter p
// receives a byte-truncated view: the full 8-byte counter is drained
// into scratch and its first len(p) bytes copied out. EINTR is retried;
// every other errno is returned verbatim — EAGAIN means nothing pending
// yet and is for the caller's poll loop to absorb. ErrClosed on a
// closed handle.
//
// Read never blocks: the descriptor is non-blocking and waiting for
// expiry belongs to the layer that polls Fd().
func (s *Stream) Read(p []byte) (int, error) {
	if s.fd == -1 {
		return 0, ErrClosed
	}
	if len(p) >= 8 {
		return s.drainInto(p[:8])
	}
	var v [8]byte
	n, err := s.drainInto(v[:])
	if err != nil {
		return 0, err
	}
	if n > len(p) {
		n = len(p)
	}
	copy(p, v[:n])
	return n, nil
}
