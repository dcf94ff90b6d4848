package timerfd

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// Detecting illegal struct copies using `go vet`
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// TimerFd wraps one linux timerfd on the monotonic clock: a countdown or
// repeating timer whose readiness is pollable like any descriptor.
//
// A handle belongs to a single logical owner; there is no internal
// locking. No method blocks: waiting for expiry is the job of whatever
// poll loop holds Fd() (a Loop, a Buffered, or the caller's own).
type TimerFd struct {
	noCopy

	fd    int   // -1 after Close
	start int64 // monotonic msec of the most recent arm (or New)

	rearmDefault RearmDefault
}

// New creates a monotonic timerfd, non-blocking and close-on-exec.
//
// delaySeconds > 0 arms the timer immediately, repeating every
// Interval(...) seconds if the option is given. delaySeconds <= 0 leaves
// it disarmed until SetTimeout/Rearm. start is recorded either way so
// Elapse is meaningful from the moment of creation. On kernel failure
// the returned error is a *CreateError carrying the errno.
func New(delaySeconds float64, opts ...Option) (*TimerFd, error) {
	o := setOptions(opts...)
	fd, err := unix.TimerfdCreate(o.clockID, unix.TFD_NONBLOCK|unix.TFD_CLOEXEC)
	if err != nil {
		return nil, newCreateError(err)
	}
	if delaySeconds > 0 {
		if err = arm(fd, delaySeconds, o.intervalSeconds); err != nil {
			syscall.Close(fd)
			return nil, err
		}
	}
	return &TimerFd{
		fd:           fd,
		start:        monoMillis(),
		rearmDefault: o.rearmDefault,
	}, nil
}

// Fd returns the raw descriptor for readiness polling, -1 once closed.
// A closed handle is not pollable.
func (t *TimerFd) Fd() int {
	return t.fd
}

// Close releases the kernel descriptor. Idempotent: closing a closed
// handle is a no-op, so both explicit teardown and deferred cleanup can
// run the same path.
func (t *TimerFd) Close() {
	if t.fd == -1 {
		return
	}
	syscall.Close(t.fd)
	t.fd = -1
}

// Clear drains the pending expiration count and reports whether an
// expiration was consumed. "Would block" (nothing pending yet) and every
// other read failure collapse to false; use Stream.Read when the errno
// matters. Always false on a closed handle.
//
// After a successful Clear the descriptor is no longer read-ready until
// the timer fires again.
func (t *TimerFd) Clear() bool {
	if t.fd == -1 {
		return false
	}
	var v [8]byte
	n, _ := t.drainInto(v[:])
	return n == 8
}

// Elapse returns the seconds since the most recent arm (or since New if
// never rearmed), whether or not the timer has fired.
func (t *TimerFd) Elapse() float64 {
	return float64(monoMillis()-t.start) / 1000.0
}

// Start returns the arm timestamp in seconds, the same unit as Elapse.
func (t *TimerFd) Start() float64 {
	return float64(t.start) / 1000.0
}

// SetTimeout rearms the timer: delaySeconds until the next expiration,
// then every intervalSeconds (0 = one-shot). The kernel deadline is
// programmed first, then start is updated. No-op on a closed handle.
//
// A negative delay is not rejected: the absolute deadline lands in the
// past and the kernel fires immediately.
func (t *TimerFd) SetTimeout(delaySeconds, intervalSeconds float64) error {
	if t.fd == -1 {
		return nil
	}
	if err := arm(t.fd, delaySeconds, intervalSeconds); err != nil {
		return err
	}
	t.start = monoMillis()
	return nil
}

// Rearm is SetTimeout with the handle's configured interval default:
// OneShot handles pass a zero interval, RepeatDelay handles repeat at
// delaySeconds. See RearmPolicy.
func (t *TimerFd) Rearm(delaySeconds float64) error {
	if t.rearmDefault == RepeatDelay {
		return t.SetTimeout(delaySeconds, delaySeconds)
	}
	return t.SetTimeout(delaySeconds, 0)
}

// drainInto performs one non-blocking read of the 8-byte expiration
// counter, retrying only on EINTR. Both drain surfaces (Clear and
// Stream.Read) come through here.
func (t *TimerFd) drainInto(buf []byte) (int, error) {
	for {
		n, err := syscall.Read(t.fd, buf)
		if err == syscall.EINTR {
			continue
		}
		if n < 0 {
			n = 0
		}
		return n, err
	}
}
