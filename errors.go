package timerfd

import (
	"errors"

	"golang.org/x/sys/unix"
)

var (
	// ErrClosed is returned by stream reads on a closed handle.
	ErrClosed = errors.New("timerfd: closed")

	// ErrTimeout is returned by Buffered.ReadTimeout when the deadline
	// passes with no expiration pending.
	ErrTimeout = errors.New("timerfd: read timeout")
)

// CreateError reports a kernel refusal to allocate a timerfd (resource
// limits, permission). It keeps the OS error code alongside the message
// so callers can branch on the errno.
type CreateError struct {
	Errno unix.Errno
	msg   string
}

func newCreateError(err error) *CreateError {
	e := &CreateError{msg: "timerfd_create: " + err.Error()}
	if errno, ok := err.(unix.Errno); ok {
		e.Errno = errno
	}
	return e
}

func (e *CreateError) Error() string { return e.msg }

// Unwrap exposes the errno to errors.Is / errors.As.
func (e *CreateError) Unwrap() error {
	if e.Errno != 0 {
		return e.Errno
	}
	return nil
}
