package timerfd

import (
	"golang.org/x/sys/unix"
)

// RearmDefault selects what a single-argument Rearm means.
type RearmDefault int

const (
	// OneShot rearms with a zero interval: fire once, stay disarmed.
	OneShot RearmDefault = iota

	// RepeatDelay rearms repeating at the same period as the delay.
	RepeatDelay
)

// Options collects the tunables for New, NewStream and NewLoop.
type Options struct {
	// timer options
	intervalSeconds float64
	rearmDefault    RearmDefault
	clockID         int

	// loop options
	loopReadyNum  int
	loopFdArrSize int
}

// Option modifies Options.
type Option func(*Options)

func setOptions(optL ...Option) *Options {
	o := &Options{
		clockID:       unix.CLOCK_MONOTONIC,
		loopReadyNum:  64,
		loopFdArrSize: 1024,
	}
	for _, opt := range optL {
		opt(o)
	}
	return o
}

// Interval sets the repeat period in seconds for the initial arm.
// Zero keeps the timer one-shot.
func Interval(seconds float64) Option {
	return func(o *Options) {
		o.intervalSeconds = seconds
	}
}

// RearmPolicy overrides the handle's Rearm default. Handles from New
// default to OneShot, handles from NewStream to RepeatDelay.
func RearmPolicy(d RearmDefault) Option {
	return func(o *Options) {
		o.rearmDefault = d
	}
}

// LoopReadyNum caps how many ready descriptors one epoll_wait round
// fetches in a Loop.
func LoopReadyNum(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.loopReadyNum = n
		}
	}
}

// LoopFdArrSize sizes the Loop's array fast path for fd lookup. Fds
// below this value skip the fallback map. Size it from the process fd
// range, not the timer count.
func LoopFdArrSize(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.loopFdArrSize = n
		}
	}
}

// withClockID swaps the clock passed to timerfd_create. An invalid id
// makes creation fail with EINVAL, which the tests use to simulate a
// kernel refusal.
func withClockID(id int) Option {
	return func(o *Options) {
		o.clockID = id
	}
}
