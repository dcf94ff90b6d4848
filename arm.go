package timerfd

import (
	"golang.org/x/sys/unix"
)

// armSpec computes the kernel timer setting for an arm request: the
// absolute deadline now + delaySeconds plus the repeat interval.
//
// Durations are truncated to millisecond precision, matching the msec
// resolution of the handle's start timestamp. The nanosecond fields of
// the value and the interval are each normalized into [0, 1e9) by
// carrying overflow into their own seconds. intervalSeconds <= 0 leaves
// the interval zeroed, so the timer fires once and stays disarmed.
func armSpec(now unix.Timespec, delaySeconds, intervalSeconds float64) unix.ItimerSpec {
	var its unix.ItimerSpec

	ms := int64(delaySeconds * 1000)
	its.Value.Sec = now.Sec + ms/1000
	its.Value.Nsec = now.Nsec + (ms%1000)*1e6
	for its.Value.Nsec >= 1e9 {
		its.Value.Nsec -= 1e9
		its.Value.Sec++
	}
	for its.Value.Nsec < 0 { // negative delay: deadline in the past, fires at once
		its.Value.Nsec += 1e9
		its.Value.Sec--
	}

	ms = int64(intervalSeconds * 1000)
	if ms > 0 {
		its.Interval.Sec = ms / 1000
		its.Interval.Nsec = (ms % 1000) * 1e6
		for its.Interval.Nsec >= 1e9 {
			its.Interval.Nsec -= 1e9
			its.Interval.Sec++
		}
	}
	return its
}

// arm programs fd with an absolute monotonic deadline. Absolute arming
// keeps the kernel's notion of "armed at" consistent with start and
// avoids drift from the time spent between reading the clock and the
// settime call.
//
// delaySeconds is not validated: a negative delay puts the deadline in
// the past and the kernel fires immediately.
func arm(fd int, delaySeconds, intervalSeconds float64) error {
	var now unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &now); err != nil {
		return err
	}
	its := armSpec(now, delaySeconds, intervalSeconds)
	return unix.TimerfdSettime(fd, unix.TFD_TIMER_ABSTIME, &its, nil)
}

// monoMillis returns CLOCK_MONOTONIC in milliseconds.
func monoMillis() int64 {
	var ts unix.Timespec
	_ = unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts)
	return ts.Sec*1000 + ts.Nsec/1e6
}
