package timerfd

import (
	"golang.org/x/sys/unix"
)

// waitReadable blocks in poll(2) until fd is readable or timeoutMs
// passes. A negative timeout waits forever. EINTR restarts the wait
// with the remaining time.
func waitReadable(fd int, timeoutMs int) (bool, error) {
	deadline := monoMillis() + int64(timeoutMs)
	for {
		left := timeoutMs
		if timeoutMs >= 0 {
			left = int(deadline - monoMillis())
			if left < 0 {
				left = 0
			}
		}
		pfd := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
		n, err := unix.Poll(pfd, left)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return false, err
		}
		if n == 0 { // timed out
			return false, nil
		}
		return pfd[0].Revents&(unix.POLLIN|unix.POLLHUP|unix.POLLERR) != 0, nil
	}
}
