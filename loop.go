package timerfd

import (
	"errors"
	"sync/atomic"
	"syscall"
	"unsafe"

	"golang.org/x/sys/unix"
)

// ExpireFunc handles one drained expiration batch. expirations is the
// counter value consumed from the kernel (>= 1 on every call). Return
// false to drop the timer from the loop.
type ExpireFunc func(expirations uint64) bool

type loopItem struct {
	t  *TimerFd
	fn ExpireFunc
}

// fdItems maps fd -> *loopItem with an array fast path for small fds and
// a map fallback above the array range. No locking: the loop model is
// single-owner (see Loop).
type fdItems struct {
	arr []*loopItem
	m   map[int]*loopItem
}

func newFdItems(arrSize int) *fdItems {
	return &fdItems{
		arr: make([]*loopItem, arrSize),
		m:   make(map[int]*loopItem),
	}
}

func (f *fdItems) load(fd int) *loopItem {
	if fd < len(f.arr) {
		return f.arr[fd]
	}
	return f.m[fd]
}

func (f *fdItems) store(fd int, it *loopItem) {
	if fd < len(f.arr) {
		f.arr[fd] = it
		return
	}
	f.m[fd] = it
}

func (f *fdItems) delete(fd int) {
	if fd < len(f.arr) {
		f.arr[fd] = nil
		return
	}
	delete(f.m, fd)
}

var (
	wakeV      int64 = 1
	wakeWriteV       = (*(*[8]byte)(unsafe.Pointer(&wakeV)))[:]
)

// Loop multiplexes any number of TimerFds over one epoll descriptor and
// dispatches their expirations to callbacks.
//
// All dispatch runs on the goroutine that calls Run. Add and Remove are
// not synchronized: call them before Run or from inside a callback, the
// same single-owner rule every handle already lives under. Stop alone is
// safe from any goroutine.
type Loop struct {
	noCopy

	efd    int // epoll fd
	wakeFd int // eventfd, breaks epoll_wait for Stop

	readyNum int
	stopping atomic.Int32

	items *fdItems
}

// NewLoop creates the epoll instance and its eventfd wakeup channel.
func NewLoop(opts ...Option) (*Loop, error) {
	o := setOptions(opts...)
	efd, err := syscall.EpollCreate1(syscall.EPOLL_CLOEXEC)
	if err != nil {
		return nil, errors.New("syscall epoll_create1: " + err.Error())
	}
	wakeFd, err := unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
	if err != nil {
		syscall.Close(efd)
		return nil, errors.New("eventfd: " + err.Error())
	}
	l := &Loop{
		efd:      efd,
		wakeFd:   wakeFd,
		readyNum: o.loopReadyNum,
		items:    newFdItems(o.loopFdArrSize),
	}
	ev := syscall.EpollEvent{Events: syscall.EPOLLIN, Fd: int32(wakeFd)}
	if err = syscall.EpollCtl(efd, syscall.EPOLL_CTL_ADD, wakeFd, &ev); err != nil {
		l.Close()
		return nil, errors.New("epoll_ctl add wakeup: " + err.Error())
	}
	return l, nil
}

// Add registers t with the loop. Level-triggered: the loop keeps waking
// until a dispatch drains the pending count, so no expiration is lost to
// a slow callback.
func (l *Loop) Add(t *TimerFd, fn ExpireFunc) error {
	if t == nil || fn == nil || t.fd < 0 {
		return errors.New("Loop.Add: invalid params")
	}
	fd := t.fd
	l.items.store(fd, &loopItem{t: t, fn: fn})
	ev := syscall.EpollEvent{Events: syscall.EPOLLIN, Fd: int32(fd)}
	if err := syscall.EpollCtl(l.efd, syscall.EPOLL_CTL_ADD, fd, &ev); err != nil {
		l.items.delete(fd)
		return errors.New("epoll_ctl add: " + err.Error())
	}
	return nil
}

// Remove detaches t from the loop. The handle itself stays open and
// armed; closing it is still the caller's job.
func (l *Loop) Remove(t *TimerFd) error {
	if t == nil || t.fd < 0 {
		return errors.New("Loop.Remove: invalid params")
	}
	if l.items.load(t.fd) == nil {
		return errors.New("Loop.Remove: not added")
	}
	return l.removeFd(t.fd)
}

func (l *Loop) removeFd(fd int) error {
	l.items.delete(fd)
	// The event argument is ignored and can be NULL (but see
	// `man 2 epoll_ctl` BUGS), kernel versions > 2.6.9
	if err := syscall.EpollCtl(l.efd, syscall.EPOLL_CTL_DEL, fd, nil); err != nil {
		return errors.New("epoll_ctl del: " + err.Error())
	}
	return nil
}

// Run waits for expirations and dispatches them until Stop. Each ready
// timer is drained once per wakeup and its callback gets the counter
// value; a false return or a drain failure removes the timer.
func (l *Loop) Run() error {
	events := make([]syscall.EpollEvent, l.readyNum)
	var buf [8]byte
	for {
		nfds, err := syscall.EpollWait(l.efd, events, -1)
		if err != nil {
			if err == syscall.EINTR {
				continue
			}
			return errors.New("epoll_wait: " + err.Error())
		}
		for i := 0; i < nfds; i++ {
			fd := int(events[i].Fd)
			if fd == l.wakeFd {
				for {
					_, rerr := syscall.Read(l.wakeFd, buf[:])
					if rerr != syscall.EINTR {
						break
					}
				}
				if l.stopping.Load() == 1 {
					return nil
				}
				continue
			}
			it := l.items.load(fd)
			if it == nil { // removed by an earlier callback this round
				continue
			}
			n, rerr := it.t.drainInto(buf[:])
			if n != 8 {
				if rerr == syscall.EAGAIN { // already drained elsewhere
					continue
				}
				Warning("loop: drain fd=%d n=%d err=%v", fd, n, rerr)
				l.removeFd(fd)
				continue
			}
			v := *(*uint64)(unsafe.Pointer(&buf[0]))
			if it.fn(v) == false {
				l.removeFd(fd)
			}
		}
	}
}

// Stop makes Run return after the current dispatch round. Safe to call
// from any goroutine, including from inside a callback.
func (l *Loop) Stop() {
	if !l.stopping.CompareAndSwap(0, 1) {
		return
	}
	for {
		n, err := syscall.Write(l.wakeFd, wakeWriteV) // man 2 eventfd
		if n == 8 || err != syscall.EINTR {
			return
		}
	}
}

// Close releases the epoll and wakeup descriptors. Registered handles
// are not closed; they belong to their owners. Idempotent. Call only
// after Run has returned.
func (l *Loop) Close() {
	if l.efd != -1 {
		syscall.Close(l.efd)
		l.efd = -1
	}
	if l.wakeFd != -1 {
		syscall.Close(l.wakeFd)
		l.wakeFd = -1
	}
}
