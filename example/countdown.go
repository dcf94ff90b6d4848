package main

import (
	"fmt"

	"github.com/evpoll/timerfd"
)

// A 100ms repeating tick consumed two ways: first through a Loop, then
// one blocking-with-timeout read through Buffered.
func main() {
	tick, err := timerfd.New(0.1, timerfd.Interval(0.1))
	if err != nil {
		panic(err.Error())
	}
	defer tick.Close()

	loop, err := timerfd.NewLoop()
	if err != nil {
		panic(err.Error())
	}
	defer loop.Close()

	n := 0
	loop.Add(tick, func(expirations uint64) bool {
		n++
		fmt.Printf("tick #%d x%d elapsed=%.3fs\n", n, expirations, tick.Elapse())
		if n >= 5 {
			loop.Stop()
			return false
		}
		return true
	})
	if err = loop.Run(); err != nil {
		panic(err.Error())
	}

	s, err := timerfd.NewStream(0.05)
	if err != nil {
		panic(err.Error())
	}
	defer s.Close()

	var buf [8]byte
	bn, err := timerfd.NewBuffered(s).ReadTimeout(buf[:], 1.0)
	if err != nil {
		panic(err.Error())
	}
	fmt.Printf("stream read %d bytes after %.3fs\n", bn, s.Elapse())
}
