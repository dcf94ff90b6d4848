package timerfd

import (
	"fmt"
	"os"
	"path"
	"sync"
	"syscall"
	"time"
)

// Package logger for the loop's unexpected-errno paths. Writes to stdout
// until InitLog points it at a directory. Debug is dropped unless
// enabled.

var logger = &logSink{fd: 1}

// Debug logs a debug line if InitLog enabled the level.
func Debug(format string, v ...any) {
	if logger.debugOn {
		logger.write("debug", format, v...)
	}
}

// Warning logs a warning line.
func Warning(format string, v ...any) {
	logger.write("warng", format, v...)
}

// Error logs an error line.
func Error(format string, v ...any) {
	logger.write("error", format, v...)
}

// InitLog routes package logs to a day-rolled file under dir, or to
// stdout if dir is empty, and switches the Debug level on or off.
func InitLog(dir string, debug bool) error {
	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	logger.mtx.Lock()
	logger.closeFile()
	logger.dir = dir
	logger.debugOn = debug
	if dir == "" {
		logger.fd = 1
	}
	logger.mtx.Unlock()
	return nil
}

type logSink struct {
	fd      int
	debugOn bool

	fileYear  int
	fileMonth int
	fileDay   int
	dir       string
	buff      []byte

	mtx sync.Mutex
}

func (l *logSink) closeFile() {
	if l.dir != "" && l.fd > 2 {
		syscall.Close(l.fd)
	}
	l.fd = -1
}

func (l *logSink) rollFile(year, month, day int) error {
	if l.dir == "" {
		return nil
	}
	if l.fileYear == year && l.fileMonth == month && l.fileDay == day && l.fd != -1 {
		return nil
	}
	l.closeFile()
	fname := fmt.Sprintf("timerfd-%d-%02d-%02d.log", year, month, day)
	fd, err := syscall.Open(path.Join(l.dir, fname),
		syscall.O_CREAT|syscall.O_WRONLY|syscall.O_APPEND, 0644)
	if err != nil {
		return err
	}
	l.fd = fd
	l.fileYear, l.fileMonth, l.fileDay = year, month, day
	return nil
}

func (l *logSink) write(tag, format string, v ...any) {
	now := time.Now()
	year, month, day := now.Date()
	hour, min, sec := now.Clock()

	l.mtx.Lock()
	defer l.mtx.Unlock()

	if err := l.rollFile(year, int(month), day); err != nil {
		return
	}
	if l.fd == -1 {
		return
	}

	l.buff = l.buff[:0]
	l.buff = fmt.Appendf(l.buff, "%d-%02d-%02d %02d:%02d:%02d.%03d %s > ",
		year, int(month), day, hour, min, sec, now.Nanosecond()/1e6, tag)
	l.buff = fmt.Appendf(l.buff, format, v...)
	l.buff = append(l.buff, '\n')
	for {
		_, err := syscall.Write(l.fd, l.buff)
		if err == syscall.EINTR {
			continue
		}
		break
	}
}
