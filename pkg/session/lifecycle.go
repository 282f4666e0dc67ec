package session

import (
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// Lifecycle owns the process signal subscription. Only one is live per
// process; Acquire returns it and installs the handler on first use.
type Lifecycle struct {
	signals chan os.Signal
	stop    func(chan<- os.Signal)
	once    sync.Once
}

var (
	processMu sync.Mutex
	process   *Lifecycle
	installs  int

	notify = func(c chan<- os.Signal) { signal.Notify(c, os.Interrupt, syscall.SIGTERM) }
	stop   = signal.Stop
)

// Acquire returns the live lifecycle, installing signal handling if no
// host has done so yet.
func Acquire() *Lifecycle {
	processMu.Lock()
	defer processMu.Unlock()
	if process != nil {
		return process
	}
	lc := &Lifecycle{signals: make(chan os.Signal, 1), stop: stop}
	notify(lc.signals)
	installs++
	process = lc
	return lc
}

// Signals delivers interrupt and terminate signals.
func (l *Lifecycle) Signals() <-chan os.Signal {
	return l.signals
}

// Dispose removes the handler. Safe to call more than once; a later Acquire
// installs a fresh one.
func (l *Lifecycle) Dispose() {
	l.once.Do(func() {
		l.stop(l.signals)
		processMu.Lock()
		if process == l {
			process = nil
		}
		processMu.Unlock()
	})
}
