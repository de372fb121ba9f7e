package session

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/marklight/marklight/internal/logging"
)

// Autosaver periodically snapshots editing state into a store. Save failures
// are logged and retried on the next tick.
type Autosaver struct {
	store    *Store
	interval time.Duration
	snapshot func() State
	log      *log.Logger

	startOnce sync.Once
	stopOnce  sync.Once
	stop      chan struct{}
	done      chan struct{}
}

// AutosaveOption configures an Autosaver.
type AutosaveOption func(*Autosaver)

// WithLogger sets the autosaver's logger.
func WithLogger(l *log.Logger) AutosaveOption {
	return func(a *Autosaver) { a.log = l }
}

// NewAutosaver creates an autosaver calling snapshot every interval.
func NewAutosaver(store *Store, interval time.Duration, snapshot func() State, opts ...AutosaveOption) *Autosaver {
	a := &Autosaver{
		store:    store,
		interval: interval,
		snapshot: snapshot,
		log:      logging.Default(),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Start launches the autosave loop. Subsequent calls are no-ops.
func (a *Autosaver) Start() {
	a.startOnce.Do(func() {
		go a.run()
	})
}

// Stop halts the loop and performs one final save, blocking until the loop
// has exited.
func (a *Autosaver) Stop() {
	a.stopOnce.Do(func() {
		close(a.stop)
		<-a.done
		a.save()
	})
}

func (a *Autosaver) run() {
	defer close(a.done)
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.save()
		case <-a.stop:
			return
		}
	}
}

func (a *Autosaver) save() {
	if err := a.store.Save(a.snapshot()); err != nil {
		a.log.Warn("autosave failed", logging.FieldError, err, logging.FieldPath, a.store.Path())
	}
}
