// Package worker provides run-to-completion worker threads pinned to CPU
// cores. Each worker owns its transmit rings, packet pool, and recycle
// list; nothing in the hot path is shared between workers.
package worker

import (
	"errors"
	"runtime"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/packetio/dataplane/core/logging"
)

var logger = logging.New("worker")

// ErrRunning indicates an error condition when a function expects the
// worker to be stopped.
var ErrRunning = errors.New("operation not permitted when worker is running")

// Config configures a Worker.
type Config struct {
	// ID is the worker identity, used by ports to select rings and queues.
	ID int

	// CPU is the core to pin the worker thread to; -1 leaves it unpinned.
	CPU int

	// Role describes the worker for logging.
	Role string
}

// Worker is a procedure running on a dedicated, optionally pinned OS
// thread. The body runs to completion between Stopping checks; there is no
// preemption mid-burst.
type Worker struct {
	cfg     Config
	running atomic.Bool
	stopC   chan struct{}
	doneC   chan struct{}
}

// New creates a Worker.
func New(cfg Config) *Worker {
	if cfg.Role == "" {
		cfg.Role = "TX"
	}
	return &Worker{cfg: cfg}
}

// ID returns the worker identity.
func (w *Worker) ID() int {
	return w.cfg.ID
}

// ThreadRole returns the worker's role.
func (w *Worker) ThreadRole() string {
	return w.cfg.Role
}

// IsRunning indicates whether the worker is running.
func (w *Worker) IsRunning() bool {
	return w.running.Load()
}

// Stopping returns a channel that is closed when the worker must stop.
// The body polls it between bursts.
func (w *Worker) Stopping() <-chan struct{} {
	return w.stopC
}

// Launch starts body on a dedicated OS thread.
// Panics if the worker is already running.
func (w *Worker) Launch(body func(w *Worker)) {
	if !w.running.CompareAndSwap(false, true) {
		logger.Panic("worker is busy", zap.Int("id", w.cfg.ID))
	}
	w.stopC = make(chan struct{})
	w.doneC = make(chan struct{})
	go func() {
		defer close(w.doneC)
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		if w.cfg.CPU >= 0 {
			if e := setAffinity(w.cfg.CPU); e != nil {
				logger.Warn("cannot pin worker",
					zap.Int("id", w.cfg.ID),
					zap.Int("cpu", w.cfg.CPU),
					zap.Error(e),
				)
			}
		}
		logger.Info("worker started",
			zap.Int("id", w.cfg.ID),
			zap.Int("cpu", w.cfg.CPU),
			zap.String("role", w.cfg.Role),
		)
		body(w)
	}()
}

// Stop asks the worker to stop and waits for the body to return.
func (w *Worker) Stop() error {
	if !w.running.Load() {
		return nil
	}
	close(w.stopC)
	<-w.doneC
	w.running.Store(false)
	logger.Info("worker stopped", zap.Int("id", w.cfg.ID))
	return nil
}
