package mapview

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// FrameScheduler runs a callback before the next frame is painted.
// The engine yields to it between marker build batches so a large
// pass never blocks the host's rendering.
type FrameScheduler interface {
	RequestFrame(fn func())
}

// Timer is a cancellable pending callback.
type Timer interface {
	// Stop cancels the timer. It returns false if the callback
	// already fired or was stopped before.
	Stop() bool
}

// TimerFactory schedules delayed callbacks. It exists so the hover
// debounce state machine is testable without real time.
type TimerFactory interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

// Loop is the engine's single event goroutine. Frame callbacks,
// timers and surface events are all funneled through Post, which
// keeps the engine free of locks.
type Loop struct {
	tasks  chan func()
	logger *zap.Logger
}

const loopQueueSize = 256

// frameInterval approximates one display frame.
const frameInterval = 16 * time.Millisecond

func NewLoop(logger *zap.Logger) *Loop {
	return &Loop{
		tasks:  make(chan func(), loopQueueSize),
		logger: logger,
	}
}

// Run executes posted tasks until the context is cancelled.
func (l *Loop) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Map view loop stopped")
			return
		case fn := <-l.tasks:
			fn()
		}
	}
}

// Post enqueues a task onto the loop. Safe to call from any
// goroutine.
func (l *Loop) Post(fn func()) {
	select {
	case l.tasks <- fn:
	default:
		// Queue full: the map is being hammered with events faster
		// than the loop drains them. Dropping a task here would lose
		// a render pass, so block instead.
		l.tasks <- fn
	}
}

// FrameScheduler returns a scheduler that fires roughly once per
// display frame on the loop goroutine.
func (l *Loop) FrameScheduler() FrameScheduler {
	return &loopFrames{loop: l}
}

// TimerFactory returns a factory whose callbacks run on the loop
// goroutine.
func (l *Loop) TimerFactory() TimerFactory {
	return &loopTimers{loop: l}
}

type loopFrames struct {
	loop *Loop
}

func (f *loopFrames) RequestFrame(fn func()) {
	time.AfterFunc(frameInterval, func() {
		f.loop.Post(fn)
	})
}

type loopTimers struct {
	loop *Loop
}

func (t *loopTimers) AfterFunc(d time.Duration, fn func()) Timer {
	timer := time.AfterFunc(d, func() {
		t.loop.Post(fn)
	})
	return &realTimer{t: timer}
}

type realTimer struct {
	t *time.Timer
}

func (r *realTimer) Stop() bool {
	return r.t.Stop()
}
