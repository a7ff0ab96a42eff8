package operator

import (
	"context"
	"sync"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"
	"sigs.k8s.io/controller-runtime/pkg/log"
)

// Handler handles one trigger.
type Handler interface {
	Handle(ctx context.Context, trigger Trigger) (State, error)
}

// Loop owns a Handler and feeds it triggers one at a time.
type Loop struct {
	handler  Handler
	triggers chan Trigger

	mu    sync.Mutex
	state State
}

// NewLoop creates a Loop buffering up to buffer pending triggers.
func NewLoop(handler Handler, buffer int) *Loop {
	return &Loop{
		handler:  handler,
		triggers: make(chan Trigger, buffer),
		state:    StateUninitialized,
	}
}

// Submit queues a trigger. It blocks while the buffer is full.
func (l *Loop) Submit(ctx context.Context, trigger Trigger) error {
	select {
	case l.triggers <- trigger:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// State returns the state after the last handled trigger.
func (l *Loop) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Run handles queued triggers until ctx is done. Handler errors are logged.
func (l *Loop) Run(ctx context.Context) error {
	logger := log.FromContext(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case trigger := <-l.triggers:
			state, err := l.handler.Handle(ctx, trigger)
			if err != nil {
				logger.Error(err, "failed to handle trigger", "trigger", string(trigger))
			}
			l.mu.Lock()
			l.state = state
			l.mu.Unlock()
		}
	}
}

// Every submits trigger every interval until ctx is done, starting one
// interval from now.
func (l *Loop) Every(ctx context.Context, trigger Trigger, interval time.Duration) {
	first := true
	wait.UntilWithContext(ctx, func(ctx context.Context) {
		if first {
			first = false
			return
		}
		_ = l.Submit(ctx, trigger)
	}, interval)
}

// WatchReady polls probe every interval and submits the ready trigger
// whenever it turns from false to true.
func (l *Loop) WatchReady(ctx context.Context, probe func(context.Context) bool, interval time.Duration) {
	ready := false
	wait.UntilWithContext(ctx, func(ctx context.Context) {
		now := probe(ctx)
		if now && !ready {
			log.FromContext(ctx).Info("workload container became reachable")
			_ = l.Submit(ctx, TriggerReady)
		}
		ready = now
	}, interval)
}
