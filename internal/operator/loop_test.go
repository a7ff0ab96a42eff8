package operator

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	mu       sync.Mutex
	triggers []Trigger
	err      error
}

func (h *recordingHandler) Handle(_ context.Context, trigger Trigger) (State, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.triggers = append(h.triggers, trigger)
	if h.err != nil {
		return StateBlocked, h.err
	}
	return StateActive, nil
}

func (h *recordingHandler) handled() []Trigger {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Trigger(nil), h.triggers...)
}

func TestLoop_HandlesInOrder(t *testing.T) {
	t.Parallel()

	handler := &recordingHandler{}
	loop := NewLoop(handler, 4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, loop.Submit(ctx, TriggerInstall))
	require.NoError(t, loop.Submit(ctx, TriggerReady))
	require.NoError(t, loop.Submit(ctx, TriggerUpdateStatus))

	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()

	require.Eventually(t, func() bool { return len(handler.handled()) == 3 }, 5*time.Second, 5*time.Millisecond)
	assert.Equal(t, []Trigger{TriggerInstall, TriggerReady, TriggerUpdateStatus}, handler.handled())
	assert.Equal(t, StateActive, loop.State())

	cancel()
	require.NoError(t, <-done)
}

func TestLoop_HandlerErrorsDoNotStopTheLoop(t *testing.T) {
	t.Parallel()

	handler := &recordingHandler{err: errors.New("boom")}
	loop := NewLoop(handler, 2)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() { _ = loop.Run(ctx) }()
	require.NoError(t, loop.Submit(ctx, TriggerInstall))
	require.NoError(t, loop.Submit(ctx, TriggerConfigChange))

	require.Eventually(t, func() bool { return len(handler.handled()) == 2 }, 5*time.Second, 5*time.Millisecond)
	assert.Equal(t, StateBlocked, loop.State())
}

func TestLoop_SubmitCancelled(t *testing.T) {
	t.Parallel()

	loop := NewLoop(&recordingHandler{}, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, loop.Submit(ctx, TriggerInstall), context.Canceled)
}

func TestLoop_WatchReadySubmitsOnRisingEdge(t *testing.T) {
	t.Parallel()

	handler := &recordingHandler{}
	loop := NewLoop(handler, 8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = loop.Run(ctx) }()

	sequence := []bool{false, true, true, false, true}
	var calls atomic.Int32
	probe := func(context.Context) bool {
		i := int(calls.Add(1)) - 1
		if i >= len(sequence) {
			return true
		}
		return sequence[i]
	}
	go loop.WatchReady(ctx, probe, time.Millisecond)

	require.Eventually(t, func() bool { return calls.Load() > int32(len(sequence)+2) }, 5*time.Second, time.Millisecond)
	require.Eventually(t, func() bool { return len(handler.handled()) == 2 }, 5*time.Second, 5*time.Millisecond)
	assert.Equal(t, []Trigger{TriggerReady, TriggerReady}, handler.handled())
}

func TestLoop_EverySkipsFirstTick(t *testing.T) {
	t.Parallel()

	handler := &recordingHandler{}
	loop := NewLoop(handler, 8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = loop.Run(ctx) }()
	go loop.Every(ctx, TriggerUpdateStatus, 10*time.Millisecond)

	require.Eventually(t, func() bool { return len(handler.handled()) >= 2 }, 5*time.Second, 5*time.Millisecond)
	for _, trigger := range handler.handled() {
		assert.Equal(t, TriggerUpdateStatus, trigger)
	}
}
