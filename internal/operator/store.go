package operator

import (
	"context"
	"fmt"
	"sync"
)

// StateKey is the unit state key holding the lifecycle state.
const StateKey = "lifecycle-state"

// StateStore persists the lifecycle state between triggers.
type StateStore interface {
	Load(ctx context.Context) (State, error)
	Save(ctx context.Context, state State) error
}

// KeyValue is the subset of the unit hook tools used for state.
type KeyValue interface {
	GetState(ctx context.Context, key string) (string, error)
	SetState(ctx context.Context, key, value string) error
}

// UnitStateStore keeps the state in Juju unit state so it survives the
// process boundary between hooks.
type UnitStateStore struct {
	kv KeyValue
}

// NewUnitStateStore creates a store backed by kv.
func NewUnitStateStore(kv KeyValue) *UnitStateStore {
	return &UnitStateStore{kv: kv}
}

func (s *UnitStateStore) Load(ctx context.Context) (State, error) {
	raw, err := s.kv.GetState(ctx, StateKey)
	if err != nil {
		return StateUninitialized, fmt.Errorf("failed to load lifecycle state: %w", err)
	}
	return ParseState(raw)
}

func (s *UnitStateStore) Save(ctx context.Context, state State) error {
	if err := s.kv.SetState(ctx, StateKey, string(state)); err != nil {
		return fmt.Errorf("failed to save lifecycle state: %w", err)
	}
	return nil
}

// MemoryStateStore keeps the state in memory for the long-running mode.
type MemoryStateStore struct {
	mu    sync.Mutex
	state State
}

// NewMemoryStateStore returns a store starting at Uninitialized.
func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{state: StateUninitialized}
}

func (s *MemoryStateStore) Load(context.Context) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, nil
}

func (s *MemoryStateStore) Save(_ context.Context, state State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	return nil
}
