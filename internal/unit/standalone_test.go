package unit

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/argo-rollouts-operator/internal/status"
)

func TestStandalone(t *testing.T) {
	t.Parallel()

	s := NewStandalone()
	ctx := context.Background()
	assert.Equal(t, status.KindMaintenance, s.Status().Kind)

	require.NoError(t, s.SetStatus(ctx, status.Waiting(status.MsgWaitingForPebble)))
	require.NoError(t, s.SetStatus(ctx, status.Active()))
	require.NoError(t, s.SetWorkloadVersion(ctx, "v1.6.6"))
	require.NoError(t, s.OpenPort(ctx, 8090, "tcp"))
	require.NoError(t, s.OpenPort(ctx, 8090, "tcp"))

	assert.Equal(t, status.Active(), s.Status())
	assert.Equal(t, "v1.6.6", s.Version())
	assert.Equal(t, []int{8090}, s.Ports())
}

func TestStandalone_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	s := NewStandalone()
	var wg sync.WaitGroup
	for range 10 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = s.SetStatus(context.Background(), status.Active())
		}()
		go func() {
			defer wg.Done()
			_ = s.Status()
		}()
	}
	wg.Wait()
	assert.True(t, s.Status().IsActive())
}
