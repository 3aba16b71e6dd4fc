package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/owl-cli/owl/internal/orchestrator/models"
	"github.com/owl-cli/owl/internal/tools"
)

func policyRegistry(t *testing.T, calls *atomic.Int64, result map[string]any) *tools.Registry {
	t.Helper()
	r, err := tools.NewRegistry(tools.Entry{
		Name:  "check_policies",
		Scope: models.ScopeSystemRead,
		Handler: func(context.Context, map[string]any) map[string]any {
			calls.Add(1)
			return result
		},
	})
	require.NoError(t, err)
	return r
}

func TestRun_ChecksImmediatelyAndOnTicks(t *testing.T) {
	var calls atomic.Int64
	registry := policyRegistry(t, &calls, map[string]any{
		"success":    true,
		"violations": []map[string]any{},
	})
	runner := New(registry, nil, 20*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 110*time.Millisecond)
	defer cancel()
	err := runner.Run(ctx)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	// One immediate check plus at least one tick.
	assert.GreaterOrEqual(t, calls.Load(), int64(2))
}

func TestRun_StopsOnCancel(t *testing.T) {
	var calls atomic.Int64
	registry := policyRegistry(t, &calls, map[string]any{"success": true})
	runner := New(registry, nil, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runner.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("runner did not stop after cancellation")
	}
	assert.Equal(t, int64(1), calls.Load())
}

func TestCheckOnce_ToleratesViolationsAndFailures(t *testing.T) {
	var calls atomic.Int64
	registry := policyRegistry(t, &calls, map[string]any{
		"success": true,
		"violations": []map[string]any{
			{"policy": "no_root_processes", "details": "found root process"},
		},
	})
	runner := New(registry, nil, time.Hour)

	// Violations are logged, never fatal.
	runner.checkOnce(context.Background())
	assert.Equal(t, int64(1), calls.Load())

	failing := policyRegistry(t, &calls, map[string]any{"success": false, "error": "profile unreadable"})
	New(failing, nil, time.Hour).checkOnce(context.Background())
	assert.Equal(t, int64(2), calls.Load())
}
