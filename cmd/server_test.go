package cmd

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"library-booking/internal/usecase"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type countingJobs struct {
	usecase.MaintenanceService
	runs atomic.Int32
}

func (c *countingJobs) RunOnce(context.Context) {
	c.runs.Add(1)
}

func TestRunMaintenance_RunsUntilCancelled(t *testing.T) {
	jobs := &countingJobs{}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		runMaintenance(ctx, jobs, 10*time.Millisecond, zap.NewNop())
		close(done)
	}()

	assert.Eventually(t, func() bool { return jobs.runs.Load() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("maintenance loop did not stop after cancel")
	}
}
