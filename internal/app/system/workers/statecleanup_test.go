package workers_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dalemusser/agreeverse/internal/app/system/workers"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeCleaner struct {
	calls atomic.Int64
	err   error
}

func (f *fakeCleaner) CleanupExpired(context.Context) (int64, error) {
	f.calls.Add(1)
	return 3, f.err
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestStateCleanup_RunsOnInterval(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	c := &fakeCleaner{}
	w := workers.NewStateCleanup(c, zap.New(core), 10*time.Millisecond)
	w.Start()
	waitFor(t, func() bool { return c.calls.Load() >= 2 })
	w.Stop()
	w.Stop()

	after := c.calls.Load()
	time.Sleep(30 * time.Millisecond)
	if c.calls.Load() != after {
		t.Error("worker kept running after Stop")
	}
	if logs.FilterMessage("purged expired oauth state").Len() == 0 {
		t.Error("expected purge log")
	}
}

func TestStateCleanup_LogsErrors(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	c := &fakeCleaner{err: errors.New("boom")}
	w := workers.NewStateCleanup(c, zap.New(core), 10*time.Millisecond)
	w.Start()
	waitFor(t, func() bool { return c.calls.Load() >= 1 })
	w.Stop()

	if logs.FilterMessage("failed to purge expired oauth state").Len() == 0 {
		t.Error("expected error log")
	}
}
