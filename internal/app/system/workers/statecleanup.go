// internal/app/system/workers/statecleanup.go
package workers

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Cleaner deletes expired records and reports how many it removed.
// *oauthstate.Store satisfies it.
type Cleaner interface {
	CleanupExpired(ctx context.Context) (int64, error)
}

// StateCleanup is a background worker that purges expired OAuth sign-in
// state. Consume already ignores expired rows; this keeps the collection
// small.
type StateCleanup struct {
	store    Cleaner
	log      *zap.Logger
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewStateCleanup creates a worker that runs every interval (10 minutes in
// production).
func NewStateCleanup(store Cleaner, logger *zap.Logger, interval time.Duration) *StateCleanup {
	return &StateCleanup{
		store:    store,
		log:      logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the background cleanup loop.
func (w *StateCleanup) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("oauth state cleanup worker started", zap.Duration("interval", w.interval))
}

// Stop signals the worker to stop and waits for it to finish. Safe to call
// more than once.
func (w *StateCleanup) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.wg.Wait()
		w.log.Info("oauth state cleanup worker stopped")
	})
}

func (w *StateCleanup) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.cleanup()
		}
	}
}

func (w *StateCleanup) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	count, err := w.store.CleanupExpired(ctx)
	if err != nil {
		w.log.Error("failed to purge expired oauth state", zap.Error(err))
		return
	}
	if count > 0 {
		w.log.Info("purged expired oauth state", zap.Int64("count", count))
	}
}
