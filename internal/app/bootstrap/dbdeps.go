// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"sync"

	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// Background collects the stop functions of workers and limiters
	// started by Startup and BuildHandler. Shutdown runs them.
	Background *Background
}

// Background is the set of long-running goroutines owned by the app.
type Background struct {
	mu    sync.Mutex
	stops []func()
}

// OnStop registers fn to run at shutdown.
func (b *Background) OnStop(fn func()) {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stops = append(b.stops, fn)
}

// StopAll runs the registered functions in reverse order. Later calls do
// nothing.
func (b *Background) StopAll() {
	if b == nil {
		return
	}
	b.mu.Lock()
	stops := b.stops
	b.stops = nil
	b.mu.Unlock()
	for i := len(stops) - 1; i >= 0; i-- {
		stops[i]()
	}
}
