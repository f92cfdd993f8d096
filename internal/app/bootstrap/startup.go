// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"time"

	"github.com/dalemusser/agreeverse/internal/app/store/oauthstate"
	"github.com/dalemusser/agreeverse/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// stateCleanupInterval is how often expired OAuth sign-in state is purged.
const stateCleanupInterval = 10 * time.Minute

// Startup runs after the connection and schema are ready and before the
// HTTP handler is built. It starts the background workers.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	cleanup := workers.NewStateCleanup(oauthstate.New(deps.MongoDatabase), logger, stateCleanupInterval)
	cleanup.Start()
	deps.Background.OnStop(cleanup.Stop)
	return nil
}
