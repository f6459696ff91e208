// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"time"

	"github.com/dalemusser/waffle/config"
	auditstore "github.com/thesistrack/thesistrack/internal/app/store/audits"
	notifstore "github.com/thesistrack/thesistrack/internal/app/store/useraudits"
	"github.com/thesistrack/thesistrack/internal/app/system/tasks"
	"go.uber.org/zap"
)

// taskRunner lives for the process lifetime; Startup creates it and
// Shutdown stops it.
var taskRunner *tasks.Runner

// Startup runs one-time application initialization after DB connections
// and schema setup are complete, but before the HTTP handler is built.
// ThesisTrack uses it to launch the retention purge jobs.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	taskRunner = tasks.NewRunner(logger)

	if appCfg.RetentionDays > 0 {
		retention := time.Duration(appCfg.RetentionDays) * 24 * time.Hour
		taskRunner.Register(tasks.RetentionPurgeJob(
			"group-audit-retention", auditstore.New(deps.MongoDatabase), logger, retention))
		taskRunner.Register(tasks.RetentionPurgeJob(
			"user-audit-retention", notifstore.New(deps.MongoDatabase), logger, retention))
	}

	taskRunner.Start()
	return nil
}
