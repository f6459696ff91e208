// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	activityfeature "github.com/thesistrack/thesistrack/internal/app/features/activity"
	healthfeature "github.com/thesistrack/thesistrack/internal/app/features/health"
	notificationsfeature "github.com/thesistrack/thesistrack/internal/app/features/notifications"
	workflowfeature "github.com/thesistrack/thesistrack/internal/app/features/workflow"
	auditstore "github.com/thesistrack/thesistrack/internal/app/store/audits"
	profilestore "github.com/thesistrack/thesistrack/internal/app/store/profiles"
	notifstore "github.com/thesistrack/thesistrack/internal/app/store/useraudits"
	"github.com/thesistrack/thesistrack/internal/app/system/approval"
	"github.com/thesistrack/thesistrack/internal/app/system/auditctx"
	"github.com/thesistrack/thesistrack/internal/app/system/fanout"
	"github.com/thesistrack/thesistrack/internal/app/system/mailer"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup,
// and any Startup hooks have completed. ThesisTrack assembles the audit
// pipeline here: context builder, mail side channel, fan-out engine and
// approval router, then mounts the feature routers on top of them.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase

	builder := auditctx.NewBuilder(appCfg.AcademicYear)

	m := mailer.New(mailer.Config{
		Host:     appCfg.MailSMTPHost,
		Port:     appCfg.MailSMTPPort,
		Username: appCfg.MailSMTPUser,
		Password: appCfg.MailSMTPPass,
		From:     appCfg.MailFrom,
		SiteName: appCfg.SiteName,
	}, logger)

	engine := fanout.NewEngine(auditstore.New(db), notifstore.New(db), profilestore.New(db), nil, builder, logger)
	if m.Enabled() {
		engine = fanout.NewEngine(auditstore.New(db), notifstore.New(db), profilestore.New(db), m, builder, logger)
	} else {
		logger.Info("email side channel disabled (no SMTP host configured)")
	}
	if appCfg.AuditLogRouting == "all" {
		engine.EnableLedgerMirror()
	}
	router := approval.NewRouter(engine, logger)

	r := chi.NewRouter()

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(db, logger)
	r.Mount("/healthz", healthfeature.Routes(healthHandler))

	// Per-user notification inbox, state marking, and live stream
	notifHandler := notificationsfeature.NewHandler(db, builder, logger)
	r.Route("/users/{userID}", func(ur chi.Router) {
		ur.Mount("/notifications", notificationsfeature.Routes(notifHandler))
	})

	// Group ledger and workflow operations
	activityHandler := activityfeature.NewHandler(db, logger)
	workflowHandler := workflowfeature.NewHandler(db, engine, router, logger)
	r.Route("/groups/{groupID}", func(gr chi.Router) {
		gr.Mount("/audits", activityfeature.Routes(activityHandler))
		gr.Mount("/", workflowfeature.Routes(workflowHandler))
	})

	return r, nil
}
