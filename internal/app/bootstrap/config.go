// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for ThesisTrack.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, academic_year, etc.
//   - Environment variables: THESISTRACK_MONGO_URI, THESISTRACK_ACADEMIC_YEAR, etc.
//   - Command-line flags: --mongo_uri, --academic_year, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "thesistrack", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	{Name: "academic_year", Default: "", Desc: "Current academic year, e.g. 2025-2026 (required)"},

	// Email/SMTP configuration
	{Name: "mail_smtp_host", Default: "", Desc: "SMTP server host (blank disables email)"},
	{Name: "mail_smtp_port", Default: 1025, Desc: "SMTP server port"},
	{Name: "mail_smtp_user", Default: "", Desc: "SMTP username"},
	{Name: "mail_smtp_pass", Default: "", Desc: "SMTP password"},
	{Name: "mail_from", Default: "noreply@thesistrack.app", Desc: "From email address"},
	{Name: "site_name", Default: "ThesisTrack", Desc: "Display name used in emails"},

	{Name: "audit_log_routing", Default: "all", Desc: "Ledger visibility: 'all' (db + log mirror) or 'db' (db only)"},

	// Retention
	{Name: "retention_days", Default: 0, Desc: "Days to keep audit/notification records (0 disables purging)"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, THESISTRACK_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "THESISTRACK", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		AcademicYear: appValues.String("academic_year"),

		MailSMTPHost: appValues.String("mail_smtp_host"),
		MailSMTPPort: appValues.Int("mail_smtp_port"),
		MailSMTPUser: appValues.String("mail_smtp_user"),
		MailSMTPPass: appValues.String("mail_smtp_pass"),
		MailFrom:     appValues.String("mail_from"),
		SiteName:     appValues.String("site_name"),

		AuditLogRouting: appValues.String("audit_log_routing"),

		RetentionDays: appValues.Int("retention_days"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// ThesisTrack validates the MongoDB URI format to catch configuration
// errors early, before attempting to connect, and requires an academic
// year so audit contexts never fall back to an empty path root.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if appCfg.AcademicYear == "" {
		return fmt.Errorf("academic_year is required (e.g., '2025-2026')")
	}
	if appCfg.AuditLogRouting != "all" && appCfg.AuditLogRouting != "db" {
		return fmt.Errorf("audit_log_routing must be 'all' or 'db', got %q", appCfg.AuditLogRouting)
	}
	if appCfg.RetentionDays < 0 {
		return fmt.Errorf("retention_days must not be negative")
	}
	return nil
}
