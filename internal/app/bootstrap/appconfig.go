// internal/app/bootstrap/appconfig.go
package bootstrap

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration: ports, TLS, log level
// and the like live in WAFFLE's CoreConfig.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// AcademicYear is the current academic year audit contexts default
	// to when a group does not carry its own (e.g., "2025-2026").
	AcademicYear string

	// Email/SMTP configuration for the notification side channel
	MailSMTPHost string // SMTP server host (e.g., localhost for Mailpit)
	MailSMTPPort int    // SMTP server port (e.g., 1025 for Mailpit, 587 for SES)
	MailSMTPUser string // SMTP username
	MailSMTPPass string // SMTP password
	MailFrom     string // From email address (e.g., noreply@thesistrack.app)
	SiteName     string // Display name used in email subjects and bodies

	// AuditLogRouting controls where ledger appends are visible:
	// "all" (ledger + structured log mirror) or "db" (ledger only).
	// The ledger itself is always written; it is the system of record
	// the fan-out reads from.
	AuditLogRouting string

	// RetentionDays is how long audit and notification records are
	// kept before the nightly purge removes them. 0 disables purging.
	RetentionDays int
}
