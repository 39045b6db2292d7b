// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (ports, TLS, log
// level, CORS, body limits). AppConfig is everything specific to TaskHub:
// the database, token auth, the settings vault, and the AI providers.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Bearer-token auth configuration
	TokenSecret string        // HMAC secret for signing access tokens (must be strong in production)
	TokenTTL    time.Duration // Access token lifetime

	// SettingsKey protects stored provider API keys at rest.
	SettingsKey string

	// AITimeout bounds a single provider call from the planner.
	AITimeout time.Duration
}
