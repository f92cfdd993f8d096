// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables (AGREEVERSE_*), configuration
// files, or command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig
// covers the framework-level settings: ports, TLS, log level and request
// limits.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session tokens. One process-wide secret signs the JWT of every role.
	JWTSecret     string
	TokenTTL      time.Duration // local sign-in and sign-up
	OAuthTokenTTL time.Duration // Google sign-in
	CookieDomain  string        // blank means current host
	CookieSecure  bool          // applies to every cookie the service sets

	// SessionKey signs the short-lived OAuth flow cookie.
	SessionKey string

	// Google OAuth
	GoogleClientID     string
	GoogleClientSecret string
	OAuthStrictState   bool

	// BaseURL is the backend origin used for the OAuth callback;
	// FrontendURL receives the OAuth redirects.
	BaseURL     string
	FrontendURL string

	// CORSAllowedOrigins defaults to FrontendURL.
	CORSAllowedOrigins []string

	// Payments
	PaymentKeySecret string
	PaymentCurrency  string

	// Sign-in throttling
	LoginIPLimit       int
	LoginIPWindow      time.Duration
	LoginAccountLimit  int
	LoginAccountWindow time.Duration

	// Audit destinations: all, db, log or off
	AuditLogAuth  string
	AuditLogAdmin string
}

// GoogleConfigured reports whether both OAuth client values are set.
func (c AppConfig) GoogleConfigured() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}
