// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/agreeverse/internal/app/system/auditlog"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for Agreeverse.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, jwt_secret, etc.
//   - Environment variables: AGREEVERSE_MONGO_URI, AGREEVERSE_JWT_SECRET, etc.
//   - Command-line flags: --mongo_uri, --jwt_secret, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "agreeverse", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Session tokens and cookies
	{Name: "jwt_secret", Default: "", Desc: "Secret that signs session tokens (required)"},
	{Name: "token_ttl", Default: "1h", Desc: "Lifetime of tokens issued by local sign-in"},
	{Name: "oauth_token_ttl", Default: "24h", Desc: "Lifetime of tokens issued by Google sign-in"},
	{Name: "cookie_domain", Default: "", Desc: "Cookie domain (blank means current host)"},
	{Name: "cookie_secure", Default: false, Desc: "Mark every cookie Secure (enable behind HTTPS)"},
	{Name: "session_key", Default: "", Desc: "Key that signs the OAuth flow cookie (required with Google)"},

	// Google OAuth configuration
	{Name: "google_client_id", Default: "", Desc: "Google OAuth2 client ID"},
	{Name: "google_client_secret", Default: "", Desc: "Google OAuth2 client secret"},
	{Name: "oauth_strict_state", Default: false, Desc: "Reject OAuth callbacks whose state is missing or expired"},

	// URLs
	{Name: "base_url", Default: "http://localhost:8080", Desc: "Backend origin, used for the OAuth callback"},
	{Name: "frontend_url", Default: "http://localhost:5173", Desc: "Frontend origin, receives OAuth redirects"},
	{Name: "cors_allowed_origins", Default: "", Desc: "Comma-separated CORS origins (default: frontend_url)"},

	// Payments
	{Name: "payment_key_secret", Default: "", Desc: "Gateway key secret used to verify payment signatures"},
	{Name: "payment_currency", Default: "INR", Desc: "Currency of created orders"},

	// Sign-in throttling
	{Name: "login_ip_limit", Default: 10, Desc: "Sign-in attempts allowed per IP per window"},
	{Name: "login_ip_window", Default: "1m", Desc: "Per-IP sign-in window"},
	{Name: "login_account_limit", Default: 5, Desc: "Sign-in attempts allowed per account per window"},
	{Name: "login_account_window", Default: "5m", Desc: "Per-account sign-in window"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_admin", Default: "all", Desc: "Admin event logging: 'all' (db+log), 'db', 'log', or 'off'"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig merges .env files, config files,
// environment variables (WAFFLE_* for core, AGREEVERSE_* for app) and
// command-line flags with precedence flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "AGREEVERSE", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		JWTSecret:     appValues.String("jwt_secret"),
		TokenTTL:      appValues.Duration("token_ttl", time.Hour),
		OAuthTokenTTL: appValues.Duration("oauth_token_ttl", 24*time.Hour),
		CookieDomain:  appValues.String("cookie_domain"),
		CookieSecure:  appValues.Bool("cookie_secure"),
		SessionKey:    appValues.String("session_key"),

		GoogleClientID:     appValues.String("google_client_id"),
		GoogleClientSecret: appValues.String("google_client_secret"),
		OAuthStrictState:   appValues.Bool("oauth_strict_state"),

		BaseURL:     strings.TrimRight(appValues.String("base_url"), "/"),
		FrontendURL: strings.TrimRight(appValues.String("frontend_url"), "/"),

		PaymentKeySecret: appValues.String("payment_key_secret"),
		PaymentCurrency:  appValues.String("payment_currency"),

		LoginIPLimit:       appValues.Int("login_ip_limit"),
		LoginIPWindow:      appValues.Duration("login_ip_window", time.Minute),
		LoginAccountLimit:  appValues.Int("login_account_limit"),
		LoginAccountWindow: appValues.Duration("login_account_window", 5*time.Minute),

		AuditLogAuth:  appValues.String("audit_log_auth"),
		AuditLogAdmin: appValues.String("audit_log_admin"),
	}
	appCfg.CORSAllowedOrigins = splitOrigins(appValues.String("cors_allowed_origins"), appCfg.FrontendURL)

	return coreCfg, appCfg, nil
}

// splitOrigins parses a comma-separated origin list, falling back to def.
func splitOrigins(raw, def string) []string {
	var out []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 && def != "" {
		out = []string{def}
	}
	return out
}

// ValidateConfig rejects configurations the service cannot run with.
//
// It runs before any connection is attempted so a malformed Mongo URI or a
// missing secret fails fast with a clear message.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if appCfg.JWTSecret == "" {
		return errors.New("jwt_secret is required")
	}
	if len(appCfg.JWTSecret) < 32 {
		logger.Warn("jwt_secret is shorter than 32 characters")
	}

	if (appCfg.GoogleClientID == "") != (appCfg.GoogleClientSecret == "") {
		return errors.New("google_client_id and google_client_secret must be set together")
	}
	if appCfg.GoogleConfigured() && appCfg.SessionKey == "" {
		return errors.New("session_key is required when Google sign-in is configured")
	}

	if appCfg.TokenTTL <= 0 || appCfg.OAuthTokenTTL <= 0 {
		return errors.New("token_ttl and oauth_token_ttl must be positive")
	}
	if appCfg.LoginIPLimit <= 0 || appCfg.LoginAccountLimit <= 0 {
		return errors.New("login_ip_limit and login_account_limit must be positive")
	}

	for key, v := range map[string]string{"audit_log_auth": appCfg.AuditLogAuth, "audit_log_admin": appCfg.AuditLogAdmin} {
		switch v {
		case auditlog.DestAll, auditlog.DestDB, auditlog.DestLog, auditlog.DestOff:
		default:
			return fmt.Errorf("%s must be one of all, db, log, off (got %q)", key, v)
		}
	}

	if appCfg.PaymentKeySecret == "" {
		logger.Warn("payment_key_secret is not set; payment verification is disabled")
	}
	return nil
}
