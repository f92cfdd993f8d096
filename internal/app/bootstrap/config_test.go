package bootstrap

import (
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

func validConfig() AppConfig {
	return AppConfig{
		MongoURI:          "mongodb://localhost:27017",
		MongoDatabase:     "agreeverse_test",
		JWTSecret:         strings.Repeat("s", 32),
		TokenTTL:          time.Hour,
		OAuthTokenTTL:     24 * time.Hour,
		LoginIPLimit:      10,
		LoginAccountLimit: 5,
		AuditLogAuth:      "all",
		AuditLogAdmin:     "db",
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*AppConfig)
		wantErr string
	}{
		{"valid", func(*AppConfig) {}, ""},
		{"missing jwt secret", func(c *AppConfig) { c.JWTSecret = "" }, "jwt_secret"},
		{"bad mongo uri", func(c *AppConfig) { c.MongoURI = "postgres://nope" }, "MongoDB URI"},
		{"half google", func(c *AppConfig) { c.GoogleClientID = "id" }, "google_client_id"},
		{"google without session key", func(c *AppConfig) {
			c.GoogleClientID, c.GoogleClientSecret = "id", "secret"
		}, "session_key"},
		{"google complete", func(c *AppConfig) {
			c.GoogleClientID, c.GoogleClientSecret, c.SessionKey = "id", "secret", "key"
		}, ""},
		{"zero ttl", func(c *AppConfig) { c.TokenTTL = 0 }, "token_ttl"},
		{"zero limit", func(c *AppConfig) { c.LoginAccountLimit = 0 }, "login_ip_limit"},
		{"bad audit dest", func(c *AppConfig) { c.AuditLogAdmin = "stdout" }, "audit_log_admin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := ValidateConfig(&config.CoreConfig{}, cfg, zap.NewNop())
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestSplitOrigins(t *testing.T) {
	got := splitOrigins(" http://a.test/ , ,https://b.test", "http://front.test")
	if len(got) != 2 || got[0] != "http://a.test" || got[1] != "https://b.test" {
		t.Errorf("got %v", got)
	}
	if got := splitOrigins("", "http://front.test"); len(got) != 1 || got[0] != "http://front.test" {
		t.Errorf("default: got %v", got)
	}
	if got := splitOrigins("", ""); got != nil {
		t.Errorf("empty: got %v", got)
	}
}

func TestBackground_StopAllReverseOnce(t *testing.T) {
	var b Background
	var order []int
	b.OnStop(func() { order = append(order, 1) })
	b.OnStop(func() { order = append(order, 2) })
	b.StopAll()
	b.StopAll()
	if len(order) != 2 || order[0] != 2 || order[1] != 1 {
		t.Errorf("order = %v, want [2 1]", order)
	}

	var nilB *Background
	nilB.OnStop(func() {})
	nilB.StopAll()
}
