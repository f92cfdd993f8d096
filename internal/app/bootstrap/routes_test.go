package bootstrap

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/agreeverse/internal/testutil"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

func testHandler(t *testing.T) http.Handler {
	t.Helper()
	db := testutil.SetupTestDB(t)
	deps := DBDeps{MongoClient: db.Client(), MongoDatabase: db, Background: &Background{}}
	t.Cleanup(deps.Background.StopAll)

	cfg := validConfig()
	cfg.JWTSecret = testutil.TestSecret
	cfg.FrontendURL = "http://front.test"
	cfg.CORSAllowedOrigins = []string{"http://front.test"}
	cfg.LoginIPWindow = time.Minute
	cfg.LoginAccountWindow = time.Minute
	cfg.PaymentCurrency = "INR"

	h, err := BuildHandler(&config.CoreConfig{}, cfg, deps, zap.NewNop())
	if err != nil {
		t.Fatalf("BuildHandler: %v", err)
	}
	return h
}

func TestBuildHandler_Routes(t *testing.T) {
	h := testHandler(t)

	tests := []struct {
		method, path string
		want         int
	}{
		{"GET", "/health", http.StatusOK},
		{"GET", "/metrics", http.StatusOK},
		{"GET", "/api/v1/verify", http.StatusUnauthorized},
		{"GET", "/api/v1/admin/dashboard", http.StatusUnauthorized},
		{"GET", "/api/v1/coordinator/all-farmers", http.StatusUnauthorized},
		{"GET", "/api/v1/farmer/preview-crops", http.StatusUnauthorized},
		{"GET", "/api/v1/user/previewcrop", http.StatusOK},
		{"POST", "/api/v1/payment/createOrder", http.StatusUnauthorized},
		{"GET", "/api/v1/admin/audit-events", http.StatusUnauthorized},
		{"GET", "/api/v1/nowhere", http.StatusNotFound},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
		if rec.Code != tt.want {
			t.Errorf("%s %s = %d, want %d", tt.method, tt.path, rec.Code, tt.want)
		}
	}
}

func TestBuildHandler_GoogleDisabledRedirects(t *testing.T) {
	h := testHandler(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/auth/google?role=farmer", nil))
	if rec.Code != http.StatusSeeOther && rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("status = %d, want redirect", rec.Code)
	}
	if loc := rec.Header().Get("Location"); !strings.HasPrefix(loc, "http://front.test") {
		t.Errorf("Location = %q, want frontend", loc)
	}
}

func TestBuildHandler_CORSAllowsCredentials(t *testing.T) {
	h := testHandler(t)
	req := httptest.NewRequest("OPTIONS", "/api/v1/farmer/signin", nil)
	req.Header.Set("Origin", "http://front.test")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://front.test" {
		t.Errorf("Allow-Origin = %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("Allow-Credentials = %q", got)
	}

	req = httptest.NewRequest("OPTIONS", "/api/v1/farmer/signin", nil)
	req.Header.Set("Origin", "http://evil.test")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("foreign origin allowed: %q", got)
	}
}
