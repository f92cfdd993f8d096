package session_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/agreeverse/internal/app/features/session"
	"github.com/dalemusser/agreeverse/internal/app/system/auth"
	"github.com/dalemusser/agreeverse/internal/domain/models"
	"github.com/dalemusser/agreeverse/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func router(t *testing.T) (chi.Router, *auth.Tokens) {
	tokens := testutil.NewTokens(t)
	h := session.NewHandler(tokens, auth.NewCookies("", false), nil, zap.NewNop())
	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) { session.Register(r, h) })
	return r, tokens
}

func TestVerify(t *testing.T) {
	r, tokens := router(t)
	expired, err := tokens.Issue(primitive.NewObjectID(), models.RoleFarmer, -time.Minute)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		cookie *http.Cookie
		want   int
	}{
		{"no cookie", nil, http.StatusUnauthorized},
		{"garbage", &http.Cookie{Name: auth.CookieName, Value: "x.y.z"}, http.StatusUnauthorized},
		{"expired", &http.Cookie{Name: auth.CookieName, Value: expired}, http.StatusUnauthorized},
		{"valid", testutil.SessionCookie(t, tokens, primitive.NewObjectID(), models.RoleCoordinator), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/v1/verify", nil)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			rec := testutil.NewRecorder()
			r.ServeHTTP(rec, req)
			rec.AssertStatus(t, tt.want)
			if tt.want == http.StatusOK {
				body := rec.JSON(t)
				if body["role"] != "coordinator" || body["message"] != "User Found" {
					t.Errorf("body = %v", body)
				}
			}
		})
	}
}

func TestSignout(t *testing.T) {
	r, tokens := router(t)
	req := httptest.NewRequest("POST", "/api/v1/signout", nil)
	req.AddCookie(testutil.SessionCookie(t, tokens, primitive.NewObjectID(), models.RoleUser))
	rec := testutil.NewRecorder()
	r.ServeHTTP(rec, req)

	rec.AssertStatus(t, http.StatusOK)
	c := rec.Cookie(auth.CookieName)
	if c == nil || c.Value != "" {
		t.Fatalf("cookie not cleared: %+v", c)
	}
	if !c.Expires.IsZero() && c.Expires.After(time.Unix(1, 0)) {
		t.Errorf("Expires = %v, want epoch", c.Expires)
	}
}
