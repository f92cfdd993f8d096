package authclient_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/go-chi/chi/v5"
)

// fakeAPI mimics the session endpoints: signin sets a per-role token cookie
// that only that role's dashboard accepts.
type fakeAPI struct {
	*httptest.Server
	dashboardCalls atomic.Int64
	failSignout    atomic.Bool
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	f := &fakeAPI{}
	r := chi.NewRouter()

	r.Post("/api/v1/{role}/signup", func(w http.ResponseWriter, r *http.Request) {
		var in map[string]string
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in["email"] == "taken@x.com" {
			writeJSON(w, http.StatusConflict, map[string]any{"success": false, "message": "User already exists in Farmer collection"})
			return
		}
		if in["password"] == "" {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"success": false, "message": "Validation failed",
				"errors": []map[string]string{{"field": "password", "message": "Password is required."}},
			})
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"success": true, "message": "created"})
	})

	r.Post("/api/v1/{role}/signin", func(w http.ResponseWriter, r *http.Request) {
		var in map[string]string
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in["password"] != "password123" {
			writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "Invalid credentials"})
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "token", Value: "tok-" + chi.URLParam(r, "role"), Path: "/", HttpOnly: true})
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "role": chi.URLParam(r, "role")})
	})

	r.Get("/api/v1/{role}/dashboard", func(w http.ResponseWriter, r *http.Request) {
		f.dashboardCalls.Add(1)
		role := chi.URLParam(r, "role")
		ck, err := r.Cookie("token")
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "Unauthorized: No token provided"})
			return
		}
		if ck.Value != "tok-"+role {
			writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": "Farmer not found"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "user": map[string]any{
			"_id": "64b000000000000000000001", "name": "Asha", "email": "asha@x.com", "role": role, "phone": "9876543210",
		}})
	})

	r.Get("/api/v1/verify", func(w http.ResponseWriter, r *http.Request) {
		ck, err := r.Cookie("token")
		if err != nil || len(ck.Value) < 5 {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "Unauthorized: No token provided"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "role": ck.Value[4:]})
	})

	r.Post("/api/v1/signout", func(w http.ResponseWriter, r *http.Request) {
		if f.failSignout.Load() {
			writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "message": "Internal server error"})
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "token", Value: "", Path: "/", MaxAge: -1})
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Logged out successfully"})
	})

	f.Server = httptest.NewServer(r)
	t.Cleanup(f.Close)
	return f
}
