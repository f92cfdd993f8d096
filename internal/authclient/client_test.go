package authclient_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dalemusser/agreeverse/internal/authclient"
)

func newClient(t *testing.T, api *fakeAPI, cachePath string) *authclient.Client {
	t.Helper()
	c, err := authclient.New(api.URL, authclient.FileCache{Path: cachePath}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestNew_RejectsBadURL(t *testing.T) {
	if _, err := authclient.New("not a url", nil, nil); err == nil {
		t.Fatal("expected error")
	}
}

func TestSignInCachesIdentity(t *testing.T) {
	api := newFakeAPI(t)
	path := filepath.Join(t.TempDir(), "session.json")
	c := newClient(t, api, path)
	ctx := context.Background()

	ident, err := c.SignIn(ctx, "Farmer", "asha@x.com", "password123")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if ident.Name != "Asha" || ident.Role != "farmer" {
		t.Errorf("identity = %+v", ident)
	}

	st, err := authclient.FileCache{Path: path}.Load()
	if err != nil || st == nil {
		t.Fatalf("cache not written: %v", err)
	}
	if st.Role != "farmer" || st.Token != "tok-farmer" {
		t.Errorf("cached state = %+v", st)
	}
	if info, err := os.Stat(path); err == nil && info.Mode().Perm() != 0o600 {
		t.Errorf("cache mode = %v, want 0600", info.Mode().Perm())
	}

	role, err := c.Verify(ctx)
	if err != nil || role != "farmer" {
		t.Errorf("Verify = %q, %v", role, err)
	}
}

func TestSignIn_BadPasswordForgets(t *testing.T) {
	api := newFakeAPI(t)
	c := newClient(t, api, filepath.Join(t.TempDir(), "session.json"))

	_, err := c.SignIn(context.Background(), "farmer", "asha@x.com", "nope")
	var apiErr *authclient.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != 400 || apiErr.Message != "Invalid credentials" {
		t.Fatalf("err = %v", err)
	}
	if _, ok := c.Current(); ok {
		t.Error("session must not be remembered")
	}
}

func TestSignIn_UnknownRole(t *testing.T) {
	api := newFakeAPI(t)
	c := newClient(t, api, filepath.Join(t.TempDir(), "session.json"))
	if _, err := c.SignIn(context.Background(), "superuser", "a", "b"); err == nil {
		t.Fatal("expected error")
	}
}

func TestSessionRestoredFromCache(t *testing.T) {
	api := newFakeAPI(t)
	path := filepath.Join(t.TempDir(), "session.json")
	ctx := context.Background()

	first := newClient(t, api, path)
	if _, err := first.SignIn(ctx, "coordinator", "asha@x.com", "password123"); err != nil {
		t.Fatal(err)
	}

	second := newClient(t, api, path)
	st, ok := second.Current()
	if !ok || st.Role != "coordinator" {
		t.Fatalf("restored state = %+v, %v", st, ok)
	}
	ident, err := second.Guard(ctx)
	if err != nil {
		t.Fatalf("Guard: %v", err)
	}
	if ident.Email != "asha@x.com" {
		t.Errorf("email = %q", ident.Email)
	}
}

func TestFetchUserDetails_FailureClearsEverything(t *testing.T) {
	api := newFakeAPI(t)
	path := filepath.Join(t.TempDir(), "session.json")
	c := newClient(t, api, path)
	ctx := context.Background()

	if _, err := c.SignIn(ctx, "farmer", "asha@x.com", "password123"); err != nil {
		t.Fatal(err)
	}
	// A farmer token cannot load the admin dashboard.
	if _, err := c.FetchUserDetails(ctx, "admin"); err == nil {
		t.Fatal("expected failure")
	}
	if _, ok := c.Current(); ok {
		t.Error("memory state must be cleared")
	}
	if st, _ := (authclient.FileCache{Path: path}).Load(); st != nil {
		t.Error("durable cache must be cleared")
	}
	if _, err := c.Verify(ctx); err == nil {
		t.Error("cookie must be dropped")
	}
}

func TestGuard_NoSession(t *testing.T) {
	api := newFakeAPI(t)
	c := newClient(t, api, filepath.Join(t.TempDir(), "session.json"))
	if _, err := c.Guard(context.Background()); !errors.Is(err, authclient.ErrSignInRequired) {
		t.Fatalf("err = %v, want ErrSignInRequired", err)
	}
	if api.dashboardCalls.Load() != 0 {
		t.Error("guard without session must not call the server")
	}
}

func TestGuard_RevalidatesEveryTime(t *testing.T) {
	api := newFakeAPI(t)
	c := newClient(t, api, filepath.Join(t.TempDir(), "session.json"))
	ctx := context.Background()
	if _, err := c.SignIn(ctx, "user", "asha@x.com", "password123"); err != nil {
		t.Fatal(err)
	}
	before := api.dashboardCalls.Load()
	for range 2 {
		if _, err := c.Guard(ctx); err != nil {
			t.Fatal(err)
		}
	}
	if got := api.dashboardCalls.Load() - before; got != 2 {
		t.Errorf("dashboard calls = %d, want 2", got)
	}
}

func TestLogout(t *testing.T) {
	api := newFakeAPI(t)
	path := filepath.Join(t.TempDir(), "session.json")
	c := newClient(t, api, path)
	ctx := context.Background()
	if _, err := c.SignIn(ctx, "farmer", "asha@x.com", "password123"); err != nil {
		t.Fatal(err)
	}

	api.failSignout.Store(true)
	if c.Logout(ctx) {
		t.Fatal("Logout reported success on server error")
	}
	if _, ok := c.Current(); !ok {
		t.Error("failed logout must keep the session")
	}

	api.failSignout.Store(false)
	if !c.Logout(ctx) {
		t.Fatal("Logout failed")
	}
	if _, ok := c.Current(); ok {
		t.Error("session must be cleared")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("cache file must be removed")
	}
	if _, err := c.Guard(ctx); !errors.Is(err, authclient.ErrSignInRequired) {
		t.Errorf("Guard after logout = %v", err)
	}
}

func TestSignUp(t *testing.T) {
	api := newFakeAPI(t)
	c := newClient(t, api, filepath.Join(t.TempDir(), "session.json"))
	ctx := context.Background()

	if err := c.SignUp(ctx, "farmer", authclient.SignUpRequest{Name: "A", Email: "a@x.com", Password: "secret1", Phone: "9876543210"}); err != nil {
		t.Fatalf("SignUp: %v", err)
	}

	err := c.SignUp(ctx, "farmer", authclient.SignUpRequest{Name: "A", Email: "a@x.com"})
	var apiErr *authclient.APIError
	if !errors.As(err, &apiErr) || len(apiErr.Errors) != 1 || apiErr.Errors[0].Field != "password" {
		t.Fatalf("err = %v", err)
	}

	err = c.SignUp(ctx, "farmer", authclient.SignUpRequest{Name: "A", Email: "taken@x.com", Password: "secret1"})
	if !errors.As(err, &apiErr) || apiErr.Status != 409 {
		t.Fatalf("err = %v", err)
	}
}

func TestFileCache_CorruptIsIgnored(t *testing.T) {
	api := newFakeAPI(t)
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	c := newClient(t, api, path)
	if _, ok := c.Current(); ok {
		t.Error("corrupt cache must not restore a session")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("corrupt cache should be removed")
	}
}
