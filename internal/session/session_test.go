package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signToken(t *testing.T, sub string, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
		"exp": exp.Unix(),
	})
	s, err := tok.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func writeStored(t *testing.T, dir, refreshToken string) {
	t.Helper()
	b, _ := json.Marshal(map[string]string{"refreshToken": refreshToken})
	if err := os.WriteFile(filepath.Join(dir, "session.json"), b, 0o600); err != nil {
		t.Fatalf("write session file: %v", err)
	}
}

func newTestProvider(t *testing.T, handler http.Handler) (*Provider, string) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	dir := t.TempDir()
	p := NewProvider(srv.URL, dir)
	return p, dir
}

func TestGetSession_MissingFileIsUnauthenticated(t *testing.T) {
	t.Parallel()

	hit := false
	p, _ := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hit = true
	}))

	_, err := p.GetSession(context.Background())
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("err = %v; want ErrUnauthenticated", err)
	}
	if hit {
		t.Fatalf("no request should go out without a stored refresh token")
	}
}

func TestGetSession_ExchangesRefreshTokenEveryCall(t *testing.T) {
	t.Parallel()

	access := ""
	calls := 0
	p, dir := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Path != "/token" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["refresh_token"] != "refresh-1" {
			t.Errorf("refresh_token = %q", body["refresh_token"])
		}
		json.NewEncoder(w).Encode(map[string]string{"access_token": access})
	}))
	writeStored(t, dir, "refresh-1")
	access = signToken(t, "user-7", time.Now().Add(time.Hour))

	sess, err := p.GetSession(context.Background())
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if sess.UserID != "user-7" {
		t.Fatalf("user = %q; want user-7 from the token subject", sess.UserID)
	}
	if sess.Token != access {
		t.Fatalf("session token != issued access token")
	}

	// A second call exchanges again; nothing is cached.
	if _, err := p.GetSession(context.Background()); err != nil {
		t.Fatalf("second get session: %v", err)
	}
	if calls != 2 {
		t.Fatalf("token endpoint hit %d times; want one exchange per call", calls)
	}
}

func TestGetSession_RejectedRefreshClearsStoredSession(t *testing.T) {
	t.Parallel()

	p, dir := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	writeStored(t, dir, "dead-token")

	_, err := p.GetSession(context.Background())
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("err = %v; want ErrUnauthenticated", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "session.json")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("dead refresh token must be removed, stat err = %v", err)
	}
}

func TestGetSession_ExpiredAccessTokenIsUnauthenticated(t *testing.T) {
	t.Parallel()

	var access string
	p, dir := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"access_token": access})
	}))
	writeStored(t, dir, "refresh-1")
	access = signToken(t, "user-7", time.Now().Add(-time.Minute))

	_, err := p.GetSession(context.Background())
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("err = %v; want ErrUnauthenticated for an expired access token", err)
	}
}

func TestGetSession_PersistsRotatedRefreshToken(t *testing.T) {
	t.Parallel()

	var access string
	p, dir := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"access_token":  access,
			"refresh_token": "refresh-2",
		})
	}))
	writeStored(t, dir, "refresh-1")
	access = signToken(t, "user-7", time.Now().Add(time.Hour))

	if _, err := p.GetSession(context.Background()); err != nil {
		t.Fatalf("get session: %v", err)
	}
	b, err := os.ReadFile(filepath.Join(dir, "session.json"))
	if err != nil {
		t.Fatalf("read session file: %v", err)
	}
	var st struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.Unmarshal(b, &st); err != nil {
		t.Fatalf("parse session file: %v", err)
	}
	if st.RefreshToken != "refresh-2" {
		t.Fatalf("stored refresh token = %q; want the rotated refresh-2", st.RefreshToken)
	}
}

func TestSignIn_StoresRefreshToken(t *testing.T) {
	t.Parallel()

	var access string
	p, dir := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/login" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["email"] != "a@b.c" || body["password"] != "pw" {
			t.Errorf("credentials = %v", body)
		}
		json.NewEncoder(w).Encode(map[string]string{
			"access_token":  access,
			"refresh_token": "refresh-new",
		})
	}))
	access = signToken(t, "user-7", time.Now().Add(time.Hour))

	sess, err := p.SignIn(context.Background(), "a@b.c", "pw")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if sess.UserID != "user-7" {
		t.Fatalf("user = %q", sess.UserID)
	}
	if _, err := os.Stat(filepath.Join(dir, "session.json")); err != nil {
		t.Fatalf("session file not written: %v", err)
	}
}

func TestSignIn_SurfacesProviderError(t *testing.T) {
	t.Parallel()

	p, _ := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "invalid credentials"})
	}))

	_, err := p.SignIn(context.Background(), "a@b.c", "wrong")
	if err == nil || err.Error() != "sign in: invalid credentials" {
		t.Fatalf("err = %v; want the provider's message", err)
	}
}

func TestSignOut_ClearsLocalStateEvenWhenRevocationFails(t *testing.T) {
	t.Parallel()

	p, dir := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	writeStored(t, dir, "refresh-1")

	if err := p.SignOut(context.Background()); err != nil {
		t.Fatalf("sign out: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "session.json")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("session file still present after sign out")
	}
	if _, err := p.GetSession(context.Background()); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("err = %v; want ErrUnauthenticated after sign out", err)
	}
}
