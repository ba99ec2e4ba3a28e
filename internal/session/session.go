package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"pythia-cli/internal/model"
)

// ErrUnauthenticated means there is no usable session. Callers must abort the
// in-flight operation and send the user to sign-in; this is never retried.
var ErrUnauthenticated = errors.New("not signed in")

const sessionFile = "session.json"

// stored is the on-disk session: just the refresh token. Access tokens are
// never cached — expiry mid-session is the dominant failure mode, so every
// request re-derives a fresh one.
type stored struct {
	RefreshToken string `json:"refreshToken"`
}

// Provider exchanges the stored refresh token for a current access token.
type Provider struct {
	AuthBaseURL string
	Dir         string
	HTTP        *http.Client

	// now is overridable in tests.
	now func() time.Time
}

func NewProvider(authBaseURL, dir string) *Provider {
	return &Provider{
		AuthBaseURL: strings.TrimRight(authBaseURL, "/"),
		Dir:         dir,
		HTTP:        &http.Client{Timeout: 30 * time.Second},
		now:         time.Now,
	}
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	Error        string `json:"error,omitempty"`
}

// GetSession returns the current session, always performing a fresh token
// exchange rather than trusting anything cached. Returns ErrUnauthenticated
// when no refresh token is stored or the provider rejects it.
func (p *Provider) GetSession(ctx context.Context) (model.Session, error) {
	st, err := p.load()
	if err != nil {
		return model.Session{}, err
	}

	body, _ := json.Marshal(map[string]string{"refresh_token": st.RefreshToken})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.AuthBaseURL+"/token", bytes.NewReader(body))
	if err != nil {
		return model.Session{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.HTTP.Do(req)
	if err != nil {
		return model.Session{}, fmt.Errorf("token exchange: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		// The refresh token is dead; drop it so the next attempt fails fast.
		_ = p.clear()
		return model.Session{}, ErrUnauthenticated
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return model.Session{}, fmt.Errorf("token exchange: unexpected status %d", resp.StatusCode)
	}

	var tr tokenResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&tr); err != nil {
		return model.Session{}, fmt.Errorf("token exchange: decode: %w", err)
	}
	if tr.AccessToken == "" {
		return model.Session{}, ErrUnauthenticated
	}

	sess, err := p.sessionFromToken(tr.AccessToken)
	if err != nil {
		return model.Session{}, err
	}

	// Providers rotate refresh tokens; persist the replacement when given one.
	if tr.RefreshToken != "" && tr.RefreshToken != st.RefreshToken {
		if err := p.save(stored{RefreshToken: tr.RefreshToken}); err != nil {
			return model.Session{}, err
		}
	}
	return sess, nil
}

// sessionFromToken extracts userId and expiry from the access token claims.
// Signature verification is the backend's job (the client holds no key), so
// the token is parsed unverified here; an expired or subject-less token is
// treated as unauthenticated.
func (p *Provider) sessionFromToken(token string) (model.Session, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return model.Session{}, fmt.Errorf("parse access token: %w", err)
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return model.Session{}, ErrUnauthenticated
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil && exp.Before(p.now()) {
		return model.Session{}, ErrUnauthenticated
	}
	return model.Session{Token: token, UserID: sub}, nil
}

// SignIn performs the initial credential exchange and stores the refresh
// token for subsequent GetSession calls.
func (p *Provider) SignIn(ctx context.Context, email, password string) (model.Session, error) {
	body, _ := json.Marshal(map[string]string{"email": email, "password": password})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.AuthBaseURL+"/login", bytes.NewReader(body))
	if err != nil {
		return model.Session{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.HTTP.Do(req)
	if err != nil {
		return model.Session{}, fmt.Errorf("sign in: %w", err)
	}
	defer resp.Body.Close()

	var tr tokenResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&tr); err != nil {
		return model.Session{}, fmt.Errorf("sign in: decode: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 || tr.AccessToken == "" {
		if tr.Error != "" {
			return model.Session{}, fmt.Errorf("sign in: %s", tr.Error)
		}
		return model.Session{}, fmt.Errorf("sign in: unexpected status %d", resp.StatusCode)
	}

	sess, err := p.sessionFromToken(tr.AccessToken)
	if err != nil {
		return model.Session{}, err
	}
	if err := p.save(stored{RefreshToken: tr.RefreshToken}); err != nil {
		return model.Session{}, err
	}
	return sess, nil
}

// SignOut forgets the stored session. The revocation call is best-effort;
// the local state is cleared regardless so the user always lands signed out.
func (p *Provider) SignOut(ctx context.Context) error {
	if st, err := p.load(); err == nil {
		body, _ := json.Marshal(map[string]string{"refresh_token": st.RefreshToken})
		if req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.AuthBaseURL+"/signout", bytes.NewReader(body)); err == nil {
			req.Header.Set("Content-Type", "application/json")
			if resp, err := p.HTTP.Do(req); err == nil {
				resp.Body.Close()
			}
		}
	}
	return p.clear()
}

func (p *Provider) path() string { return filepath.Join(p.Dir, sessionFile) }

func (p *Provider) load() (stored, error) {
	b, err := os.ReadFile(p.path())
	if errors.Is(err, fs.ErrNotExist) {
		return stored{}, ErrUnauthenticated
	}
	if err != nil {
		return stored{}, err
	}
	var st stored
	if err := json.Unmarshal(b, &st); err != nil {
		return stored{}, fmt.Errorf("parse session file: %w", err)
	}
	if st.RefreshToken == "" {
		return stored{}, ErrUnauthenticated
	}
	return st, nil
}

func (p *Provider) save(st stored) error {
	b, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p.path(), b, 0o600)
}

func (p *Provider) clear() error {
	err := os.Remove(p.path())
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
