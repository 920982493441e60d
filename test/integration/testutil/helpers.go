//go:build integration

package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/attaboy/puzzlequest/internal/auth"
	"github.com/attaboy/puzzlequest/internal/domain"
)

// PlayerToken issues a player-realm token for addr.
func (env *TestEnv) PlayerToken(addr domain.Address) string {
	return env.token(auth.RealmPlayer, addr, "")
}

// AdminToken issues an admin-realm token with the admin role.
func (env *TestEnv) AdminToken(addr domain.Address) string {
	return env.token(auth.RealmAdmin, addr, auth.RoleAdmin)
}

// VerifierToken issues a verifier-realm token for addr.
func (env *TestEnv) VerifierToken(addr domain.Address) string {
	return env.token(auth.RealmVerifier, addr, "")
}

func (env *TestEnv) token(realm auth.Realm, addr domain.Address, role string) string {
	env.t.Helper()
	tok, err := env.JWTMgr.GenerateToken(realm, addr, role)
	if err != nil {
		env.t.Fatalf("generate %s token: %v", realm, err)
	}
	return tok
}

// SetTime moves the ledger clock to unix seconds.
func (env *TestEnv) SetTime(unix int64) {
	env.t.Helper()
	now := env.Clock.Now().Unix()
	if unix < now {
		env.t.Fatalf("SetTime: clock cannot move backwards (%d < %d)", unix, now)
	}
	env.Clock.Advance(time.Duration(unix-now) * time.Second)
}

// Bootstrap initializes the platform with admin as the administrator.
func (env *TestEnv) Bootstrap(admin domain.Address, opts *domain.InitOptions) string {
	env.t.Helper()
	token := env.AdminToken(admin)
	var body interface{}
	if opts != nil {
		body = opts
	}
	resp := env.Do(http.MethodPost, "/admin/initialize", body, token)
	AssertStatus(env.t, resp, http.StatusCreated)
	resp.Body.Close()
	return token
}

// GET performs an unauthenticated GET request.
func (env *TestEnv) GET(path string) *http.Response {
	env.t.Helper()
	resp, err := http.Get(env.Server.URL + path)
	if err != nil {
		env.t.Fatalf("GET %s: %v", path, err)
	}
	return resp
}

// AuthGET performs an authenticated GET request.
func (env *TestEnv) AuthGET(path, token string) *http.Response {
	return env.Do(http.MethodGet, path, nil, token)
}

// POST performs a POST request with optional auth token.
func (env *TestEnv) POST(path string, body interface{}, token string) *http.Response {
	return env.Do(http.MethodPost, path, body, token)
}

// Do performs a request with an optional JSON body and auth token.
func (env *TestEnv) Do(method, path string, body interface{}, token string) *http.Response {
	env.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			env.t.Fatalf("%s %s: encode: %v", method, path, err)
		}
	}
	req, err := http.NewRequest(method, env.Server.URL+path, &buf)
	if err != nil {
		env.t.Fatalf("%s %s: new request: %v", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		env.t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}
