//go:build integration

package testutil

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/attaboy/puzzlequest/internal/domain"
)

// DecodeJSON reads and decodes a JSON response body into dst.
func DecodeJSON(t *testing.T, resp *http.Response, dst interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
}

// AssertStatus checks that the response has the expected HTTP status code.
func AssertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("expected status %d, got %d", expected, resp.StatusCode)
	}
}

// AssertErrorCode checks that the response body contains the expected error code.
func AssertErrorCode(t *testing.T, resp *http.Response, expectedCode string) {
	t.Helper()
	var errResp struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	DecodeJSON(t, resp, &errResp)
	if errResp.Code != expectedCode {
		t.Errorf("expected error code %q, got %q (message: %s)", expectedCode, errResp.Code, errResp.Message)
	}
}

// AssertBalance reads the ledger balance straight from Postgres.
func AssertBalance(t *testing.T, env *TestEnv, account domain.Address, expected string) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	bal, err := env.Platform.Balance(ctx, account)
	if err != nil {
		t.Fatalf("AssertBalance: %v", err)
	}
	if bal.String() != expected {
		t.Errorf("balance of %s: expected %s, got %s", account, expected, bal)
	}
}

// AssertAuditPasses runs the ledger audit for account.
func AssertAuditPasses(t *testing.T, env *TestEnv, account domain.Address) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := env.Platform.Audit(ctx, account)
	if err != nil {
		t.Fatalf("AssertAuditPasses: %v", err)
	}
	if !res.AllPassed {
		t.Errorf("audit for %s failed: %+v", account, res.Invariants)
	}
}
