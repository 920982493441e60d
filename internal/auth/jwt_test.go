package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTManager() *JWTManager {
	return NewJWTManager("test-secret-key", 24*time.Hour, 8*time.Hour, 12*time.Hour)
}

func TestGenerateAndValidatePlayerToken(t *testing.T) {
	mgr := newTestJWTManager()

	token, err := mgr.GenerateToken(RealmPlayer, "alice", "")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := mgr.ValidateTokenForRealm(token, RealmPlayer)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, RealmPlayer, claims.Realm)
	assert.Equal(t, "alice", claims.Address().String())
}

func TestGenerateAndValidateAdminToken(t *testing.T) {
	mgr := newTestJWTManager()

	token, err := mgr.GenerateToken(RealmAdmin, "ops", RoleAdmin)
	require.NoError(t, err)

	claims, err := mgr.ValidateTokenForRealm(token, RealmAdmin)
	require.NoError(t, err)
	assert.Equal(t, RealmAdmin, claims.Realm)
	assert.Equal(t, RoleAdmin, claims.Role)
}

func TestVerifierTokenAcceptedByEitherRealm(t *testing.T) {
	mgr := newTestJWTManager()

	token, err := mgr.GenerateToken(RealmVerifier, "oracle", "")
	require.NoError(t, err)

	claims, err := mgr.ValidateTokenForRealm(token, RealmVerifier, RealmAdmin)
	require.NoError(t, err)
	assert.Equal(t, RealmVerifier, claims.Realm)
}

func TestRealmMismatchRejected(t *testing.T) {
	mgr := newTestJWTManager()

	token, err := mgr.GenerateToken(RealmPlayer, "alice", "")
	require.NoError(t, err)

	_, err = mgr.ValidateTokenForRealm(token, RealmAdmin)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "expected realm")
}

func TestInvalidSubjectRejected(t *testing.T) {
	mgr := newTestJWTManager()
	_, err := mgr.GenerateToken(RealmPlayer, "not an address", "")
	assert.Error(t, err)

	_, err = mgr.GenerateToken("affiliate", "alice", "")
	assert.Error(t, err)
}

func TestInvalidSecretRejected(t *testing.T) {
	mgr1 := NewJWTManager("secret-1", 24*time.Hour, 8*time.Hour, 12*time.Hour)
	mgr2 := NewJWTManager("secret-2", 24*time.Hour, 8*time.Hour, 12*time.Hour)

	token, err := mgr1.GenerateToken(RealmPlayer, "alice", "")
	require.NoError(t, err)

	_, err = mgr2.ValidateToken(token)
	assert.Error(t, err)
}

func TestExpiredTokenRejected(t *testing.T) {
	fake := clockwork.NewFakeClock()
	mgr := NewJWTManager("secret", time.Minute, time.Minute, time.Minute).WithClock(fake)

	token, err := mgr.GenerateToken(RealmPlayer, "alice", "")
	require.NoError(t, err)

	_, err = mgr.ValidateToken(token)
	require.NoError(t, err)

	fake.Advance(2 * time.Minute)
	_, err = mgr.ValidateToken(token)
	assert.Error(t, err)
}

// --- Middleware Tests ---

func TestAuthenticatePlayer_SetsSubject(t *testing.T) {
	mgr := newTestJWTManager()
	token, err := mgr.GenerateToken(RealmPlayer, "alice", "")
	require.NoError(t, err)

	var got string
	h := AuthenticatePlayer(mgr)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = SubjectFromContext(r.Context()).String()
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", got)
}

func TestAuthenticatePlayer_MissingHeader(t *testing.T) {
	h := AuthenticatePlayer(newTestJWTManager())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole(t *testing.T) {
	mgr := newTestJWTManager()
	token, err := mgr.GenerateToken(RealmAdmin, "ops", RoleAuditor)
	require.NoError(t, err)

	h := AuthenticateAdmin(mgr)(RequireRole(WriteRoles()...)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})))
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
