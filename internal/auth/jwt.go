package auth

import (
	"fmt"
	"time"

	"github.com/attaboy/puzzlequest/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// Realm identifies the JWT authentication realm.
type Realm string

const (
	RealmPlayer   Realm = "player"
	RealmAdmin    Realm = "admin"
	RealmVerifier Realm = "verifier"
)

// Claims holds the custom JWT claims for all 3 realms. The subject is the
// account address the token acts for.
type Claims struct {
	jwt.RegisteredClaims
	Realm Realm  `json:"realm"`
	Role  string `json:"role,omitempty"` // admin realm: auditor, operator, admin
}

// Address returns the subject as an account address.
func (c *Claims) Address() domain.Address {
	return domain.Address(c.Subject)
}

// JWTManager handles token generation and validation for all 3 realms.
type JWTManager struct {
	secret         []byte
	playerExpiry   time.Duration
	adminExpiry    time.Duration
	verifierExpiry time.Duration
	clock          clockwork.Clock
}

// NewJWTManager creates a JWT manager with realm-specific expiry durations.
func NewJWTManager(secret string, playerExpiry, adminExpiry, verifierExpiry time.Duration) *JWTManager {
	return &JWTManager{
		secret:         []byte(secret),
		playerExpiry:   playerExpiry,
		adminExpiry:    adminExpiry,
		verifierExpiry: verifierExpiry,
		clock:          clockwork.NewRealClock(),
	}
}

// WithClock swaps the clock used for issuing and checking expiry.
func (m *JWTManager) WithClock(clock clockwork.Clock) *JWTManager {
	m.clock = clock
	return m
}

// GenerateToken creates a signed JWT for the given realm and account.
func (m *JWTManager) GenerateToken(realm Realm, subject domain.Address, role string) (string, error) {
	var expiry time.Duration
	switch realm {
	case RealmPlayer:
		expiry = m.playerExpiry
	case RealmAdmin:
		expiry = m.adminExpiry
	case RealmVerifier:
		expiry = m.verifierExpiry
	default:
		return "", fmt.Errorf("unknown realm: %s", realm)
	}
	if err := domain.ValidateAddress(subject); err != nil {
		return "", fmt.Errorf("token subject: %w", err)
	}

	now := m.clock.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			ID:        uuid.New().String(),
		},
		Realm: realm,
		Role:  role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ValidateToken parses and validates a JWT, returning claims if valid.
func (m *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.clock.Now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("token has no subject")
	}

	return claims, nil
}

// ValidateTokenForRealm validates a token and ensures it belongs to one of the
// expected realms.
func (m *JWTManager) ValidateTokenForRealm(tokenString string, expected ...Realm) (*Claims, error) {
	claims, err := m.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	for _, realm := range expected {
		if claims.Realm == realm {
			return claims, nil
		}
	}
	return nil, fmt.Errorf("expected realm %v, got %s", expected, claims.Realm)
}
