package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// HostClaims bind a control token to one session and its host. The token is
// issued at creation and required for start/finish; full user identity stays
// with the external auth layer.
type HostClaims struct {
	SessionID string `json:"session_id"`
	HostID    string `json:"host_id"`
	jwt.RegisteredClaims
}

var (
	ErrInvalidHostToken = errors.New("invalid host token")
)

// TokenConfig holds signing configuration for host control tokens.
type TokenConfig struct {
	Secret []byte
	TTL    time.Duration // default: 4 hours, outliving any school-day session
	Issuer string
}

// TokenManager issues and verifies host control tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	issuer string
}

func NewTokenManager(cfg TokenConfig) *TokenManager {
	if cfg.TTL <= 0 {
		cfg.TTL = 4 * time.Hour
	}
	if cfg.Issuer == "" {
		cfg.Issuer = "edugame-platform"
	}
	return &TokenManager{
		secret: cfg.Secret,
		ttl:    cfg.TTL,
		issuer: cfg.Issuer,
	}
}

// Issue signs a control token for (sessionID, hostID).
func (m *TokenManager) Issue(sessionID, hostID string) (string, error) {
	now := time.Now()
	claims := HostClaims{
		SessionID: sessionID,
		HostID:    hostID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   hostID,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign host token: %w", err)
	}
	return signed, nil
}

// Verify parses a control token and checks it targets sessionID. Returns the
// host id carried by the token.
func (m *TokenManager) Verify(tokenString, sessionID string) (string, error) {
	claims := &HostClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidHostToken
	}
	if claims.SessionID != NormalizeID(sessionID) {
		return "", ErrInvalidHostToken
	}
	return claims.HostID, nil
}
