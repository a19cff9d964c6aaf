package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrWrongTokenType = errors.New("wrong token type")
)

// Claims carried by both access and refresh tokens. The subject is the
// user id.
type Claims struct {
	Role      string `json:"role"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

func (c *Claims) UserID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

type Config struct {
	Secret        string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
}

type TokenManager struct {
	cfg Config
	now func() time.Time
}

func NewTokenManager(cfg Config) *TokenManager {
	if cfg.RefreshSecret == "" {
		cfg.RefreshSecret = cfg.Secret
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = 24 * time.Hour
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = 30 * 24 * time.Hour
	}
	return &TokenManager{cfg: cfg, now: time.Now}
}

func (m *TokenManager) GenerateAccessToken(userID uuid.UUID, role string) (string, error) {
	return m.sign(userID, role, TokenTypeAccess, m.cfg.AccessTTL, m.cfg.Secret)
}

func (m *TokenManager) GenerateRefreshToken(userID uuid.UUID, role string) (string, error) {
	return m.sign(userID, role, TokenTypeRefresh, m.cfg.RefreshTTL, m.cfg.RefreshSecret)
}

func (m *TokenManager) ValidateAccessToken(token string) (*Claims, error) {
	return m.parse(token, TokenTypeAccess, m.cfg.Secret)
}

func (m *TokenManager) ValidateRefreshToken(token string) (*Claims, error) {
	return m.parse(token, TokenTypeRefresh, m.cfg.RefreshSecret)
}

func (m *TokenManager) sign(userID uuid.UUID, role, typ string, ttl time.Duration, secret string) (string, error) {
	now := m.now()
	claims := Claims{
		Role:      role,
		TokenType: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    m.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", typ, err)
	}
	return signed, nil
}

func (m *TokenManager) parse(token, typ, secret string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.TokenType != typ {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}
