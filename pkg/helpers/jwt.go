package helpers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrTokenInvalid = errors.New("token invalid")

// Claims carries the user id as "uid" alongside the registered claims.
type Claims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

// JWTManager signs and verifies HS256 access tokens. When Issuer is set it
// is stamped on new tokens and required on parsed ones.
type JWTManager struct {
	Secret    []byte
	AccessTTL time.Duration
	Issuer    string
	now       func() time.Time
}

func NewJWTManager(secret string, accessTTL time.Duration) *JWTManager {
	return &JWTManager{Secret: []byte(secret), AccessTTL: accessTTL, now: time.Now}
}

// GenerateAccessToken returns a token for userID and its expiry.
func (m *JWTManager) GenerateAccessToken(userID string) (string, time.Time, error) {
	issued := m.now()
	exp := issued.Add(m.AccessTTL)
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.Issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.Secret)
	return signed, exp, err
}

func (m *JWTManager) parserOptions() []jwt.ParserOption {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	}
	if m.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.Issuer))
	}
	return opts
}

// ParseAccessToken verifies signature, algorithm, expiry and issuer.
func (m *JWTManager) ParseAccessToken(raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return m.Secret, nil
	}, m.parserOptions()...)
	if err != nil {
		return nil, err
	}
	if claims.UserID == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
