// Package auth implements password hashing and the signed access tokens
// presented on every protected request.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/BakeNecko/sidus-heroes/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// DefaultAccessTokenTTL is the access token lifetime when none is configured.
const DefaultAccessTokenTTL = 30 * time.Minute

// Claims are the registered claims plus the token scope. The subject is the
// user id in decimal.
type Claims struct {
	jwt.RegisteredClaims
	Scope string `json:"scope"`
}

// TokenService mints and validates HS256 access tokens. There is no
// revocation: a token stays valid until it expires.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(secret []byte, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = DefaultAccessTokenTTL
	}
	return &TokenService{secret: secret, ttl: ttl, now: time.Now}
}

// Issue signs an access token for userID.
func (s *TokenService) Issue(userID int64) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		Scope: common.AccessTokenScope,
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate returns the user id carried by an access token. The signature is
// checked first, then expiry, then scope; the error says which one failed:
// common.ErrInvalidToken, common.ErrTokenExpired or common.ErrInvalidScope.
func (s *TokenService) Validate(tokenString string) (int64, error) {
	claims := &Claims{}

	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, common.ErrTokenExpired
		}
		return 0, common.ErrInvalidToken
	}

	if claims.Scope != common.AccessTokenScope {
		return 0, common.ErrInvalidScope
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, common.ErrInvalidToken
	}
	return userID, nil
}
