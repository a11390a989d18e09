package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidIdentity is returned for tokens that fail verification.
var ErrInvalidIdentity = errors.New("invalid identity token")

// IdentityClaims names which partner is using the browser.
type IdentityClaims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// Identity signs and verifies display-identity tokens bound to a user id.
type Identity struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIdentity builds an Identity signer. A zero ttl issues tokens without expiry.
func NewIdentity(secret []byte, ttl time.Duration) *Identity {
	return &Identity{secret: secret, ttl: ttl, now: time.Now}
}

// Issue returns a signed token naming the partner for userID.
func (i *Identity) Issue(userID, name string) (string, error) {
	name = strings.TrimSpace(name)
	if userID == "" || name == "" {
		return "", errors.New("user id and name are required")
	}
	now := i.now()
	claims := IdentityClaims{
		Name: name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  userID,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if i.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(i.ttl))
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign identity: %w", err)
	}
	return token, nil
}

// Parse verifies token and returns the name if it was issued for userID.
func (i *Identity) Parse(token, userID string) (string, error) {
	claims := &IdentityClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidIdentity, err)
	}
	if !parsed.Valid || claims.Subject != userID || claims.Name == "" {
		return "", ErrInvalidIdentity
	}
	return claims.Name, nil
}
