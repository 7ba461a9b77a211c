package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// MinSecretLen is the shortest signing secret accepted. Anything shorter
// is a deployment mistake and must fail before a single token is minted.
const MinSecretLen = 32

var (
	ErrSecretTooShort = errors.New("jwt secret must be at least 32 bytes")
	ErrInvalidToken   = errors.New("invalid token")
)

type Claims struct {
	UserID     string   `json:"sub"`
	Email      string   `json:"email"`
	GivenName  string   `json:"given_name"`
	FamilyName string   `json:"family_name"`
	Roles      []string `json:"roles"`
	JTI        string   `json:"jti"`
	jwt.RegisteredClaims
}

// HasRole reports whether the token asserts the named role.
func (c *Claims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

type Manager struct {
	secret []byte
	ttl    time.Duration
}

func NewManager(secret string, ttl time.Duration) (*Manager, error) {
	if len(secret) < MinSecretLen {
		return nil, ErrSecretTooShort
	}

	if ttl <= 0 {
		ttl = 60 * time.Minute
	}

	return &Manager{
		secret: []byte(secret),
		ttl:    ttl,
	}, nil
}

// Generate mints a signed token binding identity and the current role set.
// Expiry is issue time plus the configured duration.
func (m *Manager) Generate(userID, email, firstName, lastName string, roles []string) (token string, expiresAt time.Time, err error) {
	now := time.Now().UTC()
	expiresAt = now.Add(m.ttl)

	claims := Claims{
		UserID:     userID,
		Email:      email,
		GivenName:  firstName,
		FamilyName: lastName,
		Roles:      roles,
		JTI:        uuid.NewString(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			Subject:   userID,
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	token, err = t.SignedString(m.secret)

	return
}

func (m *Manager) Verify(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		// Enforce HS256

		_, ok := t.Method.(*jwt.SigningMethodHMAC)

		if !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)

	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.JTI == "" {
		return nil, errors.New("missing jti")
	}

	return claims, nil
}
