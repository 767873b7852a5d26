package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrNoSigningKey = errors.New("tokens: signing key is empty")
	ErrMalformed    = errors.New("tokens: malformed token")
	ErrExpired      = errors.New("tokens: token expired")
)

// Claims carries the user's public id in sub and the expiry in exp.
type Claims struct {
	jwt.RegisteredClaims
}

type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewManager(secret []byte, ttl time.Duration) (*Manager, error) {
	if len(secret) == 0 {
		return nil, ErrNoSigningKey
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("tokens: ttl must be positive, got %s", ttl)
	}
	return &Manager{
		secret: secret,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// WithClock returns a copy of m reading time from now.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	cp := *m
	cp.now = now
	return &cp
}

func (m *Manager) TTL() time.Duration { return m.ttl }

func (m *Manager) Issue(subject string) (string, time.Time, error) {
	if subject == "" {
		return "", time.Time{}, errors.New("tokens: empty subject")
	}

	now := m.now().UTC()
	exp := now.Add(m.ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// Parse checks the signature and expiry of raw. Every failure other than
// expiry of a correctly signed token is reported as ErrMalformed.
func (m *Manager) Parse(raw string) (*Claims, error) {
	if raw == "" {
		return nil, ErrMalformed
	}

	var claims Claims
	tkn, err := jwt.ParseWithClaims(raw, &claims,
		func(t *jwt.Token) (any, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) && !errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return nil, fmt.Errorf("%w: %v", ErrExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if !tkn.Valid || claims.Subject == "" {
		return nil, ErrMalformed
	}
	return &claims, nil
}
