package tokens

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-jwt-secret")

func newTestManager(t *testing.T, now time.Time) *Manager {
	t.Helper()
	m, err := NewManager(testSecret, 30*time.Minute)
	require.NoError(t, err)
	return m.WithClock(func() time.Time { return now })
}

func TestNewManager_RequiresSecret(t *testing.T) {
	t.Parallel()

	_, err := NewManager(nil, 30*time.Minute)
	assert.ErrorIs(t, err, ErrNoSigningKey)

	_, err = NewManager(testSecret, 0)
	assert.Error(t, err)
}

func TestIssue_SetsSubjectAndExpiry(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	m := newTestManager(t, now)
	subject := uuid.NewString()

	raw, exp, err := m.Issue(subject)
	require.NoError(t, err)
	require.NotEmpty(t, raw)
	assert.Equal(t, now.Add(30*time.Minute), exp)

	claims, err := m.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, subject, claims.Subject)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, exp, claims.ExpiresAt.Time, time.Second)
}

func TestIssue_EmptySubject(t *testing.T) {
	t.Parallel()

	m := newTestManager(t, time.Now())
	_, _, err := m.Issue("")
	assert.Error(t, err)
}

func TestParse_TTLWindow(t *testing.T) {
	t.Parallel()

	issuedAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	raw, _, err := newTestManager(t, issuedAt).Issue("user-1")
	require.NoError(t, err)

	_, err = newTestManager(t, issuedAt.Add(29*time.Minute)).Parse(raw)
	require.NoError(t, err)

	_, err = newTestManager(t, issuedAt.Add(31*time.Minute)).Parse(raw)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExpired)
	assert.NotErrorIs(t, err, ErrMalformed)
}

func TestParse_AnyTamperedByteIsMalformed(t *testing.T) {
	t.Parallel()

	m := newTestManager(t, time.Now())
	raw, _, err := m.Issue(uuid.NewString())
	require.NoError(t, err)

	for i := 0; i < len(raw); i++ {
		b := []byte(raw)
		if b[i] == 'A' {
			b[i] = 'B'
		} else {
			b[i] = 'A'
		}

		_, err := m.Parse(string(b))
		require.Error(t, err, "byte %d", i)
		assert.ErrorIs(t, err, ErrMalformed, "byte %d", i)
	}
}

func TestParse_WrongSecret(t *testing.T) {
	t.Parallel()

	raw, _, err := newTestManager(t, time.Now()).Issue("user-1")
	require.NoError(t, err)

	other, err := NewManager([]byte("another-secret"), time.Minute)
	require.NoError(t, err)

	_, err = other.Parse(raw)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestParse_RejectsOtherAlgorithmsAndShapes(t *testing.T) {
	t.Parallel()

	m := newTestManager(t, time.Now())
	exp := jwt.NewNumericDate(time.Now().Add(time.Hour))

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "u", ExpiresAt: exp}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{Subject: "u", ExpiresAt: exp}).
		SignedString(testSecret)
	require.NoError(t, err)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "u"}).
		SignedString(testSecret)
	require.NoError(t, err)

	noSub, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{ExpiresAt: exp}).
		SignedString(testSecret)
	require.NoError(t, err)

	for name, raw := range map[string]string{
		"empty":        "",
		"garbage":      "not-a-valid-jwt",
		"alg none":     none,
		"alg HS512":    hs512,
		"no exp":       noExp,
		"no subject":   noSub,
		"two segments": "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiJ1In0",
	} {
		_, err := m.Parse(raw)
		assert.ErrorIs(t, err, ErrMalformed, name)
	}
}
