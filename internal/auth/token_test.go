package auth

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk/internal/domain"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager("secret", 30)
	fixed := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	tm.now = func() time.Time { return fixed }

	token, exp, err := tm.GenerateToken(&domain.User{ID: "u1", Email: "Ann@Example.com", DisplayName: "Ann"})
	require.NoError(t, err)
	assert.Equal(t, fixed.Add(30*time.Minute), exp)

	identity, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", identity.Subject)
	assert.Equal(t, "ann@example.com", identity.Email)
	assert.Equal(t, "Ann", identity.Name)
	assert.True(t, identity.ExpiresAt.Equal(exp))
}

func TestTokenManager_Rejects(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager("secret", 1)
	start := time.Now()
	tm.now = func() time.Time { return start }
	token, _, err := tm.GenerateToken(&domain.User{ID: "u1"})
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		t.Parallel()
		later := NewTokenManager("secret", 1)
		later.now = func() time.Time { return start.Add(2 * time.Minute) }
		_, err := later.ParseToken(token)
		require.Error(t, err)
	})

	t.Run("wrong secret", func(t *testing.T) {
		t.Parallel()
		_, err := NewTokenManager("other", 1).ParseToken(token)
		require.Error(t, err)
	})

	t.Run("wrong algorithm", func(t *testing.T) {
		t.Parallel()
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: "u1", ExpiresAt: jwt.NewNumericDate(start.Add(time.Hour))},
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = tm.ParseToken(unsigned)
		require.Error(t, err)
	})

	t.Run("missing subject", func(t *testing.T) {
		t.Parallel()
		_, _, err := tm.GenerateToken(&domain.User{})
		require.Error(t, err)
	})
}

func TestPassword_HashAndCompare(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("hunter22", 4)
	require.NoError(t, err)
	require.NoError(t, ComparePassword(hash, "hunter22"))
	require.Error(t, ComparePassword(hash, "wrong"))
}

func TestBearerToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer  abc ", "abc", true},
		{"", "", false},
		{"Basic abc", "", false},
		{"Bearer ", "", false},
	}
	for _, tt := range tests {
		got, err := bearerToken(tt.header)
		if tt.ok {
			require.NoError(t, err, tt.header)
			assert.Equal(t, tt.want, got)
		} else {
			require.Error(t, err, tt.header)
		}
	}
}
