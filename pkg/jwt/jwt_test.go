package jwt

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	m := NewManager("secret", time.Hour)
	id := uuid.New()

	token, err := m.GenerateToken(id, "a@b.test", "Ann", "VENDOR", []string{"product:create"}, "v1")
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, id, claims.UserID)
	assert.Equal(t, "VENDOR", claims.RoleCode)
	assert.Equal(t, []string{"product:create"}, claims.Privileges)
	assert.Equal(t, "v1", claims.TokenVersion)
}

func TestValidateRejects(t *testing.T) {
	m := NewManager("secret", time.Hour)
	other := NewManager("other-secret", time.Hour)
	expired := NewManager("secret", time.Nanosecond)

	foreign, err := other.GenerateToken(uuid.New(), "a@b.test", "Ann", "", nil, "v1")
	require.NoError(t, err)

	stale, err := expired.GenerateToken(uuid.New(), "a@b.test", "Ann", "", nil, "v1")
	require.NoError(t, err)
	time.Sleep(1100 * time.Millisecond)

	tests := map[string]string{
		"garbage":      "not-a-token",
		"wrong secret": foreign,
		"expired":      stale,
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := m.ValidateToken(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}

	_, err = m.ValidateToken("")
	assert.ErrorIs(t, err, ErrMissingToken)
}
