package token_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/classora/classora-auth/internal/token"
)

func TestSignAndValidate(t *testing.T) {
	gen := token.NewGenerator([]byte("test-secret-0123456789abcdef0123456789"), time.Minute)

	raw, err := gen.Sign("user-1", token.SessionClaims{Name: "Ada", Role: "teacher", TenantID: "S1"})
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	std, custom, err := gen.Validate(raw)
	require.NoError(t, err)
	require.Equal(t, "user-1", std.Subject)
	require.Equal(t, "Ada", custom.Name)
	require.Equal(t, "teacher", custom.Role)
	require.Equal(t, "S1", custom.TenantID)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	gen := token.NewGenerator([]byte("test-secret-0123456789abcdef0123456789"), time.Minute)
	other := token.NewGenerator([]byte("other-secret-0123456789abcdef0123456789"), time.Minute)

	raw, err := gen.Sign("user-1", token.SessionClaims{})
	require.NoError(t, err)

	_, _, err = other.Validate(raw)
	require.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestValidateRejectsExpired(t *testing.T) {
	gen := token.NewGenerator([]byte("test-secret-0123456789abcdef0123456789"), -time.Minute)

	raw, err := gen.Sign("user-1", token.SessionClaims{})
	require.NoError(t, err)

	_, _, err = gen.Validate(raw)
	require.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestValidateRejectsGarbage(t *testing.T) {
	gen := token.NewGenerator([]byte("test-secret-0123456789abcdef0123456789"), time.Minute)

	_, _, err := gen.Validate("not-a-token")
	require.ErrorIs(t, err, token.ErrInvalidToken)
}
