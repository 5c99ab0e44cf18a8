package utils

import (
	"testing"

	"richman-tours/models/account"

	"github.com/stretchr/testify/require"
)

func TestIssueAndParseToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	user := &account.User{
		ID:       7,
		Username: "admin",
		IsStaff:  true,
		IsAdmin:  true,
	}

	token, err := IssueToken(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	require.Equal(t, "admin", claims["username"])

	roles, ok := claims["roles"].([]interface{})
	require.True(t, ok)
	require.Contains(t, roles, "staff")
	require.Contains(t, roles, "admin")
	require.NotContains(t, roles, "superuser")
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	_, err := ParseToken("not.a.token")
	require.Error(t, err)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret-one")
	user := &account.User{ID: 1, Username: "admin", IsStaff: true}
	token, err := IssueToken(user)
	require.NoError(t, err)

	t.Setenv("JWT_SECRET", "secret-two")
	_, err = ParseToken(token)
	require.Error(t, err)
}
