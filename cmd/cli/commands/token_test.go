package commands

import (
	"bytes"
	"strings"
	"testing"

	jwtPkg "GridVision/pkg/jwt"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runToken(args ...string) (string, error) {
	cmd := NewTokenCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return strings.TrimSpace(out.String()), err
}

func TestToken_IssuesVerifiableToken(t *testing.T) {
	t.Setenv(jwtPkg.SecretEnv, "s3cret")

	raw, err := runToken("--sub", "mobile-app", "--ttl", "1h")
	require.NoError(t, err)

	token, err := jwt.Parse(raw, func(*jwt.Token) (interface{}, error) { return []byte("s3cret"), nil })
	require.NoError(t, err)

	sub, err := jwtPkg.Subject(token)
	require.NoError(t, err)
	assert.Equal(t, "mobile-app", sub)
}

func TestToken_Errors(t *testing.T) {
	t.Setenv(jwtPkg.SecretEnv, "")

	_, err := runToken("--sub", "cli")
	assert.ErrorIs(t, err, jwtPkg.ErrSecretNotSet)

	t.Setenv(jwtPkg.SecretEnv, "s3cret")
	_, err = runToken()
	assert.ErrorContains(t, err, "--sub")

	_, err = runToken("--sub", "cli", "--ttl", "0s")
	assert.ErrorContains(t, err, "--ttl")
}
