package jwtPkg

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func verifyApp() *fiber.App {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		token, err := VerifyTokenHeader(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).SendString(err.Error())
		}
		sub, err := Subject(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).SendString(err.Error())
		}
		return c.SendString(sub)
	})
	return app
}

func TestSignAndVerify(t *testing.T) {
	t.Setenv(SecretEnv, "test-secret")

	token, exp, err := Sign(map[string]interface{}{"sub": "cli"}, time.Hour)
	require.NoError(t, err)
	assert.Greater(t, exp, time.Now().Unix())

	req := httptest.NewRequest(fiber.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := verifyApp().Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestVerifyRejects(t *testing.T) {
	t.Setenv(SecretEnv, "test-secret")

	expired, _, err := Sign(map[string]interface{}{"sub": "cli"}, -time.Hour)
	require.NoError(t, err)

	tests := map[string]string{
		"missing header": "",
		"wrong scheme":   "Basic abc",
		"expired":        "Bearer " + expired,
		"garbage":        "Bearer not-a-token",
	}

	for name, header := range tests {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodGet, "/", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			resp, err := verifyApp().Test(req)
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		})
	}
}

func TestSign_RequiresSecret(t *testing.T) {
	t.Setenv(SecretEnv, "")
	_, _, err := Sign(nil, time.Hour)
	assert.ErrorIs(t, err, ErrSecretNotSet)
}
