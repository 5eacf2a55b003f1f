package handlerUtil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"GridVision/pkg/response"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandle(t *testing.T) {
	logger, hook := test.NewNullLogger()
	h := New(logger)
	domainErr := response.NewError(http.StatusBadGateway, "vision model unavailable")

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{"domain error", domainErr, http.StatusBadGateway, "vision model unavailable"},
		{"wrapped domain error", domainErr.Wrap(errors.New("dial tcp: refused")), http.StatusBadGateway, "vision model unavailable"},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError, "An unexpected error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error {
				return h.Handle(c, "req-1", tt.err, c.Path(), "test")
			})

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			var body ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.False(t, body.OK)
			assert.Equal(t, tt.wantError, body.Error)
		})
	}

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "req-1", hook.LastEntry().Data["request_id"])
	assert.Equal(t, "req-1", hook.LastEntry().Data["trace_id"])
}
