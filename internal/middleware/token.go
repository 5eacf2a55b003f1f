package middleware

import (
	"os"

	"GridVision/pkg/handlerUtil"
	jwtPkg "GridVision/pkg/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const ClientKey = "client"

// NewTokenMiddleware requires a bearer token signed with API_TOKEN_SECRET.
// When the secret is unset the API is open and requests pass through.
func (m *middleware) NewTokenMiddleware(ctx *fiber.Ctx) error {
	if os.Getenv(jwtPkg.SecretEnv) == "" {
		return ctx.Next()
	}

	unauthorized := func(reason string) error {
		m.log.WithFields(logrus.Fields{
			"request_id": m.GetRequestID(ctx),
			"path":       ctx.Path(),
			"client_ip":  ctx.IP(),
			"error":      reason,
		}).Debug("Token verification failed")
		return handlerUtil.New(m.log).HandleUnauthorized(ctx, m.GetRequestID(ctx), "Unauthorized, access token invalid or expired")
	}

	token, err := jwtPkg.VerifyTokenHeader(ctx)
	if err != nil {
		return unauthorized(err.Error())
	}

	client, err := jwtPkg.Subject(token)
	if err != nil {
		return unauthorized(err.Error())
	}

	ctx.Locals(ClientKey, client)
	return ctx.Next()
}
