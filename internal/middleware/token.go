package middleware

import (
	"WakeGuard/internal/entity"
	jwtPkg "WakeGuard/pkg/jwt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

func (m *middleware) NewTokenMiddleware(ctx *fiber.Ctx) error {
	authHeader := ctx.Get("Authorization")
	fields := logrus.Fields{
		"path":      ctx.Path(),
		"client_ip": ctx.IP(),
	}

	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		m.log.WithFields(fields).Warn("Authorization header missing or malformed")
		return unauthorized(ctx)
	}

	userToken, err := jwtPkg.VerifyTokenHeader(ctx, m.tokenSecret)
	if err != nil {
		fields["error"] = err.Error()
		m.log.WithFields(fields).Warn("Token verification failed")
		return unauthorized(ctx)
	}

	claims, ok := userToken.Claims.(jwt.MapClaims)
	if !ok {
		m.log.WithFields(fields).Warn("Invalid token claims")
		return unauthorized(ctx)
	}

	id, _ := claims["id"].(string)
	username, _ := claims["username"].(string)
	if id == "" {
		m.log.WithFields(fields).Warn("Token claims are missing the viewer id")
		return unauthorized(ctx)
	}

	ctx.Locals("viewer", entity.ViewerData{
		ID:       id,
		Username: username,
	})

	m.log.WithFields(logrus.Fields{
		"path":      ctx.Path(),
		"viewer_id": id,
	}).Debug("Authentication successful")
	return ctx.Next()
}

func unauthorized(ctx *fiber.Ctx) error {
	return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": "Unauthorized, access token invalid or expired",
	})
}
