package jwtPkg

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func verifyApp(secret string) *fiber.App {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		token, err := VerifyTokenHeader(c, secret)
		if err != nil {
			return c.SendStatus(fiber.StatusUnauthorized)
		}
		claims := token.Claims.(jwt.MapClaims)
		return c.SendString(claims["id"].(string))
	})
	return app
}

func TestSignAndVerify(t *testing.T) {
	token, exp, err := Sign(map[string]interface{}{"id": "viewer-1"}, time.Minute, "secret")
	require.NoError(t, err)
	assert.Greater(t, exp, time.Now().Unix())

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := verifyApp("secret").Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, _, err := Sign(map[string]interface{}{"id": "viewer-1"}, time.Minute, "secret")
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := verifyApp("other").Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestVerifyRejectsMissingHeader(t *testing.T) {
	resp, err := verifyApp("secret").Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestSignWithoutSecret(t *testing.T) {
	_, _, err := Sign(nil, time.Minute, "")
	assert.ErrorIs(t, err, ErrSecretNotConfigured)
}
