package jwtPkg

import (
	"WakeGuard/internal/entity"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

var ErrSecretNotConfigured = errors.New("JWT secret not configured")

// Sign issues an HS256 token carrying data as claims.
func Sign(data map[string]interface{}, expiresIn time.Duration, secret string) (string, int64, error) {
	if secret == "" {
		return "", 0, ErrSecretNotConfigured
	}

	expiredAt := time.Now().Add(expiresIn).Unix()

	claims := jwt.MapClaims{}
	claims["exp"] = expiredAt
	claims["authorization"] = true

	for i, v := range data {
		claims[i] = v
	}

	to := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	accessToken, err := to.SignedString([]byte(secret))
	if err != nil {
		logrus.WithError(err).Error("Failed to sign token")
		return "", 0, err
	}

	return accessToken, expiredAt, nil
}

func VerifyTokenHeader(c *fiber.Ctx, secret string) (*jwt.Token, error) {
	log := logrus.WithField("func", "VerifyTokenHeader")

	header := c.Get("Authorization")
	if header == "" {
		return nil, errors.New("empty Authorization header")
	}

	parts := strings.Split(header, "Bearer ")
	if len(parts) != 2 {
		log.WithField("header_parts", len(parts)).Debug("Invalid Authorization format")
		return nil, errors.New("invalid Authorization format")
	}

	accessToken := strings.TrimSpace(parts[1])
	if accessToken == "" {
		return nil, errors.New("empty token")
	}

	if secret == "" {
		log.Error("JWT_ACCESS_TOKEN_SECRET is not set")
		return nil, ErrSecretNotConfigured
	}

	token, err := jwt.Parse(accessToken, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		log.WithError(err).Debug("Failed to parse JWT token")
		return nil, err
	}

	return token, nil
}

func GetViewerData(c *fiber.Ctx) (entity.ViewerData, error) {
	viewer, ok := c.Locals("viewer").(entity.ViewerData)
	if !ok {
		return entity.ViewerData{}, fiber.ErrUnauthorized
	}

	return viewer, nil
}
