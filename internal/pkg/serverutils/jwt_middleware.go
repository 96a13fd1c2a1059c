package serverutils

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const accountIDLocal = "account_id"

var (
	ErrMissingToken = fiber.NewError(fiber.StatusUnauthorized, "Missing token")
	ErrInvalidToken = fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
)

// IssueToken signs an HS256 token carrying the account id.
func IssueToken(secret string, accountID uuid.UUID, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("jwt secret is not configured")
	}
	claims := jwt.MapClaims{
		"account_id": accountID.String(),
		"iat":        time.Now().Unix(),
		"exp":        time.Now().Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// JwtMiddleware authenticates HS256 bearer tokens. An empty secret rejects
// every request.
func JwtMiddleware(secret string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if secret == "" {
			return ErrInvalidToken
		}
		authHeader := ctx.Get("Authorization")
		if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
			return ErrMissingToken
		}
		tokenStr := authHeader[7:]

		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			return ErrInvalidToken
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return ErrInvalidToken
		}
		raw, _ := claims["account_id"].(string)
		accountID, err := uuid.Parse(raw)
		if err != nil {
			return ErrInvalidToken
		}

		ctx.Locals(accountIDLocal, accountID)
		return ctx.Next()
	}
}

// AccountID returns the account authenticated by JwtMiddleware.
func AccountID(ctx *fiber.Ctx) (uuid.UUID, bool) {
	id, ok := ctx.Locals(accountIDLocal).(uuid.UUID)
	return id, ok
}
