package serverutils

import (
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// JwtMiddleware extracts the authenticated user id from the bearer token.
// Authentication itself is owned by the external auth collaborator; this
// only verifies the signature and pulls out user_id for downstream handlers.
func JwtMiddleware(ctx *fiber.Ctx) error {
	authHeader := ctx.Get("Authorization")
	if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
		return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorBody{
			Error:   "UNAUTHORIZED",
			Message: "Missing token",
		})
	}
	tokenStr := authHeader[7:]

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorBody{
			Error:   "UNAUTHORIZED",
			Message: "Invalid token",
		})
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorBody{
			Error:   "UNAUTHORIZED",
			Message: "Invalid claims",
		})
	}

	ctx.Locals("user_id", claims["user_id"])
	return ctx.Next()
}
