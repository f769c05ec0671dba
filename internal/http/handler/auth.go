package handler

import "github.com/gofiber/fiber/v2"

// AuthSuccessMessage is the fixed body returned by GET /auth.
const AuthSuccessMessage = "User authenticated successfully!"

// Authenticate answers GET /auth. It reads nothing from the request and
// verifies no credentials.
//
// @Summary      Authentication check
// @Tags         auth
// @Produce      plain
// @Success      200  {string}  string  "User authenticated successfully!"
// @Failure      405  {object}  errorPayload
// @Router       /auth [get]
func Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
		return c.Status(fiber.StatusOK).SendString(AuthSuccessMessage)
	}
}
