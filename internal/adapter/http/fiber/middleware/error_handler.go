package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/sigem-energia/internal/domain"
)

// ErrorHandler maps the domain error taxonomy to HTTP status codes: bad
// caller input is 400, an unreachable upstream is 502, everything else 500.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError

		switch {
		case errors.Is(err, domain.ErrMalformedInput):
			code = fiber.StatusBadRequest
		case errors.Is(err, domain.ErrSourceUnavailable):
			code = fiber.StatusBadGateway
		default:
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
		}

		if code == fiber.StatusInternalServerError {
			log.Error("Internal Server Error", zap.Error(err), zap.String("path", c.Path()))
		}

		return c.Status(code).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
}
