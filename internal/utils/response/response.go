package response

import (
	"errors"

	apperr "gigpay/internal/errors"

	"github.com/gofiber/fiber/v2"
)

func Success(c *fiber.Ctx, message string, data interface{}) error {
	return c.JSON(fiber.Map{
		"message": message,
		"data":    data,
	})
}

func Error(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": message,
	})
}

func BadRequest(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusBadRequest, message)
}

func ServerError(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusInternalServerError, message)
}

func Unauthorized(c *fiber.Ctx) error {
	return Error(c, fiber.StatusUnauthorized, "Unauthorized")
}

// FromError maps a domain error onto its HTTP status and body. The
// error code travels alongside the message so clients can branch
// without parsing prose.
func FromError(c *fiber.Ctx, err error) error {
	var de *apperr.DomainError
	if !errors.As(err, &de) {
		return ServerError(c, "internal error")
	}

	status := fiber.StatusInternalServerError
	switch de.Kind {
	case apperr.KindValidation:
		status = fiber.StatusBadRequest
	case apperr.KindAuthorization:
		status = fiber.StatusForbidden
	case apperr.KindNotFound:
		status = fiber.StatusNotFound
	case apperr.KindDuplicateOperation:
		status = fiber.StatusConflict
	case apperr.KindInsufficientBalance:
		status = fiber.StatusBadRequest
	case apperr.KindProviderDecline:
		status = fiber.StatusPaymentRequired
	case apperr.KindProviderTransient:
		status = fiber.StatusBadGateway
	}

	return c.Status(status).JSON(fiber.Map{
		"error": de.Message,
		"code":  de.Code,
	})
}
