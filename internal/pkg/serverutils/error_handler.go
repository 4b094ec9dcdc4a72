package serverutils

import (
	"github.com/gofiber/fiber/v2"

	"knowledge-assistant-be/pkg/apperr"
)

// ErrorHandlerMiddleware maps typed errors onto HTTP status codes.
// ValidationError is the only taxonomy kind surfaced synchronously to
// callers; everything else from the pipeline is handled at the job
// boundary and never reaches here.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		switch apperr.KindOf(err) {
		case apperr.KindValidation:
			return ctx.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse(fiber.StatusUnprocessableEntity, err.Error()))
		case apperr.KindNotFound:
			return ctx.Status(fiber.StatusNotFound).JSON(ErrorResponse(fiber.StatusNotFound, err.Error()))
		}

		if fe, ok := err.(*fiber.Error); ok {
			return ctx.Status(fe.Code).JSON(ErrorResponse(fe.Code, fe.Message))
		}

		return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse(fiber.StatusInternalServerError, "Internal server error"))
	}
}
