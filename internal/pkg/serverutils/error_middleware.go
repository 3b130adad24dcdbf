package serverutils

import (
	"errors"
	"log"

	"ai-caresupervisor-be/internal/constant"
	"ai-caresupervisor-be/pkg/scores"
	"ai-caresupervisor-be/pkg/supervisor/pipeline"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware maps the error taxonomy onto HTTP responses.
// Validation detail goes back to the caller; upstream and parse failures get
// a generic apology with internal detail only logged.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var appErr *AppError
		if errors.As(err, &appErr) {
			return ctx.Status(appErr.Code).JSON(ErrorBody{
				Error:   appErr.Kind,
				Message: appErr.Message,
			})
		}

		if errors.Is(err, pipeline.ErrUpstreamProvider) {
			log.Printf("[HTTP] upstream provider error: %v", err)
			return ctx.Status(fiber.StatusBadGateway).JSON(ErrorBody{
				Error:   KindUpstreamError,
				Message: constant.GenericFailureMessage,
			})
		}

		if errors.Is(err, scores.ErrMalformedAnalysis) {
			log.Printf("[HTTP] analysis parse error: %v", err)
			return ctx.Status(fiber.StatusBadGateway).JSON(ErrorBody{
				Error:   KindParseError,
				Message: constant.GenericFailureMessage,
			})
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorBody{
				Error:   KindInternalError,
				Message: fiberErr.Message,
			})
		}

		log.Printf("[HTTP] unhandled error: %v", err)
		return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorBody{
			Error:   KindInternalError,
			Message: constant.GenericFailureMessage,
		})
	}
}
