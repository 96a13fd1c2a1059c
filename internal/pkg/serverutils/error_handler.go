package serverutils

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"docqa-be/internal/pkg/logger"
	"docqa-be/pkg/rag"
)

// statusCoder is implemented by service errors that know their HTTP status.
type statusCoder interface {
	StatusCode() int
}

var kindStatus = map[rag.Kind]int{
	rag.KindNotReady:   fiber.StatusConflict,
	rag.KindExtraction: fiber.StatusUnprocessableEntity,
	rag.KindEmbedding:  fiber.StatusBadGateway,
	rag.KindGeneration: fiber.StatusBadGateway,
	rag.KindSearch:     fiber.StatusInternalServerError,
}

// StatusFor maps err to the status code and message sent to the client.
func StatusFor(err error) (int, string) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return fiber.StatusBadRequest, validationMessage(validationErrs)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code, fiberErr.Message
	}

	var coded statusCoder
	if errors.As(err, &coded) {
		return coded.StatusCode(), err.Error()
	}

	if kind := rag.KindOf(err); kind != "" {
		if status, ok := kindStatus[kind]; ok {
			return status, err.Error()
		}
	}

	return fiber.StatusInternalServerError, "Internal server error"
}

// NewErrorHandler builds the fiber.Config ErrorHandler. Server-side failures
// are logged with their full cause.
func NewErrorHandler(log logger.ILogger) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		status, message := StatusFor(err)
		if status >= fiber.StatusInternalServerError && log != nil {
			log.Error("HTTP", "request failed", map[string]interface{}{
				"method": ctx.Method(),
				"path":   ctx.Path(),
				"status": status,
				"error":  err.Error(),
			})
		}
		return ctx.Status(status).JSON(ErrorResponse(message))
	}
}

// ErrorHandlerMiddleware converts handler errors into responses before the
// outer middleware (tracing, cors) sees them.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	handle := NewErrorHandler(log)
	return func(ctx *fiber.Ctx) error {
		if err := ctx.Next(); err != nil {
			return handle(ctx, err)
		}
		return nil
	}
}
