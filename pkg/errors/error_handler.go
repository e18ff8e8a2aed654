package errors

import (
	stderrors "errors"

	"ppv-marketplace/pkg/errors/i18n"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// StatusFor maps an error code to the HTTP status the API answers with.
func StatusFor(code string) int {
	switch code {
	case CodeNotFound:
		return fiber.StatusNotFound
	case CodeInvalidInput:
		return fiber.StatusBadRequest
	case CodeNotAuthorized:
		return fiber.StatusForbidden
	case CodeUserDeclined:
		return fiber.StatusConflict
	case CodeRejected:
		return fiber.StatusUnprocessableEntity
	case CodeTimedOut:
		return fiber.StatusAccepted
	case CodeNetworkUnavailable, CodeLookupFailed:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

func HandleError(c *fiber.Ctx, log *zap.Logger, err error) error {
	if err == nil {
		return nil
	}

	var ce *ChainError
	if stderrors.As(err, &ce) {
		if ce.Err != nil {
			log.Warn("request failed", zap.String("code", ce.Code), zap.Error(ce.Err))
		}
		return c.Status(StatusFor(ce.Code)).JSON(fiber.Map{
			"error":   ce.Code,
			"message": i18n.T(ce.Code),
		})
	}

	log.Error("unexpected error", zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error":   CodeInternal,
		"message": i18n.T(CodeInternal),
	})
}
