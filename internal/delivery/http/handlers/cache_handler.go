package handlers

import (
	"ppv-marketplace/internal/usecases"
	"ppv-marketplace/pkg/constants"
	"ppv-marketplace/pkg/errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type CacheHandler struct {
	entitlement usecases.EntitlementService
	log         *zap.Logger
}

func NewCacheHandler(entitlement usecases.EntitlementService, log *zap.Logger) *CacheHandler {
	return &CacheHandler{entitlement: entitlement, log: log}
}

// ResetCache
//
// @Summary      Reset the entitlement cache
// @Description  Drops the advisory cache only. Grants recorded on chain and in the store are kept.
// @Tags         Cache
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]string
// @Router       /cache [delete]
func (h *CacheHandler) ResetCache(c *fiber.Ctx) error {
	if err := h.entitlement.ResetCache(c.UserContext()); err != nil {
		return errors.HandleError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"status": constants.StatusOK})
}
