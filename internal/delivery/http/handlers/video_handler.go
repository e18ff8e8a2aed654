package handlers

import (
	"fmt"

	"ppv-marketplace/internal/delivery/http/middleware"
	"ppv-marketplace/internal/domain/dto"
	"ppv-marketplace/internal/domain/mapper"
	"ppv-marketplace/internal/usecases"
	"ppv-marketplace/pkg/errors"
	"ppv-marketplace/pkg/file"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type VideoHandler struct {
	catalog     usecases.CatalogService
	entitlement usecases.EntitlementService
	gateway     string
	log         *zap.Logger
}

func NewVideoHandler(catalog usecases.CatalogService, entitlement usecases.EntitlementService, gateway string, log *zap.Logger) *VideoHandler {
	return &VideoHandler{catalog: catalog, entitlement: entitlement, gateway: gateway, log: log}
}

// ListVideos
//
// @Summary      List videos
// @Description  Lists every video of one backend. Served from the catalog mirror with stale=true when the chain is unreachable.
// @Tags         Videos
// @Produce      json
// @Param        backend  path      string true "evm or ton"
// @Success      200      {object}  dto.VideoListResponse
// @Failure      400      {object}  dto.ErrorResponse
// @Failure      502      {object}  dto.ErrorResponse
// @Router       /{backend}/videos [get]
func (h *VideoHandler) ListVideos(c *fiber.Ctx) error {
	backend, err := backendParam(c)
	if err != nil {
		return errors.HandleError(c, h.log, err)
	}
	videos, stale, err := h.catalog.List(c.UserContext(), backend)
	if err != nil {
		return errors.HandleError(c, h.log, err)
	}
	out := dto.VideoListResponse{Backend: string(backend), Videos: make([]dto.VideoDTO, 0, len(videos)), Stale: stale}
	for _, v := range videos {
		out.Videos = append(out.Videos, mapper.VideoToDTO(v, h.gateway))
	}
	return c.JSON(out)
}

// GetVideo
//
// @Summary      Get video
// @Tags         Videos
// @Produce      json
// @Param        backend  path      string true "evm or ton"
// @Param        id       path      int    true "Video id"
// @Success      200      {object}  dto.VideoDTO
// @Failure      404      {object}  dto.ErrorResponse
// @Router       /{backend}/videos/{id} [get]
func (h *VideoHandler) GetVideo(c *fiber.Ctx) error {
	backend, id, err := videoParams(c)
	if err != nil {
		return errors.HandleError(c, h.log, err)
	}
	v, err := h.catalog.Get(c.UserContext(), backend, id)
	if err != nil {
		return errors.HandleError(c, h.log, err)
	}
	return c.JSON(mapper.VideoToDTO(*v, h.gateway))
}

// Access
//
// @Summary      Check view access
// @Description  Answers whether the session wallet (or the viewer query parameter) may play the video. The playback URL is only returned when access is granted.
// @Tags         Videos
// @Produce      json
// @Param        backend  path      string true  "evm or ton"
// @Param        id       path      int    true  "Video id"
// @Param        viewer   query     string false "Viewer address when no session is present"
// @Success      200      {object}  dto.AccessResponse
// @Failure      502      {object}  dto.ErrorResponse "Lookup failed"
// @Router       /{backend}/videos/{id}/access [get]
func (h *VideoHandler) Access(c *fiber.Ctx) error {
	backend, id, err := videoParams(c)
	if err != nil {
		return errors.HandleError(c, h.log, err)
	}
	viewer := middleware.Viewer(c)
	if viewer == "" {
		viewer = c.Query("viewer")
	}

	video, err := h.catalog.Get(c.UserContext(), backend, id)
	if err != nil {
		if !errors.HasCode(err, errors.CodeNotFound) && !errors.HasCode(err, errors.CodeInvalidInput) {
			err = errors.ErrLookupFailed(fmt.Errorf("reading video %d: %w", id, err))
		}
		return errors.HandleError(c, h.log, err)
	}
	ok, err := h.entitlement.CanViewVideo(c.UserContext(), *video, viewer)
	if err != nil {
		return errors.HandleError(c, h.log, err)
	}
	out := dto.AccessResponse{VideoID: id, Viewer: viewer, CanView: ok}
	if ok {
		out.VideoURL = file.GatewayURL(h.gateway, video.ContentHash)
	}
	return c.JSON(out)
}
