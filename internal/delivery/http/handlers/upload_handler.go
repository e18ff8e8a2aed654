package handlers

import (
	"mime/multipart"

	"ppv-marketplace/internal/delivery/http/middleware"
	"ppv-marketplace/internal/domain/dto"
	"ppv-marketplace/internal/domain/mapper"
	"ppv-marketplace/internal/usecases"
	"ppv-marketplace/pkg/errors"
	"ppv-marketplace/pkg/helper"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type UploadHandler struct {
	uploads usecases.UploadService
	log     *zap.Logger
}

func NewUploadHandler(uploads usecases.UploadService, log *zap.Logger) *UploadHandler {
	return &UploadHandler{uploads: uploads, log: log}
}

// RegisterVideo
//
// @Summary      Upload and register a video
// @Description  Pins the video and optional thumbnail to IPFS and prepares the registration call.
// @Tags         Upload
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        backend       path      string true  "evm or ton"
// @Param        video         formData  file   true  "Video file"
// @Param        thumbnail     formData  file   false "Cover image"
// @Param        title         formData  string false "Title"
// @Param        price         formData  string true  "Price in whole coins"
// @Param        display_time  formData  int    false "Seconds of access per purchase"
// @Success      201           {object}  dto.PreparedTxResponse
// @Failure      400           {object}  dto.ErrorResponse
// @Router       /{backend}/videos [post]
func (h *UploadHandler) RegisterVideo(c *fiber.Ctx) error {
	backend, err := backendParam(c)
	if err != nil {
		return errors.HandleError(c, h.log, err)
	}
	var form dto.RegisterVideoRequestDTO
	if err := c.BodyParser(&form); err != nil {
		return errors.HandleError(c, h.log, errors.ErrInvalidInput(err))
	}
	price, err := helper.ParseAmount(form.Price, backend.Decimals())
	if err != nil {
		return errors.HandleError(c, h.log, errors.ErrInvalidInput(err))
	}

	videoHeader, err := c.FormFile("video")
	if err != nil {
		return errors.HandleError(c, h.log, errors.ErrInvalidInput(err))
	}
	video, err := videoHeader.Open()
	if err != nil {
		return errors.HandleError(c, h.log, errors.ErrInvalidInput(err))
	}
	defer video.Close()

	req := usecases.UploadRequest{
		Backend:     backend,
		Sender:      middleware.Viewer(c),
		Title:       form.Title,
		Price:       price,
		DisplayTime: form.DisplayTime,
		VideoName:   videoHeader.Filename,
		VideoType:   videoHeader.Header.Get(fiber.HeaderContentType),
		VideoSize:   videoHeader.Size,
		Video:       video,
	}
	if thumbHeader, err := c.FormFile("thumbnail"); err == nil {
		var thumb multipart.File
		if thumb, err = thumbHeader.Open(); err != nil {
			return errors.HandleError(c, h.log, errors.ErrInvalidInput(err))
		}
		defer thumb.Close()
		req.ThumbName, req.Thumbnail = thumbHeader.Filename, thumb
	}

	prepared, err := h.uploads.Upload(c.UserContext(), req)
	if err != nil {
		return errors.HandleError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(mapper.PreparedToDTO(prepared.Tx, prepared.Payload, prepared.ContentHash))
}
