package handlers

import (
	"fmt"

	"ppv-marketplace/internal/delivery/http/middleware"
	"ppv-marketplace/internal/domain/dto"
	"ppv-marketplace/internal/domain/entities"
	"ppv-marketplace/internal/domain/mapper"
	"ppv-marketplace/internal/usecases"
	"ppv-marketplace/pkg/errors"
	"ppv-marketplace/pkg/helper"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// TransactionHandler prepares payloads for the caller's own wallet; the
// server never signs on a viewer's behalf.
type TransactionHandler struct {
	txs usecases.TransactionService
	log *zap.Logger
}

func NewTransactionHandler(txs usecases.TransactionService, log *zap.Logger) *TransactionHandler {
	return &TransactionHandler{txs: txs, log: log}
}

func (h *TransactionHandler) prepare(c *fiber.Ctx, kind entities.Kind, fill func(*usecases.PrepareRequest) error) error {
	backend, id, err := videoParams(c)
	if err != nil {
		return errors.HandleError(c, h.log, err)
	}
	req := usecases.PrepareRequest{Kind: kind, Backend: backend, VideoID: id, Sender: middleware.Viewer(c)}
	if fill != nil {
		if err := fill(&req); err != nil {
			return errors.HandleError(c, h.log, err)
		}
	}
	prepared, err := h.txs.Prepare(c.UserContext(), req)
	if err != nil {
		return errors.HandleError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(mapper.PreparedToDTO(prepared.Tx, prepared.Payload, ""))
}

// Purchase
//
// @Summary      Prepare a pay-per-view purchase
// @Description  Builds the payToView call carrying the video price as value. Sign and send it, then report the hash to /transactions/{id}/submitted.
// @Tags         Transactions
// @Produce      json
// @Security     BearerAuth
// @Param        backend  path      string true "evm or ton"
// @Param        id       path      int    true "Video id"
// @Success      201      {object}  dto.PreparedTxResponse
// @Failure      422      {object}  dto.ErrorResponse "Video inactive"
// @Router       /{backend}/videos/{id}/purchase [post]
func (h *TransactionHandler) Purchase(c *fiber.Ctx) error {
	return h.prepare(c, entities.KindPayToView, nil)
}

// Withdraw
//
// @Summary      Prepare a withdrawal of earnings
// @Tags         Transactions
// @Produce      json
// @Security     BearerAuth
// @Param        backend  path      string true "evm or ton"
// @Param        id       path      int    true "Video id"
// @Success      201      {object}  dto.PreparedTxResponse
// @Failure      403      {object}  dto.ErrorResponse "Not the uploader"
// @Router       /{backend}/videos/{id}/withdraw [post]
func (h *TransactionHandler) Withdraw(c *fiber.Ctx) error {
	return h.prepare(c, entities.KindWithdraw, nil)
}

// ToggleActive
//
// @Summary      Prepare an active flag flip
// @Tags         Transactions
// @Produce      json
// @Security     BearerAuth
// @Param        backend  path      string true "evm or ton"
// @Param        id       path      int    true "Video id"
// @Success      201      {object}  dto.PreparedTxResponse
// @Failure      403      {object}  dto.ErrorResponse "Not the uploader"
// @Router       /{backend}/videos/{id}/toggle [post]
func (h *TransactionHandler) ToggleActive(c *fiber.Ctx) error {
	return h.prepare(c, entities.KindToggleActive, nil)
}

// UpdateVideo
//
// @Summary      Prepare a metadata update
// @Tags         Transactions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        backend  path      string                     true "evm or ton"
// @Param        id       path      int                        true "Video id"
// @Param        body     body      dto.UpdateVideoRequestDTO  true "New metadata, price in whole coins"
// @Success      201      {object}  dto.PreparedTxResponse
// @Failure      403      {object}  dto.ErrorResponse "Not the uploader"
// @Router       /{backend}/videos/{id} [put]
func (h *TransactionHandler) UpdateVideo(c *fiber.Ctx) error {
	return h.prepare(c, entities.KindUpdateMetadata, func(req *usecases.PrepareRequest) error {
		var body dto.UpdateVideoRequestDTO
		if err := c.BodyParser(&body); err != nil {
			return errors.ErrInvalidInput(err)
		}
		price, err := helper.ParseAmount(body.Price, req.Backend.Decimals())
		if err != nil {
			return errors.ErrInvalidInput(err)
		}
		req.Title, req.Description, req.Price = body.Title, body.Description, price
		return nil
	})
}

// Submitted
//
// @Summary      Report a sent transaction
// @Description  Records the hash returned by the wallet and queues confirmation polling.
// @Tags         Transactions
// @Accept       json
// @Produce      json
// @Param        id    path      string                   true "Transaction id"
// @Param        body  body      dto.SubmittedRequestDTO  true "Hash"
// @Success      202   {object}  dto.TransactionStatusResponse
// @Failure      403   {object}  dto.ErrorResponse "Prepared for another wallet"
// @Failure      422   {object}  dto.ErrorResponse "Already submitted or expired"
// @Router       /transactions/{id}/submitted [post]
func (h *TransactionHandler) Submitted(c *fiber.Ctx) error {
	id, err := txParam(c)
	if err != nil {
		return errors.HandleError(c, h.log, err)
	}
	var body dto.SubmittedRequestDTO
	if err := c.BodyParser(&body); err != nil {
		return errors.HandleError(c, h.log, errors.ErrInvalidInput(err))
	}
	tx, err := h.txs.MarkSubmitted(c.UserContext(), id, middleware.Viewer(c), body.TxHash)
	if err != nil {
		return errors.HandleError(c, h.log, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(mapper.PendingToDTO(tx, nil))
}

// Status
//
// @Summary      Transaction status
// @Tags         Transactions
// @Produce      json
// @Param        id   path      string true "Transaction id"
// @Success      200  {object}  dto.TransactionStatusResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /transactions/{id} [get]
func (h *TransactionHandler) Status(c *fiber.Ctx) error {
	id, err := txParam(c)
	if err != nil {
		return errors.HandleError(c, h.log, err)
	}
	tx, err := h.txs.Status(c.UserContext(), id)
	if err != nil {
		return errors.HandleError(c, h.log, err)
	}
	if viewer := middleware.Viewer(c); viewer != "" && tx.Sender != "" && !entities.SameAddress(viewer, tx.Sender) {
		return errors.HandleError(c, h.log, errors.ErrNotAuthorized(fmt.Errorf("transaction %s belongs to another wallet", id)))
	}
	return c.JSON(mapper.PendingToDTO(tx, nil))
}
