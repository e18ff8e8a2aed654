package handlers

import (
	"ppv-marketplace/internal/domain/entities"
	"ppv-marketplace/pkg/errors"
	"ppv-marketplace/pkg/helper"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func backendParam(c *fiber.Ctx) (entities.Backend, error) {
	b, err := entities.ParseBackend(c.Params("backend"))
	if err != nil {
		return "", errors.ErrInvalidInput(err)
	}
	return b, nil
}

func videoParams(c *fiber.Ctx) (entities.Backend, uint64, error) {
	backend, err := backendParam(c)
	if err != nil {
		return "", 0, err
	}
	id, err := helper.ParseVideoID(c.Params("id"))
	if err != nil {
		return "", 0, errors.ErrInvalidInput(err)
	}
	return backend, id, nil
}

func txParam(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, errors.ErrInvalidInput(err)
	}
	return id, nil
}
