package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/workhive/workhive_be/internal/apperr"
)

// getAuth reads the authenticated user id attached by the JWT middleware.
func getAuth(c *fiber.Ctx) (uuid.UUID, error) {
	raw, _ := c.Locals("userId").(string)
	if raw == "" {
		return uuid.Nil, fiber.ErrUnauthorized
	}
	uid, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "invalid user id")
	}
	return uid, nil
}

func paramUUID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

// httpStatus maps the domain error taxonomy onto HTTP status codes.
func httpStatus(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		return fiber.StatusNotFound
	case apperr.KindForbidden:
		return fiber.StatusForbidden
	case apperr.KindInvalidState, apperr.KindInvalidTransition:
		return fiber.StatusConflict
	case apperr.KindInvalidRange:
		return fiber.StatusBadRequest
	case apperr.KindPersistence:
		return fiber.StatusInternalServerError
	default:
		return fiber.StatusInternalServerError
	}
}

// fail renders a domain error in the standard envelope. Persistence causes
// are not leaked to the client.
func fail(c *fiber.Ctx, err error) error {
	if fe, ok := err.(*fiber.Error); ok {
		return c.Status(fe.Code).JSON(fiber.Map{
			"success": false,
			"message": fe.Message,
		})
	}
	status := httpStatus(err)
	msg := err.Error()
	if apperr.KindOf(err) == apperr.KindPersistence {
		msg = "internal server error"
	}
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"message": msg,
		"code":    apperr.KindOf(err).String(),
	})
}

func ok(c *fiber.Ctx, data interface{}) error {
	return c.JSON(fiber.Map{"success": true, "data": data})
}

func created(c *fiber.Ctx, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": data})
}
