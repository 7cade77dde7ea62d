package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/aryaseptiaw/giglink_be/internal/apperr"
)

// exposeInternalErrors is off by default; main switches it on outside
// production so local debugging sees the real failure text.
var exposeInternalErrors bool

func ExposeInternalErrors(on bool) {
	exposeInternalErrors = on
}

// fail maps a taxonomy error to its HTTP status and the standard envelope.
// Infrastructure errors are logged in full and redacted unless exposure is
// switched on.
func fail(c *fiber.Ctx, err error) error {
	status := apperr.HTTPStatus(err)
	msg := err.Error()

	if status >= 500 {
		log.Printf("%s %s failed: %v", c.Method(), c.Path(), err)
		if !exposeInternalErrors {
			msg = "internal server error"
		}
	}

	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"message": msg,
	})
}

func ok(c *fiber.Ctx, data any) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

func created(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"message": msg,
	})
}
