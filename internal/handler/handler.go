package handler

import (
	"errors"
	"log"

	"go-marketplace-api/internal/service"
	"go-marketplace-api/pkg/apperror"
	"go-marketplace-api/pkg/pagination"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

var (
	errInvalidJSON = apperror.BadRequest("Invalid JSON")
	errInvalidID   = apperror.BadRequest("Invalid ID")
)

// fail renders err with the status it carries. Untyped errors are logged
// and hidden behind a 500.
func fail(c *fiber.Ctx, err error) error {
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return c.Status(appErr.Status).JSON(fiber.Map{"error": err.Error()})
	}
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(fiber.Map{"error": fiberErr.Message})
	}
	log.Printf("Error: %s %s: %v", c.Method(), c.Path(), err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error"})
}

// ErrorHandler is the fiber fallback for errors returned by handlers and
// middleware.
func ErrorHandler(c *fiber.Ctx, err error) error {
	return fail(c, err)
}

func ok(c *fiber.Ctx, message string, data interface{}) error {
	return c.JSON(fiber.Map{"message": message, "data": data})
}

func created(c *fiber.Ctx, message string, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": message, "data": data})
}

func page[T any](c *fiber.Ctx, list *service.List[T], p pagination.Params) error {
	items := list.Items
	if items == nil {
		items = []T{}
	}
	return c.JSON(fiber.Map{"data": items, "meta": p.Meta(list.Total)})
}

// currentActor builds the service actor from the locals set by RequireAuth.
func currentActor(c *fiber.Ctx) service.Actor {
	a, _ := optionalActor(c)
	if a == nil {
		return service.Actor{}
	}
	return *a
}

// optionalActor returns nil for anonymous requests.
func optionalActor(c *fiber.Ctx) (*service.Actor, bool) {
	raw, ok := c.Locals("user_id").(string)
	if !ok {
		return nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, false
	}
	name, _ := c.Locals("user_name").(string)
	privileges, _ := c.Locals("user_privileges").([]string)
	return &service.Actor{UserID: id, Name: name, Privileges: privileges}, true
}

func paramID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, errInvalidID
	}
	return id, nil
}

func queryID(c *fiber.Ctx, name string) (*uuid.UUID, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, apperror.BadRequest("Invalid " + name)
	}
	return &id, nil
}

func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return errInvalidJSON
	}
	return nil
}
