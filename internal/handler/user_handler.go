package handler

import (
	"go-marketplace-api/internal/service"
	"go-marketplace-api/pkg/pagination"

	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// CreateUser handles user creation
// POST /api/v1/users
func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var req service.CreateUserRequest
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}

	user, err := h.userService.CreateUser(&req, currentActor(c).Audit())
	if err != nil {
		return fail(c, err)
	}

	return created(c, "User created successfully", user.ToResponse())
}

// UpdateUserPrivileges handles privilege assignment
// PUT /api/v1/users/:id/privileges
func (h *UserHandler) UpdateUserPrivileges(c *fiber.Ctx) error {
	userID, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	var req struct {
		Privileges []string `json:"privileges"`
	}
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}

	user, err := h.userService.UpdateUserPrivileges(userID, req.Privileges, currentActor(c).Audit())
	if err != nil {
		return fail(c, err)
	}

	return ok(c, "Privileges updated successfully", user.ToResponse())
}

// GetUsers returns a page of users
// GET /api/v1/users?search=&page=&limit=
func (h *UserHandler) GetUsers(c *fiber.Ctx) error {
	p := pagination.FromQuery(c)
	users, err := h.userService.GetAllUsers(p, c.Query("search"))
	if err != nil {
		return fail(c, err)
	}
	return page(c, users, p)
}

// GetUser returns a single user by ID
// GET /api/v1/users/:id
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	userID, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{"data": user})
}

// UpdateUser handles user update
// PUT /api/v1/users/:id
func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	userID, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	var req service.UpdateUserRequest
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}

	user, err := h.userService.UpdateUser(userID, &req, currentActor(c).Audit())
	if err != nil {
		return fail(c, err)
	}

	return ok(c, "User updated successfully", user.ToResponse())
}

// DeleteUser handles user deletion
// DELETE /api/v1/users/:id
func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	userID, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	if err := h.userService.DeleteUser(userID, currentActor(c).Audit()); err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{"message": "User deleted successfully"})
}
