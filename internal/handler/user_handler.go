package handler

import (
	"go-carpet-shop/internal/apperror"
	"go-carpet-shop/internal/middleware"
	"go-carpet-shop/internal/model"
	"go-carpet-shop/internal/query"
	"go-carpet-shop/internal/service"

	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) Register(r *Router) {
	code := func(action string) string { return model.PermissionCode(action, "User") }

	// self-service routes; the service decides between self and superuser
	r.Authenticated(fiber.MethodGet, "/users/me", h.Me)
	r.Authenticated(fiber.MethodPost, "/users/admin", h.CreateAdmin)
	r.Authenticated(fiber.MethodPatch, "/users/:id", h.UpdateUser)
	r.Authenticated(fiber.MethodDelete, "/users/:id", h.DeleteUser)

	r.Guarded(fiber.MethodGet, "/users", code(model.ActionView), h.GetUsers)
	r.Guarded(fiber.MethodGet, "/users/:id", code(model.ActionView), h.GetUser)
	r.Guarded(fiber.MethodPost, "/users/staff", code(model.ActionAdd), h.CreateStaff)
	r.Guarded(fiber.MethodPut, "/users/:id/groups", code(model.ActionChange), h.SetGroups)
}

func responses(page *query.Page[model.User]) *query.Page[model.UserResponse] {
	out := &query.Page[model.UserResponse]{
		Data:     make([]model.UserResponse, 0, len(page.Data)),
		Page:     page.Page,
		PageSize: page.PageSize,
		Total:    page.Total,
	}
	for i := range page.Data {
		out.Data = append(out.Data, page.Data[i].ToResponse())
	}
	return out
}

// GetUsers returns one page of users
// GET /api/v1/users
func (h *UserHandler) GetUsers(c *fiber.Ctx) error {
	p, err := listParams(c)
	if err != nil {
		return apperror.Respond(c, err)
	}
	page, err := h.userService.List(p)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(responses(page))
}

// GET /api/v1/users/:id
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return apperror.Respond(c, err)
	}
	user, err := h.userService.Get(id)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(user.ToResponse())
}

// Me returns the caller's own account
// GET /api/v1/users/me
func (h *UserHandler) Me(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	return c.JSON(fiber.Map{
		"user":        user.ToResponse(),
		"permissions": user.PermissionCodes(),
	})
}

// CreateStaff creates a staff account inside a named group
// POST /api/v1/users/staff
func (h *UserHandler) CreateStaff(c *fiber.Ctx) error {
	var req service.CreateStaffRequest
	if err := bind(c, &req); err != nil {
		return apperror.Respond(c, err)
	}

	user, err := h.userService.CreateStaff(&req, middleware.CurrentUser(c))
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(user.ToResponse())
}

// POST /api/v1/users/admin
func (h *UserHandler) CreateAdmin(c *fiber.Ctx) error {
	var req service.RegisterRequest
	if err := bind(c, &req); err != nil {
		return apperror.Respond(c, err)
	}

	user, err := h.userService.CreateAdmin(&req, middleware.CurrentUser(c))
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(user.ToResponse())
}

// PATCH /api/v1/users/:id
func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return apperror.Respond(c, err)
	}
	var req service.UpdateUserRequest
	if err := bind(c, &req); err != nil {
		return apperror.Respond(c, err)
	}

	user, err := h.userService.Update(id, &req, middleware.CurrentUser(c))
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(user.ToResponse())
}

// DeleteUser deactivates the account
// DELETE /api/v1/users/:id
func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return apperror.Respond(c, err)
	}
	if err := h.userService.Delete(id, middleware.CurrentUser(c)); err != nil {
		return apperror.Respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// PUT /api/v1/users/:id/groups
func (h *UserHandler) SetGroups(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return apperror.Respond(c, err)
	}
	var req service.SetGroupsRequest
	if err := bind(c, &req); err != nil {
		return apperror.Respond(c, err)
	}

	user, err := h.userService.SetGroups(id, &req, middleware.CurrentUser(c))
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(user.ToResponse())
}
