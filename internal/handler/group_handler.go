package handler

import (
	"go-carpet-shop/internal/apperror"
	"go-carpet-shop/internal/model"
	"go-carpet-shop/internal/service"

	"github.com/gofiber/fiber/v2"
)

type GroupHandler struct {
	groupService service.GroupService
}

func NewGroupHandler(groupService service.GroupService) *GroupHandler {
	return &GroupHandler{groupService: groupService}
}

func (h *GroupHandler) Register(r *Router) {
	r.Guarded(fiber.MethodGet, "/groups", model.PermissionCode(model.ActionView, "Group"), h.GetGroups)
	r.Guarded(fiber.MethodGet, "/permissions", model.PermissionCode(model.ActionView, "Permission"), h.GetPermissions)
}

// GetGroups returns all groups with their permissions
// GET /api/v1/groups
func (h *GroupHandler) GetGroups(c *fiber.Ctx) error {
	groups, err := h.groupService.Groups()
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(groups)
}

// GET /api/v1/permissions
func (h *GroupHandler) GetPermissions(c *fiber.Ctx) error {
	permissions, err := h.groupService.Permissions()
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(permissions)
}
