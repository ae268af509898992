package handler

import (
	"strings"

	"go-carpet-shop/internal/apperror"
	"go-carpet-shop/internal/middleware"
	"go-carpet-shop/internal/model"
	"go-carpet-shop/internal/query"
	"go-carpet-shop/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Module is one app's slice of the API. Modules only know the Router, so apps
// can be mounted independently of each other.
type Module interface {
	Register(r *Router)
}

// Router hands out route groups that always carry authentication and a
// permission check.
type Router struct {
	api  fiber.Router
	auth fiber.Handler
}

func NewRouter(api fiber.Router, auth fiber.Handler) *Router {
	return &Router{api: api, auth: auth}
}

// Public returns the bare group, for routes that need no account.
func (r *Router) Public() fiber.Router {
	return r.api
}

// Authenticated registers h on method and path behind auth alone. The handler
// or the service below it does its own access check.
func (r *Router) Authenticated(method, path string, h fiber.Handler) {
	r.api.Add(method, path, r.auth, h)
}

// Guarded registers h on method and path behind auth and the permission code.
func (r *Router) Guarded(method, path, code string, h fiber.Handler) {
	r.api.Add(method, path, r.auth, middleware.RequirePermission(code), h)
}

// Mount registers every module on api.
func Mount(api fiber.Router, auth fiber.Handler, modules ...Module) *Router {
	r := NewRouter(api, auth)
	for _, m := range modules {
		m.Register(r)
	}
	return r
}

// Resource exposes svc as list/get/create/update/delete under path, each action
// guarded by the matching "<action>_<entity>" permission.
func Resource[T any, C any, U any](r *Router, path, entity string, svc service.CRUD[T, C, U]) {
	code := func(action string) string { return model.PermissionCode(action, entity) }
	item := strings.TrimSuffix(path, "/") + "/:id"

	r.Guarded(fiber.MethodGet, path, code(model.ActionView), func(c *fiber.Ctx) error {
		p, err := listParams(c)
		if err != nil {
			return apperror.Respond(c, err)
		}
		page, err := svc.List(p)
		if err != nil {
			return apperror.Respond(c, err)
		}
		return c.JSON(page)
	})

	r.Guarded(fiber.MethodGet, item, code(model.ActionView), func(c *fiber.Ctx) error {
		id, err := paramID(c)
		if err != nil {
			return apperror.Respond(c, err)
		}
		v, err := svc.Get(id)
		if err != nil {
			return apperror.Respond(c, err)
		}
		return c.JSON(v)
	})

	r.Guarded(fiber.MethodPost, path, code(model.ActionAdd), func(c *fiber.Ctx) error {
		var req C
		if err := bind(c, &req); err != nil {
			return apperror.Respond(c, err)
		}
		v, err := svc.Create(&req, middleware.ActorID(c))
		if err != nil {
			return apperror.Respond(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(v)
	})

	r.Guarded(fiber.MethodPatch, item, code(model.ActionChange), func(c *fiber.Ctx) error {
		id, err := paramID(c)
		if err != nil {
			return apperror.Respond(c, err)
		}
		var req U
		if err := bind(c, &req); err != nil {
			return apperror.Respond(c, err)
		}
		v, err := svc.Update(id, &req, middleware.ActorID(c))
		if err != nil {
			return apperror.Respond(c, err)
		}
		return c.JSON(v)
	})

	r.Guarded(fiber.MethodDelete, item, code(model.ActionDelete), func(c *fiber.Ctx) error {
		id, err := paramID(c)
		if err != nil {
			return apperror.Respond(c, err)
		}
		if err := svc.Delete(id, middleware.ActorID(c)); err != nil {
			return apperror.Respond(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

func paramID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, apperror.Invalid("id", "must be a valid UUID")
	}
	return id, nil
}

func bind(c *fiber.Ctx, req interface{}) error {
	if err := c.BodyParser(req); err != nil {
		return apperror.Invalid("", "Invalid JSON")
	}
	return nil
}

func listParams(c *fiber.Ctx) (query.Params, error) {
	return query.ParseParams(c.Queries())
}
