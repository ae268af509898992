package middleware

import (
	"strings"

	"go-carpet-shop/internal/apperror"
	"go-carpet-shop/internal/model"
	"go-carpet-shop/internal/service"

	"github.com/gofiber/fiber/v2"
)

// RequireAuth validates the bearer token and puts the user in the context
func RequireAuth(auth service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return apperror.Respond(c, apperror.Unauthenticated("missing authorization token"))
		}

		// "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return apperror.Respond(c, apperror.Unauthenticated("invalid authorization format, use: Bearer <token>"))
		}

		user, err := auth.Verify(parts[1])
		if err != nil {
			return apperror.Respond(c, err)
		}

		c.Locals("user", user)
		c.Locals("user_id", user.ID.String())
		c.Locals("user_email", user.Email)
		return c.Next()
	}
}

// CurrentUser returns the user set by RequireAuth, or nil on public routes.
func CurrentUser(c *fiber.Ctx) *model.User {
	user, _ := c.Locals("user").(*model.User)
	return user
}

// ActorID is the audit identity of the caller, empty on public routes.
func ActorID(c *fiber.Ctx) string {
	id, _ := c.Locals("user_id").(string)
	return id
}

// RequirePermission checks a single permission code. Superusers pass every check.
func RequirePermission(code string) fiber.Handler {
	return RequireAnyPermission(code)
}

// RequireAnyPermission checks that the user holds at least one of codes
func RequireAnyPermission(codes ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return apperror.Respond(c, apperror.Unauthenticated("authentication required"))
		}
		for _, code := range codes {
			if user.HasPermission(code) {
				return c.Next()
			}
		}
		return apperror.Respond(c, apperror.PermissionDenied(
			"requires one of: "+strings.Join(codes, ", "),
		))
	}
}

// RequireStaff lets only staff accounts through.
func RequireStaff() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return apperror.Respond(c, apperror.Unauthenticated("authentication required"))
		}
		if !user.IsStaff && !user.IsSuperuser {
			return apperror.Respond(c, apperror.PermissionDenied("staff only"))
		}
		return c.Next()
	}
}
