package middleware

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"go-carpet-shop/internal/apperror"
	"go-carpet-shop/internal/model"
	"go-carpet-shop/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuth struct {
	service.AuthService
	users map[string]*model.User
}

func (s stubAuth) Verify(token string) (*model.User, error) {
	if u, ok := s.users[token]; ok {
		return u, nil
	}
	return nil, service.ErrInvalidToken
}

func clerk() *model.User {
	u := &model.User{Email: "clerk@example.com", IsActive: true, IsStaff: true}
	u.ID = uuid.New()
	u.Groups = []model.Group{{Name: "Clerks", Permissions: []model.Permission{{Code: "view_sale"}}}}
	return u
}

func newApp() *fiber.App {
	root := &model.User{Email: "root@example.com", IsActive: true, IsSuperuser: true}
	root.ID = uuid.New()
	auth := stubAuth{users: map[string]*model.User{"clerk": clerk(), "root": root}}

	app := fiber.New()
	app.Get("/sales", RequireAuth(auth), RequirePermission("view_sale"), func(c *fiber.Ctx) error {
		return c.SendString(ActorID(c))
	})
	app.Delete("/sales", RequireAuth(auth), RequirePermission("delete_sale"), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func call(t *testing.T, app *fiber.App, method, token string) (int, []apperror.FieldError) {
	t.Helper()
	req := httptest.NewRequest(method, "/sales", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	var body struct {
		Errors []apperror.FieldError `json:"errors"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&body)
	return resp.StatusCode, body.Errors
}

func TestRequireAuth(t *testing.T) {
	app := newApp()

	status, errs := call(t, app, "GET", "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	require.Len(t, errs, 1)
	assert.Equal(t, apperror.CodeUnauthenticated, errs[0].Code)

	status, _ = call(t, app, "GET", "bogus")
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = call(t, app, "GET", "clerk")
	assert.Equal(t, fiber.StatusOK, status)
}

func TestRequirePermission(t *testing.T) {
	app := newApp()

	status, errs := call(t, app, "DELETE", "clerk")
	assert.Equal(t, fiber.StatusForbidden, status)
	require.Len(t, errs, 1)
	assert.Equal(t, apperror.CodePermissionDenied, errs[0].Code)

	status, _ = call(t, app, "DELETE", "root")
	assert.Equal(t, fiber.StatusNoContent, status)
}
