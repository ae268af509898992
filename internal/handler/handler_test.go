package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"go-carpet-shop/internal/apperror"
	"go-carpet-shop/internal/middleware"
	"go-carpet-shop/internal/model"
	"go-carpet-shop/internal/repository"
	"go-carpet-shop/internal/service"
	"go-carpet-shop/internal/testutil"
	"go-carpet-shop/internal/ws"
	"go-carpet-shop/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testServer struct {
	app  *fiber.App
	db   *gorm.DB
	auth service.AuthService
}

func newServer(t *testing.T) *testServer {
	t.Helper()
	db := testutil.NewDB(t)

	userRepo := repository.NewUserRepo(db)
	groups := service.NewGroupService(repository.NewGroupRepo(db), repository.NewPermissionRepo(db))
	require.NoError(t, groups.Seed())

	addresses := service.NewAddressServices(db)
	users := service.NewUserService(db, userRepo, addresses)
	auth := service.NewAuthService(userRepo, jwt.NewManager("secret", "test", time.Minute, time.Hour))

	_, err := users.EnsureSuperuser("root@example.com", "Secret1!")
	require.NoError(t, err)

	app := fiber.New()
	MountSystem(app, db, ws.NewHub())
	Mount(app.Group("/api/v1"), middleware.RequireAuth(auth),
		NewAuthHandler(auth, users),
		NewUserHandler(users),
		NewGroupHandler(groups),
		NewAddressModule(addresses),
	)
	return &testServer{app: app, db: db, auth: auth}
}

// login returns an access token for an existing account.
func (s *testServer) login(t *testing.T, email string) string {
	t.Helper()
	res, err := s.auth.Login(&service.LoginRequest{Email: email, Password: "Secret1!"})
	require.NoError(t, err)
	return res.Token.Access
}

type response struct {
	status int
	body   []byte
}

func (r response) errors(t *testing.T) []apperror.FieldError {
	t.Helper()
	var payload struct {
		Errors []apperror.FieldError `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(r.body, &payload))
	return payload.Errors
}

func (r response) decode(t *testing.T, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.body, v), string(r.body))
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) response {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return response{status: resp.StatusCode, body: raw}
}

func TestResourceRoutesArePermissionGuarded(t *testing.T) {
	s := newServer(t)
	clerks := testutil.Group(t, s.db, "Clerks", "view_locality", "add_locality")
	testutil.User(t, s.db, "clerk@example.com", "Secret1!", clerks)
	token := s.login(t, "clerk@example.com")

	res := s.do(t, "GET", "/api/v1/localities", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, res.status)

	res = s.do(t, "POST", "/api/v1/localities", token, map[string]string{"name": "  san   martin "})
	require.Equal(t, fiber.StatusCreated, res.status, string(res.body))
	var created model.Locality
	res.decode(t, &created)
	assert.Equal(t, "San Martin", created.Name)

	res = s.do(t, "GET", "/api/v1/localities/"+created.ID.String(), token, nil)
	assert.Equal(t, fiber.StatusOK, res.status)

	res = s.do(t, "GET", "/api/v1/localities?page_size=10", token, nil)
	require.Equal(t, fiber.StatusOK, res.status)
	var page struct {
		Data  []model.Locality `json:"data"`
		Total int64            `json:"total"`
	}
	res.decode(t, &page)
	assert.EqualValues(t, 1, page.Total)

	res = s.do(t, "PATCH", "/api/v1/localities/"+created.ID.String(), token, map[string]string{"name": "Centro"})
	assert.Equal(t, fiber.StatusForbidden, res.status)

	res = s.do(t, "DELETE", "/api/v1/localities/"+created.ID.String(), token, nil)
	require.Equal(t, fiber.StatusForbidden, res.status)
	errs := res.errors(t)
	require.Len(t, errs, 1)
	assert.Equal(t, apperror.CodePermissionDenied, errs[0].Code)

	root := s.login(t, "root@example.com")
	res = s.do(t, "DELETE", "/api/v1/localities/"+created.ID.String(), root, nil)
	assert.Equal(t, fiber.StatusNoContent, res.status)
	res = s.do(t, "GET", "/api/v1/localities/"+created.ID.String(), root, nil)
	assert.Equal(t, fiber.StatusNotFound, res.status)
}

func TestResourceErrorPayload(t *testing.T) {
	s := newServer(t)
	root := s.login(t, "root@example.com")

	res := s.do(t, "GET", "/api/v1/localities/not-a-uuid", root, nil)
	require.Equal(t, fiber.StatusBadRequest, res.status)
	errs := res.errors(t)
	require.Len(t, errs, 1)
	assert.Equal(t, apperror.CodeInvalidInput, errs[0].Code)
	assert.Equal(t, "id", errs[0].Field)

	res = s.do(t, "POST", "/api/v1/localities", root, "{broken")
	assert.Equal(t, fiber.StatusBadRequest, res.status)

	res = s.do(t, "POST", "/api/v1/localities", root, map[string]string{"name": "Centro"})
	require.Equal(t, fiber.StatusCreated, res.status)
	res = s.do(t, "POST", "/api/v1/localities", root, map[string]string{"name": "centro"})
	require.Equal(t, fiber.StatusConflict, res.status)
	errs = res.errors(t)
	require.Len(t, errs, 1)
	assert.Equal(t, apperror.CodeIntegrity, errs[0].Code)
	assert.Equal(t, "name", errs[0].Field)

	res = s.do(t, "POST", "/api/v1/localities", root, map[string]string{"name": "123"})
	assert.Equal(t, fiber.StatusUnprocessableEntity, res.status)
}

func TestAuthRoutes(t *testing.T) {
	s := newServer(t)

	res := s.do(t, "POST", "/api/v1/auth/register", "", map[string]string{
		"email":      "ana@example.com",
		"password":   "Secret1!",
		"first_name": "Ana",
		"last_name":  "Ruiz",
		"phone":      "5551234567",
	})
	require.Equal(t, fiber.StatusCreated, res.status, string(res.body))
	var registered model.UserResponse
	res.decode(t, &registered)
	assert.Equal(t, []string{model.GroupClient}, registered.Groups)

	res = s.do(t, "POST", "/api/v1/auth/token", "", map[string]string{"email": "ana@example.com", "password": "wrong"})
	assert.Equal(t, fiber.StatusUnauthorized, res.status)

	res = s.do(t, "POST", "/api/v1/auth/token", "", map[string]string{"email": "ana@example.com", "password": "Secret1!"})
	require.Equal(t, fiber.StatusOK, res.status, string(res.body))
	var login service.LoginResponse
	res.decode(t, &login)
	require.NotNil(t, login.Token)

	res = s.do(t, "POST", "/api/v1/auth/verify", "", map[string]string{"token": login.Token.Access})
	assert.Equal(t, fiber.StatusOK, res.status)

	res = s.do(t, "POST", "/api/v1/auth/verify", "", map[string]string{})
	assert.Equal(t, fiber.StatusBadRequest, res.status)

	res = s.do(t, "POST", "/api/v1/auth/refresh", "", map[string]string{"token": login.Token.Refresh})
	require.Equal(t, fiber.StatusOK, res.status)

	res = s.do(t, "GET", "/api/v1/users/me", login.Token.Access, nil)
	require.Equal(t, fiber.StatusOK, res.status)
	var me struct {
		User model.UserResponse `json:"user"`
	}
	res.decode(t, &me)
	assert.Equal(t, "ana@example.com", me.User.Email)

	res = s.do(t, "POST", "/api/v1/auth/password", login.Token.Access, map[string]string{
		"old_password": "Secret1!",
		"new_password": "Secret2!",
	})
	require.Equal(t, fiber.StatusOK, res.status, string(res.body))

	res = s.do(t, "POST", "/api/v1/auth/password", "", map[string]string{})
	assert.Equal(t, fiber.StatusUnauthorized, res.status)
}

func TestUserRoutes(t *testing.T) {
	s := newServer(t)
	testutil.User(t, s.db, "ana@example.com", "Secret1!")
	ana := s.login(t, "ana@example.com")
	root := s.login(t, "root@example.com")

	res := s.do(t, "GET", "/api/v1/users", ana, nil)
	assert.Equal(t, fiber.StatusForbidden, res.status)

	res = s.do(t, "GET", "/api/v1/users", root, nil)
	require.Equal(t, fiber.StatusOK, res.status)
	assert.NotContains(t, string(res.body), "password")

	res = s.do(t, "POST", "/api/v1/users/staff", root, map[string]string{
		"email":      "bob@example.com",
		"password":   "Secret1!",
		"first_name": "Bob",
		"last_name":  "Lee",
		"phone":      "5551234567",
		"group":      model.GroupSalesAssistant,
	})
	require.Equal(t, fiber.StatusCreated, res.status, string(res.body))
	var bob model.UserResponse
	res.decode(t, &bob)
	assert.True(t, bob.IsStaff)

	res = s.do(t, "PATCH", "/api/v1/users/"+bob.ID.String(), ana, map[string]string{"first_name": "Robert"})
	assert.Equal(t, fiber.StatusForbidden, res.status)

	res = s.do(t, "PUT", "/api/v1/users/"+bob.ID.String()+"/groups", root, map[string][]string{
		"groups": {model.GroupInventoryManager},
	})
	require.Equal(t, fiber.StatusOK, res.status, string(res.body))
	res.decode(t, &bob)
	assert.Equal(t, []string{model.GroupInventoryManager}, bob.Groups)

	res = s.do(t, "DELETE", "/api/v1/users/"+bob.ID.String(), root, nil)
	assert.Equal(t, fiber.StatusNoContent, res.status)

	res = s.do(t, "GET", "/api/v1/groups", root, nil)
	assert.Equal(t, fiber.StatusOK, res.status)
	res = s.do(t, "GET", "/api/v1/permissions", ana, nil)
	assert.Equal(t, fiber.StatusForbidden, res.status)
}

func TestHealthz(t *testing.T) {
	s := newServer(t)
	res := s.do(t, "GET", "/healthz", "", nil)
	assert.Equal(t, fiber.StatusOK, res.status)

	res = s.do(t, "GET", "/ws", "", nil)
	assert.Equal(t, fiber.StatusUpgradeRequired, res.status)
}
