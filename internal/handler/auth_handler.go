package handler

import (
	"go-carpet-shop/internal/apperror"
	"go-carpet-shop/internal/middleware"
	"go-carpet-shop/internal/service"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService service.AuthService
	userService service.UserService
}

func NewAuthHandler(authService service.AuthService, userService service.UserService) *AuthHandler {
	return &AuthHandler{authService: authService, userService: userService}
}

// TokenRequest carries a token for verification or refresh
type TokenRequest struct {
	Token string `json:"token"`
}

func (h *AuthHandler) Register(r *Router) {
	auth := r.Public().Group("/auth")
	auth.Post("/token", h.Login)
	auth.Post("/verify", h.VerifyToken)
	auth.Post("/refresh", h.RefreshToken)
	auth.Post("/register", h.SignUp)

	r.Authenticated(fiber.MethodPost, "/auth/password", h.ChangePassword)
}

// Login handles user authentication
// POST /api/v1/auth/token
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req service.LoginRequest
	if err := bind(c, &req); err != nil {
		return apperror.Respond(c, err)
	}

	response, err := h.authService.Login(&req)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(response)
}

// VerifyToken checks an access token and returns its owner
// POST /api/v1/auth/verify
func (h *AuthHandler) VerifyToken(c *fiber.Ctx) error {
	var req TokenRequest
	if err := bind(c, &req); err != nil {
		return apperror.Respond(c, err)
	}
	if req.Token == "" {
		return apperror.Respond(c, apperror.Invalid("token", "Token is required"))
	}

	user, err := h.authService.Verify(req.Token)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(fiber.Map{
		"valid":       true,
		"user":        user.ToResponse(),
		"permissions": user.PermissionCodes(),
	})
}

// POST /api/v1/auth/refresh
func (h *AuthHandler) RefreshToken(c *fiber.Ctx) error {
	var req TokenRequest
	if err := bind(c, &req); err != nil {
		return apperror.Respond(c, err)
	}
	if req.Token == "" {
		return apperror.Respond(c, apperror.Invalid("token", "Token is required"))
	}

	response, err := h.authService.Refresh(req.Token)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(response)
}

// SignUp creates a client account
// POST /api/v1/auth/register
func (h *AuthHandler) SignUp(c *fiber.Ctx) error {
	var req service.RegisterRequest
	if err := bind(c, &req); err != nil {
		return apperror.Respond(c, err)
	}

	user, err := h.userService.Register(&req)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(user.ToResponse())
}

// ChangePassword replaces the caller's password and hands back a fresh pair,
// every other session is revoked.
// POST /api/v1/auth/password
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	var req service.ChangePasswordRequest
	if err := bind(c, &req); err != nil {
		return apperror.Respond(c, err)
	}

	response, err := h.authService.ChangePassword(middleware.CurrentUser(c), &req)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(response)
}
