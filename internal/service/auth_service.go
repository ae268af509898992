package service

import (
	"errors"
	"strings"

	"go-carpet-shop/internal/apperror"
	"go-carpet-shop/internal/model"
	"go-carpet-shop/internal/repository"
	"go-carpet-shop/pkg/jwt"
	"go-carpet-shop/pkg/validator"

	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials = apperror.Unauthenticated("invalid email or password")
	ErrUserInactive       = apperror.Unauthenticated("user account is inactive")
	ErrSessionReplaced    = apperror.Unauthenticated("session expired (logged in on another device)")
	ErrInvalidToken       = apperror.Unauthenticated("invalid or expired token")
)

type AuthService interface {
	Login(req *LoginRequest) (*LoginResponse, error)
	Verify(token string) (*model.User, error)
	Refresh(refreshToken string) (*LoginResponse, error)
	ChangePassword(user *model.User, req *ChangePasswordRequest) (*LoginResponse, error)
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,password"`
}

type LoginResponse struct {
	Token       *jwt.Pair          `json:"token"`
	User        model.UserResponse `json:"user"`
	Permissions []string           `json:"permissions"`
}

type authService struct {
	users  repository.UserRepository
	tokens *jwt.Manager
}

func NewAuthService(users repository.UserRepository, tokens *jwt.Manager) AuthService {
	return &authService{users: users, tokens: tokens}
}

// Login checks the credentials and rotates the token version, so only the newest
// session stays valid.
func (s *authService) Login(req *LoginRequest) (*LoginResponse, error) {
	if err := apperror.Check(req); err != nil {
		return nil, err
	}
	user, err := s.users.FindByEmail(normalizeEmail(req.Email))
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, apperror.FromDB(err, "User")
	}
	if !user.CheckPassword(req.Password) {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	return s.rotate(user)
}

func (s *authService) rotate(user *model.User) (*LoginResponse, error) {
	version := uuid.NewString()
	if err := s.users.UpdateTokenVersion(user.ID, version); err != nil {
		return nil, apperror.FromDB(err, "User")
	}
	user.TokenVersion = version
	return s.issue(user)
}

func (s *authService) issue(user *model.User) (*LoginResponse, error) {
	pair, err := s.tokens.Issue(jwt.Subject{
		UserID:       user.ID,
		Email:        user.Email,
		Name:         user.FullName(),
		TokenVersion: user.TokenVersion,
	})
	if err != nil {
		return nil, apperror.Unknown(err)
	}
	perms := user.PermissionCodes()
	if perms == nil {
		perms = []string{}
	}
	return &LoginResponse{Token: pair, User: user.ToResponse(), Permissions: perms}, nil
}

// Verify resolves an access token to its active user.
func (s *authService) Verify(token string) (*model.User, error) {
	return s.check(token, jwt.Access)
}

// Refresh issues a new pair for the same session.
func (s *authService) Refresh(refreshToken string) (*LoginResponse, error) {
	user, err := s.check(refreshToken, jwt.Refresh)
	if err != nil {
		return nil, err
	}
	return s.issue(user)
}

func (s *authService) check(token string, typ jwt.TokenType) (*model.User, error) {
	claims, err := s.tokens.Verify(token, typ)
	if err != nil {
		if errors.Is(err, jwt.ErrMissingToken) {
			return nil, apperror.Unauthenticated(err.Error())
		}
		return nil, ErrInvalidToken
	}
	user, err := s.users.FindByID(claims.UserID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, ErrInvalidToken
		}
		return nil, apperror.FromDB(err, "User")
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	if user.TokenVersion != claims.TokenVersion {
		return nil, ErrSessionReplaced
	}
	return user, nil
}

// ChangePassword replaces the password and starts a fresh session, revoking every
// other one.
func (s *authService) ChangePassword(user *model.User, req *ChangePasswordRequest) (*LoginResponse, error) {
	if err := apperror.Check(req); err != nil {
		return nil, err
	}
	if !user.CheckPassword(req.OldPassword) {
		return nil, apperror.Validation("old_password", "current password is incorrect")
	}
	if err := validator.NormalizePassword(req.NewPassword); err != nil {
		return nil, apperror.Validation("new_password", err.Error())
	}
	if err := user.SetPassword(req.NewPassword); err != nil {
		return nil, apperror.Unknown(err)
	}
	if err := s.users.UpdatePassword(user.ID, user.Password); err != nil {
		return nil, apperror.FromDB(err, "User")
	}
	return s.rotate(user)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
