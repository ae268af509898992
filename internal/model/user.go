package model

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// User represents an account. Staff and clients share the table; what they may do
// comes from their groups, and superusers may do everything.
type User struct {
	BaseModel
	Email        string     `gorm:"type:varchar(50);uniqueIndex;not null" json:"email"`
	Password     string     `gorm:"type:varchar(255);not null" json:"-"`
	FirstName    string     `gorm:"type:varchar(30);not null" json:"first_name"`
	LastName     string     `gorm:"type:varchar(30);not null" json:"last_name"`
	Phone        string     `gorm:"type:varchar(20);not null" json:"phone"`
	AddressID    *uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"address_id"`
	Address      *Address   `gorm:"constraint:OnDelete:RESTRICT" json:"address,omitempty"`
	IsStaff      bool       `gorm:"not null;default:false" json:"is_staff"`
	IsSuperuser  bool       `gorm:"not null;default:false" json:"is_superuser"`
	IsActive     bool       `gorm:"not null;default:true" json:"is_active"`
	Groups       []Group    `gorm:"many2many:user_groups;" json:"groups,omitempty"`
	TokenVersion string     `gorm:"type:varchar(255);default:''" json:"-"` // For single session enforcement
}

// SetPassword hashes and sets the user's password
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword verifies if the provided password matches the stored hash
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// PermissionCodes returns the union of permissions granted through the user's
// groups. Groups must be preloaded with their permissions.
func (u *User) PermissionCodes() []string {
	seen := make(map[string]bool)
	var codes []string
	for _, g := range u.Groups {
		for _, p := range g.Permissions {
			if !seen[p.Code] {
				seen[p.Code] = true
				codes = append(codes, p.Code)
			}
		}
	}
	return codes
}

// HasPermission checks a single permission code. Superusers hold every permission.
func (u *User) HasPermission(code string) bool {
	if u.IsSuperuser {
		return true
	}
	for _, g := range u.Groups {
		for _, p := range g.Permissions {
			if p.Code == code {
				return true
			}
		}
	}
	return false
}

func (u *User) GroupNames() []string {
	names := make([]string, len(u.Groups))
	for i, g := range u.Groups {
		names[i] = g.Name
	}
	return names
}

// UserResponse is used for API responses (without sensitive data)
type UserResponse struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Phone       string     `json:"phone"`
	AddressID   *uuid.UUID `json:"address_id"`
	Address     *Address   `json:"address,omitempty"`
	IsStaff     bool       `json:"is_staff"`
	IsSuperuser bool       `json:"is_superuser"`
	IsActive    bool       `json:"is_active"`
	Groups      []string   `json:"groups"`
	DateJoined  time.Time  `json:"date_joined"`
}

// ToResponse converts User to UserResponse
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Phone:       u.Phone,
		AddressID:   u.AddressID,
		Address:     u.Address,
		IsStaff:     u.IsStaff,
		IsSuperuser: u.IsSuperuser,
		IsActive:    u.IsActive,
		Groups:      u.GroupNames(),
		DateJoined:  u.CreatedAt,
	}
}
