package service

import (
	"strings"

	"go-carpet-shop/internal/apperror"
	"go-carpet-shop/internal/model"
	"go-carpet-shop/internal/query"
	"go-carpet-shop/internal/repository"
	"go-carpet-shop/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserService interface {
	List(p query.Params) (*query.Page[model.User], error)
	Get(id uuid.UUID) (*model.User, error)
	Register(req *RegisterRequest) (*model.User, error)
	CreateStaff(req *CreateStaffRequest, actor *model.User) (*model.User, error)
	CreateAdmin(req *RegisterRequest, actor *model.User) (*model.User, error)
	Update(id uuid.UUID, req *UpdateUserRequest, actor *model.User) (*model.User, error)
	Delete(id uuid.UUID, actor *model.User) error
	SetGroups(id uuid.UUID, req *SetGroupsRequest, actor *model.User) (*model.User, error)
	EnsureSuperuser(email, password string) (bool, error)
}

// RegisterRequest is the payload of a public sign-up and of admin creation.
type RegisterRequest struct {
	Email     string                `json:"email" validate:"required,email"`
	Password  string                `json:"password" validate:"required,password"`
	FirstName string                `json:"first_name" validate:"required"`
	LastName  string                `json:"last_name" validate:"required"`
	Phone     string                `json:"phone" validate:"required,phone"`
	Address   *CreateAddressRequest `json:"address"`
}

type CreateStaffRequest struct {
	Email     string                `json:"email" validate:"required,email"`
	Password  string                `json:"password" validate:"required,password"`
	FirstName string                `json:"first_name" validate:"required"`
	LastName  string                `json:"last_name" validate:"required"`
	Phone     string                `json:"phone" validate:"required,phone"`
	Address   *CreateAddressRequest `json:"address"`
	Group     string                `json:"group" validate:"required"`
}

type UpdateUserRequest struct {
	Email     *string               `json:"email" validate:"omitempty,email"`
	FirstName *string               `json:"first_name"`
	LastName  *string               `json:"last_name"`
	Phone     *string               `json:"phone" validate:"omitempty,phone"`
	Address   *UpdateAddressRequest `json:"address"`
	IsStaff   *bool                 `json:"is_staff"`
	IsActive  *bool                 `json:"is_active"`
}

type SetGroupsRequest struct {
	Groups []string `json:"groups" validate:"required"`
}

var userSpec = query.Spec{Fields: map[string]query.Field{
	"email":        {Column: "email", Kind: query.String, Lookups: query.Text},
	"first_name":   {Column: "first_name", Kind: query.String, Lookups: query.Text},
	"last_name":    {Column: "last_name", Kind: query.String, Lookups: query.Text},
	"is_active":    {Column: "is_active", Kind: query.Bool, Lookups: query.Ref},
	"is_staff":     {Column: "is_staff", Kind: query.Bool, Lookups: query.Ref},
	"is_superuser": {Column: "is_superuser", Kind: query.Bool, Lookups: query.Ref},
}}

type userService struct {
	db        *gorm.DB
	users     repository.UserRepository
	list      *repository.Repo[model.User]
	addresses *crud[model.Address, CreateAddressRequest, UpdateAddressRequest]
}

func NewUserService(db *gorm.DB, users repository.UserRepository, addresses *AddressServices) UserService {
	return &userService{
		db:        db,
		users:     users,
		list:      repository.NewRepo[model.User](db, "User"),
		addresses: addresses.addresses,
	}
}

func (s *userService) List(p query.Params) (*query.Page[model.User], error) {
	return s.list.List(userSpec, p, "Groups", "Address.Neighborhood.Locality")
}

func (s *userService) Get(id uuid.UUID) (*model.User, error) {
	user, err := s.users.FindByID(id)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NotFound("id", "User")
		}
		return nil, apperror.FromDB(err, "User")
	}
	return user, nil
}

// account is the shared shape of every account-creating request.
type account struct {
	email, password, firstName, lastName, phone string
	address                                     *CreateAddressRequest
	staff, superuser                            bool
	group                                       string
}

// Register signs up a client. The new account joins the Client group.
func (s *userService) Register(req *RegisterRequest) (*model.User, error) {
	if err := apperror.Check(req); err != nil {
		return nil, err
	}
	return s.create(account{
		email: req.Email, password: req.Password, firstName: req.FirstName, lastName: req.LastName,
		phone: req.Phone, address: req.Address, group: model.GroupClient,
	}, "")
}

func (s *userService) CreateStaff(req *CreateStaffRequest, actor *model.User) (*model.User, error) {
	if err := apperror.Check(req); err != nil {
		return nil, err
	}
	return s.create(account{
		email: req.Email, password: req.Password, firstName: req.FirstName, lastName: req.LastName,
		phone: req.Phone, address: req.Address, staff: true, group: req.Group,
	}, actor.ID.String())
}

// CreateAdmin creates a superuser. Only superusers may call it.
func (s *userService) CreateAdmin(req *RegisterRequest, actor *model.User) (*model.User, error) {
	if !actor.IsSuperuser {
		return nil, apperror.PermissionDenied("only superusers can create administrators")
	}
	if err := apperror.Check(req); err != nil {
		return nil, err
	}
	return s.create(account{
		email: req.Email, password: req.Password, firstName: req.FirstName, lastName: req.LastName,
		phone: req.Phone, address: req.Address, staff: true, superuser: true, group: model.GroupAdmin,
	}, actor.ID.String())
}

func (s *userService) create(a account, actor string) (*model.User, error) {
	first, err := plainName("first_name", a.firstName)
	if err != nil {
		return nil, err
	}
	last, err := plainName("last_name", a.lastName)
	if err != nil {
		return nil, err
	}

	var id uuid.UUID
	err = s.db.Transaction(func(tx *gorm.DB) error {
		group, err := repository.NewGroupRepo(tx).FindByName(a.group)
		if err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NotFound("group", "Group")
			}
			return apperror.FromDB(err, "Group")
		}

		user := &model.User{
			Email:       normalizeEmail(a.email),
			FirstName:   first,
			LastName:    last,
			Phone:       strings.TrimSpace(a.phone),
			IsStaff:     a.staff,
			IsSuperuser: a.superuser,
			IsActive:    true,
		}
		if err := user.SetPassword(a.password); err != nil {
			return apperror.Unknown(err)
		}
		// Self-registration is audited as the new account itself.
		if actor == "" {
			user.ID = uuid.New()
			actor = user.ID.String()
		}
		if a.address != nil {
			addr, err := s.addresses.createTx(tx, a.address, actor)
			if err != nil {
				return nest("address", err)
			}
			user.AddressID = &addr.ID
		}
		user.Stamp(actor)

		users := s.users.WithTx(tx)
		if err := users.Create(user); err != nil {
			return apperror.FromDB(err, "User")
		}
		if err := users.ReplaceGroups(user, []model.Group{*group}); err != nil {
			return apperror.FromDB(err, "User")
		}
		id = user.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(id)
}

// EnsureSuperuser creates the bootstrap administrator unless the e-mail is taken.
// It reports whether an account was created.
func (s *userService) EnsureSuperuser(email, password string) (bool, error) {
	_, err := s.users.FindByEmail(normalizeEmail(email))
	if err == nil {
		return false, nil
	}
	if !apperror.IsNotFound(err) {
		return false, apperror.FromDB(err, "User")
	}
	_, err = s.create(account{
		email: email, password: password, firstName: "Admin", lastName: "Admin",
		staff: true, superuser: true, group: model.GroupAdmin,
	}, "system")
	return err == nil, err
}

// Update changes an account. Users may change only themselves unless they are
// superusers; staff and active flags are reserved to superusers.
func (s *userService) Update(id uuid.UUID, req *UpdateUserRequest, actor *model.User) (*model.User, error) {
	if err := selfOrSuperuser(id, actor); err != nil {
		return nil, err
	}
	if !validator.HasAnyField(req) {
		return nil, apperror.Invalid("", "At least one field required")
	}
	if err := apperror.Check(req); err != nil {
		return nil, err
	}
	if (req.IsStaff != nil || req.IsActive != nil) && !actor.IsSuperuser {
		return nil, apperror.PermissionDenied("only superusers can change staff or active flags")
	}

	by := actor.ID.String()
	err := s.db.Transaction(func(tx *gorm.DB) error {
		users := s.users.WithTx(tx)
		user, err := users.FindByID(id)
		if err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NotFound("id", "User")
			}
			return apperror.FromDB(err, "User")
		}
		if req.Email != nil {
			user.Email = normalizeEmail(*req.Email)
		}
		if req.FirstName != nil {
			if user.FirstName, err = plainName("first_name", *req.FirstName); err != nil {
				return err
			}
		}
		if req.LastName != nil {
			if user.LastName, err = plainName("last_name", *req.LastName); err != nil {
				return err
			}
		}
		if req.Phone != nil {
			user.Phone = strings.TrimSpace(*req.Phone)
		}
		if req.IsStaff != nil {
			user.IsStaff = *req.IsStaff
		}
		if req.IsActive != nil {
			user.IsActive = *req.IsActive
		}
		if err := s.applyAddress(tx, user, req.Address, by); err != nil {
			return err
		}
		user.Stamp(by)
		if err := users.Update(user); err != nil {
			return apperror.FromDB(err, "User")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(id)
}

// applyAddress patches the bound address in place, or creates and binds one when
// the user has none. An empty payload changes nothing.
func (s *userService) applyAddress(tx *gorm.DB, user *model.User, req *UpdateAddressRequest, actor string) error {
	if req == nil || !validator.HasAnyField(req) {
		return nil
	}
	if user.AddressID != nil {
		if _, err := s.addresses.updateTx(tx, *user.AddressID, req, actor); err != nil {
			return nest("address", err)
		}
		return nil
	}
	create := &CreateAddressRequest{}
	if req.Details != nil {
		create.Details = *req.Details
	}
	if req.NeighborhoodID != nil {
		create.NeighborhoodID = *req.NeighborhoodID
	}
	addr, err := s.addresses.createTx(tx, create, actor)
	if err != nil {
		return nest("address", err)
	}
	user.AddressID = &addr.ID
	user.Address = nil
	return nil
}

// Delete deactivates the account instead of removing it.
func (s *userService) Delete(id uuid.UUID, actor *model.User) error {
	if err := selfOrSuperuser(id, actor); err != nil {
		return err
	}
	if _, err := s.Get(id); err != nil {
		return err
	}
	if err := s.users.Deactivate(id, actor.ID.String()); err != nil {
		return apperror.FromDB(err, "User")
	}
	return nil
}

func (s *userService) SetGroups(id uuid.UUID, req *SetGroupsRequest, actor *model.User) (*model.User, error) {
	if err := apperror.Check(req); err != nil {
		return nil, err
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		users := s.users.WithTx(tx)
		user, err := users.FindByID(id)
		if err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NotFound("id", "User")
			}
			return apperror.FromDB(err, "User")
		}
		groups, err := repository.NewGroupRepo(tx).FindByNames(req.Groups)
		if err != nil {
			return apperror.FromDB(err, "Group")
		}
		if len(groups) != len(uniqueNames(req.Groups)) {
			return apperror.NotFound("groups", "Group")
		}
		if err := users.ReplaceGroups(user, groups); err != nil {
			return apperror.FromDB(err, "User")
		}
		user.Stamp(actor.ID.String())
		if err := users.Update(user); err != nil {
			return apperror.FromDB(err, "User")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(id)
}

func selfOrSuperuser(id uuid.UUID, actor *model.User) error {
	if actor.ID != id && !actor.IsSuperuser {
		return apperror.PermissionDenied("you can only change your own account")
	}
	return nil
}

func uniqueNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	var out []string
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}
