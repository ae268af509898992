package service

import (
	"go-carpet-shop/internal/apperror"
	"go-carpet-shop/internal/model"
	"go-carpet-shop/internal/repository"
)

// GroupService exposes the permission catalogue and the groups built from it.
type GroupService interface {
	Groups() ([]model.Group, error)
	Permissions() ([]model.Permission, error)
	Seed() error
}

type groupService struct {
	groups      repository.GroupRepository
	permissions repository.PermissionRepository
}

func NewGroupService(groups repository.GroupRepository, permissions repository.PermissionRepository) GroupService {
	return &groupService{groups: groups, permissions: permissions}
}

func (s *groupService) Groups() ([]model.Group, error) {
	groups, err := s.groups.FindAll()
	if err != nil {
		return nil, apperror.FromDB(err, "Group")
	}
	return groups, nil
}

func (s *groupService) Permissions() ([]model.Permission, error) {
	perms, err := s.permissions.FindAll()
	if err != nil {
		return nil, apperror.FromDB(err, "Permission")
	}
	return perms, nil
}

// Seed creates the permission catalogue and the default groups. It is safe to
// run on every start.
func (s *groupService) Seed() error {
	if err := s.permissions.SeedDefaults(); err != nil {
		return apperror.FromDB(err, "Permission")
	}
	if err := s.groups.SeedDefaults(); err != nil {
		return apperror.FromDB(err, "Group")
	}
	return nil
}
