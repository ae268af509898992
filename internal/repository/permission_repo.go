package repository

import (
	"go-carpet-shop/internal/model"

	"gorm.io/gorm"
)

type PermissionRepository interface {
	FindByCodes(codes []string) ([]model.Permission, error)
	FindAll() ([]model.Permission, error)
	SeedDefaults() error
}

type permissionRepo struct {
	db *gorm.DB
}

func NewPermissionRepo(db *gorm.DB) PermissionRepository {
	return &permissionRepo{db}
}

func (r *permissionRepo) FindByCodes(codes []string) ([]model.Permission, error) {
	var perms []model.Permission
	if err := r.db.Where("code IN ?", codes).Find(&perms).Error; err != nil {
		return nil, err
	}
	return perms, nil
}

func (r *permissionRepo) FindAll() ([]model.Permission, error) {
	var perms []model.Permission
	if err := r.db.Order("app, code").Find(&perms).Error; err != nil {
		return nil, err
	}
	return perms, nil
}

// SeedDefaults creates default permissions if they don't exist
func (r *permissionRepo) SeedDefaults() error {
	for _, p := range model.DefaultPermissions() {
		var existing model.Permission
		if err := r.db.Where("code = ?", p.Code).First(&existing).Error; err == gorm.ErrRecordNotFound {
			if err := r.db.Create(&p).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
