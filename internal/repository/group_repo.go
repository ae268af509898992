package repository

import (
	"go-carpet-shop/internal/model"

	"gorm.io/gorm"
)

type GroupRepository interface {
	FindAll() ([]model.Group, error)
	FindByName(name string) (*model.Group, error)
	FindByNames(names []string) ([]model.Group, error)
	Create(group *model.Group) error
	SeedDefaults() error
}

type groupRepo struct {
	db *gorm.DB
}

func NewGroupRepo(db *gorm.DB) GroupRepository {
	return &groupRepo{db: db}
}

func (r *groupRepo) FindAll() ([]model.Group, error) {
	var groups []model.Group
	err := r.db.Preload("Permissions").Order("id").Find(&groups).Error
	return groups, err
}

func (r *groupRepo) FindByName(name string) (*model.Group, error) {
	var group model.Group
	err := r.db.Preload("Permissions").Where("name = ?", name).First(&group).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *groupRepo) FindByNames(names []string) ([]model.Group, error) {
	var groups []model.Group
	err := r.db.Where("name IN ?", names).Find(&groups).Error
	return groups, err
}

func (r *groupRepo) Create(group *model.Group) error {
	return r.db.Create(group).Error
}

// SeedDefaults creates the default groups and grants their permissions. Groups that
// already hold permissions are left untouched so manual changes survive restarts.
func (r *groupRepo) SeedDefaults() error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for _, name := range model.DefaultGroupNames {
			group := model.Group{Name: name}
			if err := tx.Where("name = ?", name).FirstOrCreate(&group).Error; err != nil {
				return err
			}
			if n := tx.Model(&group).Association("Permissions").Count(); n > 0 {
				continue
			}
			var perms []model.Permission
			if err := tx.Where("code IN ?", model.DefaultGroupPermissions(name)).Find(&perms).Error; err != nil {
				return err
			}
			if err := tx.Model(&group).Association("Permissions").Replace(perms); err != nil {
				return err
			}
		}
		return nil
	})
}
