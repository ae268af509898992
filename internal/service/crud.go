package service

import (
	"go-carpet-shop/internal/apperror"
	"go-carpet-shop/internal/model"
	"go-carpet-shop/internal/query"
	"go-carpet-shop/internal/repository"
	"go-carpet-shop/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CRUD is the contract every entity service exposes to the HTTP layer.
type CRUD[T any, C any, U any] interface {
	List(p query.Params) (*query.Page[T], error)
	Get(id uuid.UUID) (*T, error)
	Create(req *C, actor string) (*T, error)
	Update(id uuid.UUID, req *U, actor string) (*T, error)
	Delete(id uuid.UUID, actor string) error
}

// crud implements CRUD for one entity. build turns a validated create request into
// a row, patch applies a validated partial update; both run inside the write
// transaction and must read through tx.
type crud[T any, C any, U any] struct {
	db       *gorm.DB
	repo     *repository.Repo[T]
	spec     query.Spec
	preloads []string
	guards   []repository.Guard

	build       func(tx *gorm.DB, req *C, actor string) (*T, error)
	patch       func(tx *gorm.DB, v *T, req *U) error
	afterCreate func(tx *gorm.DB, v *T, req *C) error
	afterUpdate func(tx *gorm.DB, v *T, req *U) error
	beforeDel   func(tx *gorm.DB, v *T) error
	committed   func(action string, v *T)
}

func newCRUD[T any, C any, U any](db *gorm.DB, entity string, spec query.Spec, preloads ...string) *crud[T, C, U] {
	return &crud[T, C, U]{
		db:       db,
		repo:     repository.NewRepo[T](db, entity),
		spec:     spec,
		preloads: preloads,
	}
}

func (s *crud[T, C, U]) List(p query.Params) (*query.Page[T], error) {
	return s.repo.List(s.spec, p, s.preloads...)
}

func (s *crud[T, C, U]) Get(id uuid.UUID) (*T, error) {
	return s.load(s.db, id)
}

func (s *crud[T, C, U]) load(db *gorm.DB, id uuid.UUID) (*T, error) {
	v, err := s.repo.WithTx(db).FindByID(id, s.preloads...)
	if err != nil {
		return nil, err
	}
	valuate(v)
	return v, nil
}

func (s *crud[T, C, U]) Create(req *C, actor string) (*T, error) {
	var created *T
	err := s.db.Transaction(func(tx *gorm.DB) error {
		v, err := s.createTx(tx, req, actor)
		created = v
		return err
	})
	if err != nil {
		return nil, err
	}
	out, err := s.Get(keyOf(created))
	if err != nil {
		return nil, err
	}
	if s.committed != nil {
		s.committed("created", out)
	}
	return out, nil
}

// createTx validates, builds and inserts one row inside an open transaction. It
// is also the entry point for orchestrators creating this entity inline.
func (s *crud[T, C, U]) createTx(tx *gorm.DB, req *C, actor string) (*T, error) {
	if err := apperror.Check(req); err != nil {
		return nil, err
	}
	v, err := s.build(tx, req, actor)
	if err != nil {
		return nil, err
	}
	stamp(v, actor)
	if err := s.repo.WithTx(tx).Create(v); err != nil {
		return nil, err
	}
	if s.afterCreate != nil {
		if err := s.afterCreate(tx, v, req); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func (s *crud[T, C, U]) Update(id uuid.UUID, req *U, actor string) (*T, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		_, err := s.updateTx(tx, id, req, actor)
		return err
	})
	if err != nil {
		return nil, err
	}
	out, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if s.committed != nil {
		s.committed("updated", out)
	}
	return out, nil
}

// updateTx applies a partial update inside an open transaction.
func (s *crud[T, C, U]) updateTx(tx *gorm.DB, id uuid.UUID, req *U, actor string) (*T, error) {
	if !validator.HasAnyField(req) {
		return nil, apperror.Invalid("", "At least one field required")
	}
	if err := apperror.Check(req); err != nil {
		return nil, err
	}
	repo := s.repo.WithTx(tx)
	v, err := repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if s.patch != nil {
		if err := s.patch(tx, v, req); err != nil {
			return nil, err
		}
	}
	stamp(v, actor)
	if err := repo.Save(v); err != nil {
		return nil, err
	}
	if s.afterUpdate != nil {
		if err := s.afterUpdate(tx, v, req); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func (s *crud[T, C, U]) Delete(id uuid.UUID, actor string) error {
	var deleted *T
	err := s.db.Transaction(func(tx *gorm.DB) error {
		v, err := s.deleteTx(tx, id)
		deleted = v
		return err
	})
	if err != nil {
		return err
	}
	if s.committed != nil {
		s.committed("deleted", deleted)
	}
	return nil
}

// deleteTx removes one row inside an open transaction, honouring the guards.
func (s *crud[T, C, U]) deleteTx(tx *gorm.DB, id uuid.UUID) (*T, error) {
	repo := s.repo.WithTx(tx)
	v, err := repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if s.beforeDel != nil {
		if err := s.beforeDel(tx, v); err != nil {
			return nil, err
		}
	}
	if err := repo.Delete(id, s.guards...); err != nil {
		return nil, err
	}
	return v, nil
}

func keyOf(v interface{}) uuid.UUID {
	if k, ok := v.(interface{ Key() uuid.UUID }); ok {
		return k.Key()
	}
	return uuid.Nil
}

func stamp(v interface{}, actor string) {
	if a, ok := v.(model.Auditable); ok {
		a.Stamp(actor)
	}
}

func valuate(v interface{}) {
	if val, ok := v.(interface{ Valuate() }); ok {
		val.Valuate()
	}
}
