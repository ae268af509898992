package repository

import (
	"fmt"

	"go-carpet-shop/internal/apperror"
	"go-carpet-shop/internal/query"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repo is the gorm repository shared by every catalogue entity. Associations are
// never written implicitly; relations are managed by the services.
type Repo[T any] struct {
	db     *gorm.DB
	entity string
}

func NewRepo[T any](db *gorm.DB, entity string) *Repo[T] {
	return &Repo[T]{db: db, entity: entity}
}

// WithTx returns a copy bound to tx. Inside a transaction every read and write
// must go through the copy.
func (r *Repo[T]) WithTx(tx *gorm.DB) *Repo[T] {
	return &Repo[T]{db: tx, entity: r.entity}
}

func (r *Repo[T]) Entity() string { return r.entity }

func (r *Repo[T]) DB() *gorm.DB { return r.db }

func (r *Repo[T]) FindByID(id uuid.UUID, preloads ...string) (*T, error) {
	return r.Get("id", id, preloads...)
}

// Get loads a row referenced by field; a missing row is NOT_FOUND naming field.
func (r *Repo[T]) Get(field string, id uuid.UUID, preloads ...string) (*T, error) {
	var v T
	q := r.db
	for _, p := range preloads {
		q = q.Preload(p)
	}
	if err := q.First(&v, "id = ?", id).Error; err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NotFound(field, r.entity)
		}
		return nil, apperror.FromDB(err, r.entity)
	}
	return &v, nil
}

// GetMany loads every row in ids; any missing id is NOT_FOUND naming field.
func (r *Repo[T]) GetMany(field string, ids []uuid.UUID) ([]T, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	ids = unique(ids)
	var rows []T
	if err := r.db.Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, apperror.FromDB(err, r.entity)
	}
	if len(rows) != len(ids) {
		return nil, apperror.NotFound(field, r.entity)
	}
	return rows, nil
}

func (r *Repo[T]) Create(v *T) error {
	if err := r.db.Omit(clause.Associations).Create(v).Error; err != nil {
		return apperror.FromDB(err, r.entity)
	}
	return nil
}

func (r *Repo[T]) Save(v *T) error {
	if err := r.db.Omit(clause.Associations).Save(v).Error; err != nil {
		return apperror.FromDB(err, r.entity)
	}
	return nil
}

// Delete removes a row after checking that nothing listed in guards still
// references it.
func (r *Repo[T]) Delete(id uuid.UUID, guards ...Guard) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(new(T)).Where("id = ?", id).Count(&n).Error; err != nil {
			return apperror.FromDB(err, r.entity)
		}
		if n == 0 {
			return apperror.NotFound("id", r.entity)
		}
		if err := CheckRestrict(tx, r.entity, id, guards...); err != nil {
			return err
		}
		if err := tx.Delete(new(T), "id = ?", id).Error; err != nil {
			return apperror.FromDB(err, r.entity)
		}
		return nil
	})
}

func (r *Repo[T]) List(spec query.Spec, p query.Params, preloads ...string) (*query.Page[T], error) {
	return query.List[T](r.db, spec, p, preloads...)
}

// Guard names a relation that blocks deletion while rows still point at the parent.
type Guard struct {
	Table     string
	Model     interface{}
	Column    string
	Dependent string
}

// Restrict guards deletion on rows of model whose column references the parent.
func Restrict(model interface{}, column, dependent string) Guard {
	return Guard{Model: model, Column: column, Dependent: dependent}
}

// RestrictTable guards deletion on a join table.
func RestrictTable(table, column, dependent string) Guard {
	return Guard{Table: table, Column: column, Dependent: dependent}
}

// CheckRestrict fails with INTEGRITY_ERROR on the first guard that still has
// dependents of id.
func CheckRestrict(db *gorm.DB, entity string, id uuid.UUID, guards ...Guard) error {
	for _, g := range guards {
		q := db
		if g.Table != "" {
			q = q.Table(g.Table)
		} else {
			q = q.Model(g.Model)
		}
		var n int64
		if err := q.Where(g.Column+" = ?", id).Count(&n).Error; err != nil {
			return apperror.FromDB(err, entity)
		}
		if n > 0 {
			return apperror.Integrity("id", fmt.Sprintf("%s is still referenced by %d %s", entity, n, g.Dependent))
		}
	}
	return nil
}

func unique(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
