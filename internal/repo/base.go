package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base is the shared CRUD foundation for the reference-data repositories
// (categories, providers, customers). T is a GORM model keyed by an "id" column.
type Base[T any] struct {
	db *gorm.DB
}

// NewBase constructs a Base repository backed by the provided GORM connection.
func NewBase[T any](db *gorm.DB) Base[T] {
	return Base[T]{db: db}
}

// DB returns the GORM connection bound to the supplied context (if any).
func (b Base[T]) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// WithTx rebinds the repository to tx; a nil tx keeps the current connection.
func (b Base[T]) WithTx(tx *gorm.DB) Base[T] {
	if tx == nil {
		return b
	}
	return Base[T]{db: tx}
}

func (b Base[T]) Create(ctx context.Context, row *T) error {
	return b.DB(ctx).Create(row).Error
}

func (b Base[T]) FindByID(ctx context.Context, id uuid.UUID) (*T, error) {
	var row T
	if err := b.DB(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// List returns every row ordered by name then id.
func (b Base[T]) List(ctx context.Context) ([]T, error) {
	var rows []T
	err := b.DB(ctx).Order("name ASC").Order("id ASC").Find(&rows).Error
	return rows, err
}

func (b Base[T]) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := b.DB(ctx).Model(new(T)).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// Update applies column updates and reports how many rows matched.
func (b Base[T]) Update(ctx context.Context, id uuid.UUID, updates map[string]any) (int64, error) {
	if len(updates) == 0 {
		ok, err := b.Exists(ctx, id)
		if ok {
			return 1, err
		}
		return 0, err
	}
	res := b.DB(ctx).Model(new(T)).Where("id = ?", id).Updates(updates)
	return res.RowsAffected, res.Error
}

func (b Base[T]) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := b.DB(ctx).Where("id = ?", id).Delete(new(T))
	return res.RowsAffected, res.Error
}
