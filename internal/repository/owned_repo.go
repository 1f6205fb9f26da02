package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrRowNotFound indicates no row matched the id + owner filter.
var ErrRowNotFound = errors.New("row not found for owner")

// Filter narrows a query on a single column. A nil Value matches NULL.
type Filter struct {
	Column string
	Value  interface{}
}

// OwnedQuery describes an owner-scoped select.
type OwnedQuery struct {
	OwnerID string
	Filters []Filter
	Order   string
}

// OwnedRepository persists rows that belong to a single owner. Every statement it issues
// carries an owner_id predicate.
type OwnedRepository[T any] interface {
	List(ctx context.Context, query OwnedQuery) ([]T, error)
	MaxPosition(ctx context.Context, query OwnedQuery, column string) (int, error)
	Insert(ctx context.Context, row *T) error
	Update(ctx context.Context, ownerID, id string, changes map[string]interface{}) (T, error)
	Delete(ctx context.Context, ownerID, id string) error
	IDsWhere(ctx context.Context, ownerID, column string, values []string) ([]string, error)
	DeleteWhere(ctx context.Context, ownerID, column string, values []string) (int64, error)
	CountBy(ctx context.Context, ownerID, column string, values []string) (map[string]int, error)
}

type ownedRepository[T any] struct {
	db *gorm.DB
}

// NewOwnedRepository constructs a gorm-backed repository for the model T.
func NewOwnedRepository[T any](db *gorm.DB) OwnedRepository[T] {
	return &ownedRepository[T]{db: db}
}

func (r *ownedRepository[T]) scoped(ctx context.Context, ownerID string) *gorm.DB {
	return r.db.WithContext(ctx).Model(new(T)).Where("owner_id = ?", ownerID)
}

func (r *ownedRepository[T]) List(ctx context.Context, query OwnedQuery) ([]T, error) {
	stmt := applyFilters(r.scoped(ctx, query.OwnerID), query.Filters)
	if query.Order != "" {
		stmt = stmt.Order(query.Order)
	}

	var rows []T
	if err := stmt.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// MaxPosition returns the highest value of column in scope, or -1 when the scope is empty.
func (r *ownedRepository[T]) MaxPosition(ctx context.Context, query OwnedQuery, column string) (int, error) {
	stmt := applyFilters(r.scoped(ctx, query.OwnerID), query.Filters)

	var max sql.NullInt64
	if err := stmt.Select(fmt.Sprintf("MAX(%s)", column)).Scan(&max).Error; err != nil {
		return 0, err
	}
	if !max.Valid {
		return -1, nil
	}
	return int(max.Int64), nil
}

func (r *ownedRepository[T]) Insert(ctx context.Context, row *T) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(row).Error
}

func (r *ownedRepository[T]) Update(ctx context.Context, ownerID, id string, changes map[string]interface{}) (T, error) {
	var zero T
	result := r.scoped(ctx, ownerID).Where("id = ?", id).Updates(changes)
	if result.Error != nil {
		return zero, result.Error
	}
	if result.RowsAffected == 0 {
		return zero, ErrRowNotFound
	}

	var row T
	if err := r.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return zero, ErrRowNotFound
		}
		return zero, err
	}
	return row, nil
}

func (r *ownedRepository[T]) Delete(ctx context.Context, ownerID, id string) error {
	result := r.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).Delete(new(T))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRowNotFound
	}
	return nil
}

func (r *ownedRepository[T]) IDsWhere(ctx context.Context, ownerID, column string, values []string) ([]string, error) {
	if len(values) == 0 {
		return nil, nil
	}

	var ids []string
	err := r.scoped(ctx, ownerID).
		Where(fmt.Sprintf("%s IN ?", column), values).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *ownedRepository[T]) DeleteWhere(ctx context.Context, ownerID, column string, values []string) (int64, error) {
	if len(values) == 0 {
		return 0, nil
	}

	result := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Where(fmt.Sprintf("%s IN ?", column), values).
		Delete(new(T))
	return result.RowsAffected, result.Error
}

type parentCount struct {
	ParentID string
	Total    int
}

func (r *ownedRepository[T]) CountBy(ctx context.Context, ownerID, column string, values []string) (map[string]int, error) {
	counts := make(map[string]int, len(values))
	if len(values) == 0 {
		return counts, nil
	}

	var rows []parentCount
	err := r.scoped(ctx, ownerID).
		Select(fmt.Sprintf("%s AS parent_id, COUNT(*) AS total", column)).
		Where(fmt.Sprintf("%s IN ?", column), values).
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		counts[row.ParentID] = row.Total
	}
	return counts, nil
}

func applyFilters(stmt *gorm.DB, filters []Filter) *gorm.DB {
	for _, filter := range filters {
		if filter.Value == nil {
			stmt = stmt.Where(fmt.Sprintf("%s IS NULL", filter.Column))
			continue
		}
		stmt = stmt.Where(fmt.Sprintf("%s = ?", filter.Column), filter.Value)
	}
	return stmt
}
