package models

import (
	"context"

	"github.com/go-pg/pg/v10"
	"github.com/pkg/errors"
)

type Category struct {
	tableName struct{} `pg:"category"`

	ID   int64  `pg:"category_id,pk" json:"id"`
	Name string `pg:"name,unique,notnull" json:"name"`
}

// EnsureCategory creates the category if missing and returns the persisted
// row. Safe to call concurrently for the same name.
func EnsureCategory(ctx context.Context, db *pg.DB, name string) (*Category, error) {
	category := &Category{
		Name: name,
	}
	_, err := db.Model(category).
		Context(ctx).
		OnConflict("DO NOTHING").
		Insert()
	if err != nil {
		return nil, errors.Wrap(err, "failed to insert category")
	}
	err = db.Model(category).
		Context(ctx).
		Where("name = ?", name).
		Select()
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch category after insert")
	}
	return category, nil
}

func GetCategoryByName(ctx context.Context, db *pg.DB, name string) (*Category, error) {
	var category Category
	err := db.Model(&category).
		Context(ctx).
		Where("lower(name) = lower(?)", name).
		Limit(1).
		Select()
	if errors.Is(err, pg.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch category by name")
	}
	return &category, nil
}

func GetCategories(ctx context.Context, db *pg.DB) ([]*Category, error) {
	var categories []*Category
	err := db.Model(&categories).
		Context(ctx).
		Order("category_id ASC").
		Select()
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch categories")
	}
	return categories, nil
}
