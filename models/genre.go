package models

import (
	"context"

	"github.com/go-pg/pg/v10"
	"github.com/pkg/errors"
)

// Genre identifiers come from TMDB and are shared vocabulary with the
// provider, so they are never generated locally.
type Genre struct {
	tableName struct{} `pg:"genre"`

	ID   int64  `pg:"genre_id,pk" json:"id"`
	Name string `pg:"name,unique,notnull" json:"name"`
}

func GetGenreByID(ctx context.Context, db *pg.DB, id int64) (*Genre, error) {
	genre := &Genre{ID: id}
	err := db.Model(genre).
		Context(ctx).
		WherePK().
		Select()
	if errors.Is(err, pg.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch genre")
	}
	return genre, nil
}

// GetOrCreateGenre inserts the genre if it is not present yet. A concurrent
// insert of the same id is benign: the conflict is ignored and the winning
// row is read back.
func GetOrCreateGenre(ctx context.Context, db *pg.DB, id int64, name string) (*Genre, error) {
	genre := &Genre{
		ID:   id,
		Name: name,
	}
	_, err := db.Model(genre).
		Context(ctx).
		OnConflict("DO NOTHING").
		Insert()
	if err != nil {
		return nil, errors.Wrap(err, "failed to insert genre")
	}
	err = db.Model(genre).
		Context(ctx).
		WherePK().
		Select()
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch genre after insert")
	}
	return genre, nil
}

func SaveGenres(ctx context.Context, db *pg.DB, genres []*Genre) error {
	if len(genres) == 0 {
		return nil
	}
	_, err := db.Model(&genres).
		Context(ctx).
		OnConflict("DO NOTHING").
		Insert()
	if err != nil {
		return errors.Wrap(err, "failed to save genres")
	}
	return nil
}
