package models

import (
	"context"
	"time"

	"github.com/go-pg/pg/v10"
	"github.com/go-pg/pg/v10/orm"
	"github.com/pkg/errors"
)

func init() {
	orm.RegisterTable((*MovieGenre)(nil))
}

// Movie mirrors one TMDB movie record. The primary key is the TMDB id, so
// repeated syncs address the same row.
type Movie struct {
	tableName struct{} `pg:"movie,alias:movie"`

	ID          int64      `pg:"movie_id,pk" json:"id"`
	Title       string     `pg:"title" json:"title"`
	Description string     `pg:"description" json:"description"`
	ReleaseDate *time.Time `pg:"release_date" json:"release_date"`
	Cover       string     `pg:"cover" json:"cover"`
	Background  string     `pg:"background" json:"background"`
	Director    string     `pg:"director" json:"director"`
	Duration    *int64     `pg:"duration" json:"duration"`
	Rating      *float64   `pg:"rating" json:"rating"`
	Popularity  *float64   `pg:"popularity" json:"popularity"`
	Trailer     string     `pg:"trailer" json:"trailer"`
	CategoryID  *int64     `pg:"category_id" json:"-"`
	CreatedAt   time.Time  `pg:"created_at,default:now()" json:"-"`
	UpdatedAt   time.Time  `pg:"updated_at,default:now()" json:"-"`

	Category *Category `pg:"rel:has-one" json:"category,omitempty"`
	Genres   []*Genre  `pg:"many2many:movie_genre" json:"genres"`
}

type MovieGenre struct {
	tableName struct{} `pg:"movie_genre"`

	MovieID int64 `pg:"movie_id,pk"`
	GenreID int64 `pg:"genre_id,pk"`
}

func MovieExists(ctx context.Context, db *pg.DB, id int64) (bool, error) {
	exists, err := db.Model((*Movie)(nil)).
		Context(ctx).
		Where("movie_id = ?", id).
		Exists()
	if err != nil {
		return false, errors.Wrap(err, "failed to check movie existence")
	}
	return exists, nil
}

// GetMovieByID loads the movie with genres and category eagerly
// materialized. Returns nil without error when the id is unknown.
func GetMovieByID(ctx context.Context, db *pg.DB, id int64) (*Movie, error) {
	movie := &Movie{ID: id}
	err := db.Model(movie).
		Context(ctx).
		WherePK().
		Relation("Category").
		Relation("Genres").
		Select()
	if errors.Is(err, pg.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch movie")
	}
	return movie, nil
}

// SaveMovie upserts the movie by TMDB id, overwriting all synced fields,
// and replaces its genre links.
func SaveMovie(ctx context.Context, db *pg.DB, movie *Movie) error {
	tx, err := db.BeginContext(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to begin tx")
	}
	defer func() {
		_ = tx.Close()
	}()

	movie.UpdatedAt = time.Now()
	_, err = tx.Model(movie).
		Context(ctx).
		OnConflict("(movie_id) DO UPDATE").
		Set(`
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			release_date = EXCLUDED.release_date,
			cover = EXCLUDED.cover,
			background = EXCLUDED.background,
			director = EXCLUDED.director,
			duration = EXCLUDED.duration,
			rating = EXCLUDED.rating,
			popularity = EXCLUDED.popularity,
			trailer = EXCLUDED.trailer,
			category_id = EXCLUDED.category_id,
			updated_at = EXCLUDED.updated_at
		`).
		Insert()
	if err != nil {
		return errors.Wrap(err, "failed to upsert movie")
	}

	_, err = tx.Model((*MovieGenre)(nil)).
		Context(ctx).
		Where("movie_id = ?", movie.ID).
		Delete()
	if err != nil {
		return errors.Wrap(err, "failed to clear movie genres")
	}
	if len(movie.Genres) > 0 {
		links := make([]*MovieGenre, 0, len(movie.Genres))
		for _, g := range movie.Genres {
			links = append(links, &MovieGenre{
				MovieID: movie.ID,
				GenreID: g.ID,
			})
		}
		_, err = tx.Model(&links).
			Context(ctx).
			OnConflict("DO NOTHING").
			Insert()
		if err != nil {
			return errors.Wrap(err, "failed to link movie genres")
		}
	}

	return tx.Commit()
}

func DeleteMovie(ctx context.Context, db *pg.DB, id int64) error {
	_, err := db.Model((*Movie)(nil)).
		Context(ctx).
		Where("movie_id = ?", id).
		Delete()
	if err != nil {
		return errors.Wrap(err, "failed to delete movie")
	}
	return nil
}

func GetPaginatedMovies(ctx context.Context, db *pg.DB, p PageRequest) (*Page[*Movie], error) {
	p = p.Normalize()
	var movies []*Movie
	total, err := db.Model(&movies).
		Context(ctx).
		Relation("Category").
		Relation("Genres").
		OrderExpr("movie.popularity DESC NULLS LAST").
		OrderExpr("movie.rating DESC NULLS LAST").
		Limit(p.Size).
		Offset(p.offset()).
		SelectAndCount()
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch movies")
	}
	return &Page[*Movie]{Items: movies, Total: total, Page: p.Page, Size: p.Size}, nil
}

// SearchMovies composes the optional predicates into one filtered, sorted
// and paginated query. Default order is popularity then rating, both
// descending.
func SearchMovies(ctx context.Context, db *pg.DB, f *CatalogFilter, p PageRequest) (*Page[*Movie], error) {
	p = p.Normalize()
	var movies []*Movie
	q := db.Model(&movies).
		Context(ctx).
		Relation("Category").
		Relation("Genres")
	q = applyConds(q, f.conds("movie"))
	if len(f.Genres) > 0 {
		q = q.Join("JOIN movie_genre AS mg ON mg.movie_id = movie.movie_id").
			Join("JOIN genre AS g ON g.genre_id = mg.genre_id").
			Where("lower(g.name) IN (?)", pg.In(lowered(f.Genres))).
			Distinct()
	}
	if len(f.Categories) > 0 {
		q = q.Join("JOIN category AS c ON c.category_id = movie.category_id").
			Where("lower(c.name) IN (?)", pg.In(lowered(f.Categories)))
	}
	total, err := q.
		OrderExpr("movie.popularity DESC NULLS LAST").
		OrderExpr("movie.rating DESC NULLS LAST").
		Limit(p.Size).
		Offset(p.offset()).
		SelectAndCount()
	if err != nil {
		return nil, errors.Wrap(err, "failed to search movies")
	}
	return &Page[*Movie]{Items: movies, Total: total, Page: p.Page, Size: p.Size}, nil
}

func GetMoviesByCategory(ctx context.Context, db *pg.DB, categoryName string, p PageRequest) (*Page[*Movie], error) {
	p = p.Normalize()
	var movies []*Movie
	total, err := db.Model(&movies).
		Context(ctx).
		Relation("Category").
		Relation("Genres").
		Join("JOIN category AS c ON c.category_id = movie.category_id").
		Where("lower(c.name) = lower(?)", categoryName).
		OrderExpr("movie.popularity DESC NULLS LAST").
		Limit(p.Size).
		Offset(p.offset()).
		SelectAndCount()
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch movies by category")
	}
	return &Page[*Movie]{Items: movies, Total: total, Page: p.Page, Size: p.Size}, nil
}

func GetBestMoviesByGenre(ctx context.Context, db *pg.DB, genre string, p PageRequest) (*Page[*Movie], error) {
	p = p.Normalize()
	var movies []*Movie
	total, err := db.Model(&movies).
		Context(ctx).
		Relation("Category").
		Relation("Genres").
		Join("JOIN movie_genre AS mg ON mg.movie_id = movie.movie_id").
		Join("JOIN genre AS g ON g.genre_id = mg.genre_id").
		Where("lower(g.name) = lower(?)", genre).
		Distinct().
		OrderExpr("movie.rating DESC NULLS LAST").
		Limit(p.Size).
		Offset(p.offset()).
		SelectAndCount()
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch best movies by genre")
	}
	return &Page[*Movie]{Items: movies, Total: total, Page: p.Page, Size: p.Size}, nil
}
