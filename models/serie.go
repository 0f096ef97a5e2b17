package models

import (
	"context"
	"time"

	"github.com/go-pg/pg/v10"
	"github.com/go-pg/pg/v10/orm"
	"github.com/pkg/errors"
)

func init() {
	orm.RegisterTable((*SerieGenre)(nil))
}

// Serie mirrors one TMDB TV series record, keyed by the TMDB id. Unlike
// movies, series carry no category; they track status and season counts
// instead.
type Serie struct {
	tableName struct{} `pg:"serie,alias:serie"`

	ID               int64      `pg:"serie_id,pk" json:"id"`
	Title            string     `pg:"title" json:"title"`
	Description      string     `pg:"description" json:"description"`
	Creator          string     `pg:"creator" json:"creator"`
	ReleaseDate      *time.Time `pg:"release_date" json:"release_date"`
	Poster           string     `pg:"poster" json:"poster"`
	Backdrop         string     `pg:"backdrop" json:"backdrop"`
	Rating           *float64   `pg:"rating" json:"rating"`
	Popularity       *float64   `pg:"popularity" json:"popularity"`
	NumberOfSeasons  *int64     `pg:"number_of_seasons" json:"number_of_seasons"`
	NumberOfEpisodes *int64     `pg:"number_of_episodes" json:"number_of_episodes"`
	Trailer          string     `pg:"trailer" json:"trailer"`
	Status           string     `pg:"status" json:"status"`
	CreatedAt        time.Time  `pg:"created_at,default:now()" json:"-"`
	UpdatedAt        time.Time  `pg:"updated_at,default:now()" json:"-"`

	Genres  []*Genre  `pg:"many2many:serie_genre" json:"genres"`
	Seasons []*Season `pg:"rel:has-many" json:"seasons"`
}

type SerieGenre struct {
	tableName struct{} `pg:"serie_genre"`

	SerieID int64 `pg:"serie_id,pk"`
	GenreID int64 `pg:"genre_id,pk"`
}

func SerieExists(ctx context.Context, db *pg.DB, id int64) (bool, error) {
	exists, err := db.Model((*Serie)(nil)).
		Context(ctx).
		Where("serie_id = ?", id).
		Exists()
	if err != nil {
		return false, errors.Wrap(err, "failed to check serie existence")
	}
	return exists, nil
}

// GetSerieByID loads the serie with genres and seasons eagerly
// materialized. Returns nil without error when the id is unknown.
func GetSerieByID(ctx context.Context, db *pg.DB, id int64) (*Serie, error) {
	serie := &Serie{ID: id}
	err := db.Model(serie).
		Context(ctx).
		WherePK().
		Relation("Genres").
		Relation("Seasons", func(q *orm.Query) (*orm.Query, error) {
			return q.Order("season_number ASC"), nil
		}).
		Select()
	if errors.Is(err, pg.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch serie")
	}
	return serie, nil
}

// SaveSerie upserts the serie by TMDB id and replaces its genre links and
// seasons with the freshly synced set.
func SaveSerie(ctx context.Context, db *pg.DB, serie *Serie) error {
	tx, err := db.BeginContext(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to begin tx")
	}
	defer func() {
		_ = tx.Close()
	}()

	serie.UpdatedAt = time.Now()
	_, err = tx.Model(serie).
		Context(ctx).
		OnConflict("(serie_id) DO UPDATE").
		Set(`
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			creator = EXCLUDED.creator,
			release_date = EXCLUDED.release_date,
			poster = EXCLUDED.poster,
			backdrop = EXCLUDED.backdrop,
			rating = EXCLUDED.rating,
			popularity = EXCLUDED.popularity,
			number_of_seasons = EXCLUDED.number_of_seasons,
			number_of_episodes = EXCLUDED.number_of_episodes,
			trailer = EXCLUDED.trailer,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at
		`).
		Insert()
	if err != nil {
		return errors.Wrap(err, "failed to upsert serie")
	}

	_, err = tx.Model((*SerieGenre)(nil)).
		Context(ctx).
		Where("serie_id = ?", serie.ID).
		Delete()
	if err != nil {
		return errors.Wrap(err, "failed to clear serie genres")
	}
	if len(serie.Genres) > 0 {
		links := make([]*SerieGenre, 0, len(serie.Genres))
		for _, g := range serie.Genres {
			links = append(links, &SerieGenre{
				SerieID: serie.ID,
				GenreID: g.ID,
			})
		}
		_, err = tx.Model(&links).
			Context(ctx).
			OnConflict("DO NOTHING").
			Insert()
		if err != nil {
			return errors.Wrap(err, "failed to link serie genres")
		}
	}

	_, err = tx.Model((*Season)(nil)).
		Context(ctx).
		Where("serie_id = ?", serie.ID).
		Delete()
	if err != nil {
		return errors.Wrap(err, "failed to clear seasons")
	}
	if len(serie.Seasons) > 0 {
		for _, season := range serie.Seasons {
			season.SerieID = serie.ID
		}
		_, err = tx.Model(&serie.Seasons).
			Context(ctx).
			OnConflict("DO NOTHING").
			Insert()
		if err != nil {
			return errors.Wrap(err, "failed to insert seasons")
		}
	}

	return tx.Commit()
}

func DeleteSerie(ctx context.Context, db *pg.DB, id int64) error {
	// Seasons cascade with the parent row.
	_, err := db.Model((*Serie)(nil)).
		Context(ctx).
		Where("serie_id = ?", id).
		Delete()
	if err != nil {
		return errors.Wrap(err, "failed to delete serie")
	}
	return nil
}

func GetPaginatedSeries(ctx context.Context, db *pg.DB, p PageRequest) (*Page[*Serie], error) {
	p = p.Normalize()
	var series []*Serie
	total, err := db.Model(&series).
		Context(ctx).
		Relation("Genres").
		Relation("Seasons").
		OrderExpr("serie.popularity DESC NULLS LAST").
		OrderExpr("serie.rating DESC NULLS LAST").
		Limit(p.Size).
		Offset(p.offset()).
		SelectAndCount()
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch series")
	}
	return &Page[*Serie]{Items: series, Total: total, Page: p.Page, Size: p.Size}, nil
}

func SearchSeries(ctx context.Context, db *pg.DB, f *CatalogFilter, p PageRequest) (*Page[*Serie], error) {
	p = p.Normalize()
	var series []*Serie
	q := db.Model(&series).
		Context(ctx).
		Relation("Genres").
		Relation("Seasons")
	q = applyConds(q, f.conds("serie"))
	// Series have no category; genre membership covers both filters.
	names := make([]string, 0, len(f.Genres)+len(f.Categories))
	names = append(names, f.Genres...)
	names = append(names, f.Categories...)
	if len(names) > 0 {
		q = q.Join("JOIN serie_genre AS sg ON sg.serie_id = serie.serie_id").
			Join("JOIN genre AS g ON g.genre_id = sg.genre_id").
			Where("lower(g.name) IN (?)", pg.In(lowered(names))).
			Distinct()
	}
	total, err := q.
		OrderExpr("serie.popularity DESC NULLS LAST").
		OrderExpr("serie.rating DESC NULLS LAST").
		Limit(p.Size).
		Offset(p.offset()).
		SelectAndCount()
	if err != nil {
		return nil, errors.Wrap(err, "failed to search series")
	}
	return &Page[*Serie]{Items: series, Total: total, Page: p.Page, Size: p.Size}, nil
}

func GetBestSeriesByGenre(ctx context.Context, db *pg.DB, genre string, p PageRequest) (*Page[*Serie], error) {
	p = p.Normalize()
	var series []*Serie
	total, err := db.Model(&series).
		Context(ctx).
		Relation("Genres").
		Join("JOIN serie_genre AS sg ON sg.serie_id = serie.serie_id").
		Join("JOIN genre AS g ON g.genre_id = sg.genre_id").
		Where("lower(g.name) = lower(?)", genre).
		Distinct().
		OrderExpr("serie.rating DESC NULLS LAST").
		Limit(p.Size).
		Offset(p.offset()).
		SelectAndCount()
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch best series by genre")
	}
	return &Page[*Serie]{Items: series, Total: total, Page: p.Page, Size: p.Size}, nil
}

// GetMostPopularAndTopRatedSeries serves the landing rail: high rating
// weighted by popularity.
func GetMostPopularAndTopRatedSeries(ctx context.Context, db *pg.DB, p PageRequest) (*Page[*Serie], error) {
	p = p.Normalize()
	var series []*Serie
	total, err := db.Model(&series).
		Context(ctx).
		Relation("Genres").
		Where("serie.rating IS NOT NULL").
		OrderExpr("serie.rating DESC NULLS LAST").
		OrderExpr("serie.popularity DESC NULLS LAST").
		Limit(p.Size).
		Offset(p.offset()).
		SelectAndCount()
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch most popular series")
	}
	return &Page[*Serie]{Items: series, Total: total, Page: p.Page, Size: p.Size}, nil
}
