package catalog

import (
	"context"

	"github.com/pkg/errors"
	cs "github.com/webtor-io/common-services"

	pg "github.com/go-pg/pg/v10"

	"github.com/garmanaz/vidaria/models"
)

// Store is the persistence boundary the pipeline needs: keyed
// reads/writes for catalog items plus taxonomy find-or-create.
type Store interface {
	MovieExists(ctx context.Context, id int64) (bool, error)
	SaveMovie(ctx context.Context, movie *models.Movie) error
	GetMovie(ctx context.Context, id int64) (*models.Movie, error)

	SerieExists(ctx context.Context, id int64) (bool, error)
	SaveSerie(ctx context.Context, serie *models.Serie) error
	GetSerie(ctx context.Context, id int64) (*models.Serie, error)

	GetGenre(ctx context.Context, id int64) (*models.Genre, error)
	GetOrCreateGenre(ctx context.Context, id int64, name string) (*models.Genre, error)
	SaveGenres(ctx context.Context, genres []*models.Genre) error
	EnsureCategory(ctx context.Context, name string) (*models.Category, error)
}

type PGStore struct {
	pg *cs.PG
}

func NewStore(pg *cs.PG) *PGStore {
	return &PGStore{
		pg: pg,
	}
}

func (s *PGStore) db() (*pg.DB, error) {
	db := s.pg.Get()
	if db == nil {
		return nil, errors.New("db not initialized")
	}
	return db, nil
}

func (s *PGStore) MovieExists(ctx context.Context, id int64) (bool, error) {
	db, err := s.db()
	if err != nil {
		return false, err
	}
	return models.MovieExists(ctx, db, id)
}

func (s *PGStore) SaveMovie(ctx context.Context, movie *models.Movie) error {
	db, err := s.db()
	if err != nil {
		return err
	}
	return models.SaveMovie(ctx, db, movie)
}

func (s *PGStore) GetMovie(ctx context.Context, id int64) (*models.Movie, error) {
	db, err := s.db()
	if err != nil {
		return nil, err
	}
	return models.GetMovieByID(ctx, db, id)
}

func (s *PGStore) SerieExists(ctx context.Context, id int64) (bool, error) {
	db, err := s.db()
	if err != nil {
		return false, err
	}
	return models.SerieExists(ctx, db, id)
}

func (s *PGStore) SaveSerie(ctx context.Context, serie *models.Serie) error {
	db, err := s.db()
	if err != nil {
		return err
	}
	return models.SaveSerie(ctx, db, serie)
}

func (s *PGStore) GetSerie(ctx context.Context, id int64) (*models.Serie, error) {
	db, err := s.db()
	if err != nil {
		return nil, err
	}
	return models.GetSerieByID(ctx, db, id)
}

func (s *PGStore) GetGenre(ctx context.Context, id int64) (*models.Genre, error) {
	db, err := s.db()
	if err != nil {
		return nil, err
	}
	return models.GetGenreByID(ctx, db, id)
}

func (s *PGStore) GetOrCreateGenre(ctx context.Context, id int64, name string) (*models.Genre, error) {
	db, err := s.db()
	if err != nil {
		return nil, err
	}
	return models.GetOrCreateGenre(ctx, db, id, name)
}

func (s *PGStore) SaveGenres(ctx context.Context, genres []*models.Genre) error {
	db, err := s.db()
	if err != nil {
		return err
	}
	return models.SaveGenres(ctx, db, genres)
}

func (s *PGStore) EnsureCategory(ctx context.Context, name string) (*models.Category, error) {
	db, err := s.db()
	if err != nil {
		return nil, err
	}
	return models.EnsureCategory(ctx, db, name)
}
