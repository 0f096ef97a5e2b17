package catalog

import (
	"context"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"github.com/garmanaz/vidaria/models"
	"github.com/garmanaz/vidaria/services/tmdb"
)

const (
	SyncTargetFlag    = "sync-target"
	SyncStartPageFlag = "sync-start-page"
	SyncOnStartFlag   = "sync-on-start"
)

func RegisterFlags(f []cli.Flag) []cli.Flag {
	return append(f,
		cli.IntFlag{
			Name:   SyncTargetFlag,
			Usage:  "target count of newly persisted items per catalog kind",
			Value:  300,
			EnvVar: "SYNC_TARGET",
		},
		cli.IntFlag{
			Name:   SyncStartPageFlag,
			Usage:  "provider page to start syncing from",
			Value:  1,
			EnvVar: "SYNC_START_PAGE",
		},
		cli.BoolFlag{
			Name:   SyncOnStartFlag,
			Usage:  "run a full catalog sync in background on startup",
			EnvVar: "SYNC_ON_START",
		},
	)
}

// The logical categories are a closed set shared with the provider's
// endpoint mapping.
var (
	MovieCategories = []string{"popular", "top_rated", "upcoming", "now_playing", "trending"}
	SeriesTypes     = []string{"popular", "top_rated", "airing_today", "on_the_air"}
)

// Client is the provider boundary of the sync pipeline.
type Client interface {
	MovieGenres(ctx context.Context) ([]tmdb.Genre, error)
	TVGenres(ctx context.Context) ([]tmdb.Genre, error)
	MoviePage(ctx context.Context, category string, page int) ([]tmdb.MovieSummary, error)
	MovieDetails(ctx context.Context, id int64) (*tmdb.MovieDetails, error)
	TVPage(ctx context.Context, seriesType string, page int) ([]tmdb.SeriesSummary, error)
	TVDetails(ctx context.Context, id int64) (*tmdb.SeriesDetails, error)
	Trailer(ctx context.Context, kind tmdb.Kind, id int64) (string, error)
	ImageURL() string
}

// Syncer pages through the provider's category listings and mirrors them
// into the store until the target count of new items is reached or the
// provider is exhausted.
type Syncer struct {
	client Client
	store  Store
	mapper *Mapper
}

func NewSyncer(client Client, store Store) *Syncer {
	resolver := NewGenreResolver(store)
	return &Syncer{
		client: client,
		store:  store,
		mapper: NewMapper(resolver, client.ImageURL(), client.Trailer),
	}
}

// SyncTaxonomy upserts the genre vocabulary and the fixed category set.
// Failures are logged and do not abort the run; items referencing a
// missing taxonomy row simply lose that reference.
func (s *Syncer) SyncTaxonomy(ctx context.Context) error {
	var firstErr error
	for _, fetch := range []func(context.Context) ([]tmdb.Genre, error){
		s.client.MovieGenres,
		s.client.TVGenres,
	} {
		genres, err := fetch(ctx)
		if err != nil {
			log.WithError(err).Warn("failed to fetch genres")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if err := s.store.SaveGenres(ctx, toModelGenres(genres)); err != nil {
			log.WithError(err).Warn("failed to save genres")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	for _, name := range MovieCategories {
		if _, err := s.store.EnsureCategory(ctx, name); err != nil {
			log.WithError(err).Warnf("failed to ensure category %v", name)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// SyncAll mirrors movies and series in one run. The target applies per
// catalog kind.
func (s *Syncer) SyncAll(ctx context.Context, startPage, target int) error {
	movies, err := s.SyncMovies(ctx, startPage, target)
	log.Infof("movie sync finished, %v new movies", movies)
	if err != nil {
		return err
	}
	series, err := s.SyncSeries(ctx, startPage, target)
	log.Infof("series sync finished, %v new series", series)
	return err
}

// SyncMovies walks the movie categories and returns the count of newly
// persisted movies. Updates of already-present ids do not count.
func (s *Syncer) SyncMovies(ctx context.Context, startPage, target int) (int, error) {
	if err := s.SyncTaxonomy(ctx); err != nil {
		log.WithError(err).Warn("taxonomy sync incomplete, continuing")
	}
	saved := 0
	for _, name := range MovieCategories {
		if saved >= target {
			break
		}
		category, err := s.store.EnsureCategory(ctx, name)
		if err != nil {
			log.WithError(err).Warnf("failed to ensure category %v", name)
			continue
		}
		n, err := s.syncMovieCategory(ctx, category, startPage, target-saved)
		saved += n
		if err != nil {
			return saved, err
		}
		log.Infof("category %v yielded %v new movies", name, n)
	}
	return saved, nil
}

// SyncSeries walks the series types. Counting follows the movie semantic:
// only true inserts increment the accumulator.
func (s *Syncer) SyncSeries(ctx context.Context, startPage, target int) (int, error) {
	if err := s.SyncTaxonomy(ctx); err != nil {
		log.WithError(err).Warn("taxonomy sync incomplete, continuing")
	}
	saved := 0
	for _, seriesType := range SeriesTypes {
		if saved >= target {
			break
		}
		n, err := s.syncSeriesType(ctx, seriesType, startPage, target-saved)
		saved += n
		if err != nil {
			return saved, err
		}
		log.Infof("series type %v yielded %v new series", seriesType, n)
	}
	return saved, nil
}

func (s *Syncer) syncMovieCategory(ctx context.Context, category *models.Category, startPage, target int) (int, error) {
	saved := 0
	for page := startPage; saved < target; page++ {
		if err := ctx.Err(); err != nil {
			return saved, err
		}
		summaries, err := s.client.MoviePage(ctx, category.Name, page)
		if err != nil {
			return saved, errors.Wrapf(err, "failed to fetch movie page %v of %v", page, category.Name)
		}
		if len(summaries) == 0 {
			// Provider exhausted for this category.
			break
		}
		details := s.prefetchMovieDetails(ctx, summaries)
		for _, sum := range summaries {
			if saved >= target {
				break
			}
			movie := s.mapper.MovieFromSummary(ctx, sum, category, details)
			if movie == nil {
				continue
			}
			exists, err := s.store.MovieExists(ctx, movie.ID)
			if err != nil {
				log.WithError(err).Warnf("failed to check movie %v", movie.ID)
				continue
			}
			if err := s.store.SaveMovie(ctx, movie); err != nil {
				// One item's failure must not block the rest of the page.
				log.WithError(err).Warnf("failed to save movie %v", movie.ID)
				continue
			}
			if !exists {
				saved++
			}
		}
	}
	return saved, nil
}

func (s *Syncer) syncSeriesType(ctx context.Context, seriesType string, startPage, target int) (int, error) {
	saved := 0
	for page := startPage; saved < target; page++ {
		if err := ctx.Err(); err != nil {
			return saved, err
		}
		summaries, err := s.client.TVPage(ctx, seriesType, page)
		if err != nil {
			return saved, errors.Wrapf(err, "failed to fetch series page %v of %v", page, seriesType)
		}
		if len(summaries) == 0 {
			break
		}
		details := s.prefetchSeriesDetails(ctx, summaries)
		for _, sum := range summaries {
			if saved >= target {
				break
			}
			serie := s.mapper.SerieFromSummary(ctx, sum, details)
			if serie == nil {
				continue
			}
			exists, err := s.store.SerieExists(ctx, serie.ID)
			if err != nil {
				log.WithError(err).Warnf("failed to check serie %v", serie.ID)
				continue
			}
			if err := s.store.SaveSerie(ctx, serie); err != nil {
				log.WithError(err).Warnf("failed to save serie %v", serie.ID)
				continue
			}
			if !exists {
				saved++
			}
		}
	}
	return saved, nil
}

// prefetchMovieDetails batches the detail lookups once per page so the
// request count stays bounded. A failed lookup leaves the id absent from
// the map, which the mapper treats as failed admission.
func (s *Syncer) prefetchMovieDetails(ctx context.Context, summaries []tmdb.MovieSummary) map[int64]*tmdb.MovieDetails {
	details := make(map[int64]*tmdb.MovieDetails, len(summaries))
	for _, sum := range summaries {
		d, err := s.client.MovieDetails(ctx, sum.ID)
		if err != nil {
			log.WithError(err).Warnf("failed to fetch details for movie %v", sum.ID)
			continue
		}
		if d != nil {
			details[sum.ID] = d
		}
	}
	return details
}

func (s *Syncer) prefetchSeriesDetails(ctx context.Context, summaries []tmdb.SeriesSummary) map[int64]*tmdb.SeriesDetails {
	details := make(map[int64]*tmdb.SeriesDetails, len(summaries))
	for _, sum := range summaries {
		d, err := s.client.TVDetails(ctx, sum.ID)
		if err != nil {
			log.WithError(err).Warnf("failed to fetch details for serie %v", sum.ID)
			continue
		}
		if d != nil {
			details[sum.ID] = d
		}
	}
	return details
}

func toModelGenres(genres []tmdb.Genre) []*models.Genre {
	out := make([]*models.Genre, 0, len(genres))
	for _, g := range genres {
		out = append(out, &models.Genre{ID: g.ID, Name: g.Name})
	}
	return out
}
