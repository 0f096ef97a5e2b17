package catalog

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/garmanaz/vidaria/models"
	"github.com/garmanaz/vidaria/services/tmdb"
)

const youtubeWatchURL = "https://www.youtube.com/watch?v="

// Policy names the admission rules applied while mapping provider records
// into catalog items.
type Policy struct {
	// MinRuntime drops items whose runtime is not strictly greater, in
	// minutes. Zero disables the gate.
	MinRuntime int64
	// RequireTrailer drops items without a trailer video.
	RequireTrailer bool
}

// Series historically required a trailer while movies did not; kept as an
// explicit policy pending a product decision.
var (
	DefaultMoviePolicy = Policy{MinRuntime: 40}
	DefaultSeriePolicy = Policy{RequireTrailer: true}
)

type TrailerFunc func(ctx context.Context, kind tmdb.Kind, id int64) (string, error)

// Mapper converts provider records into local entities, resolving genre
// references and applying the admission policies.
type Mapper struct {
	resolver    *GenreResolver
	imageURL    string
	trailer     TrailerFunc
	moviePolicy Policy
	seriePolicy Policy
}

func NewMapper(resolver *GenreResolver, imageURL string, trailer TrailerFunc) *Mapper {
	return &Mapper{
		resolver:    resolver,
		imageURL:    imageURL,
		trailer:     trailer,
		moviePolicy: DefaultMoviePolicy,
		seriePolicy: DefaultSeriePolicy,
	}
}

// MovieFromSummary maps one page entry plus its prefetched detail record.
// Returns nil when the item fails admission: no detail record, runtime at
// or below the minimum, or a missing trailer if the policy requires one.
func (s *Mapper) MovieFromSummary(ctx context.Context, sum tmdb.MovieSummary, category *models.Category, details map[int64]*tmdb.MovieDetails) *models.Movie {
	d := details[sum.ID]
	if d == nil {
		return nil
	}
	if d.Runtime == nil || *d.Runtime <= s.moviePolicy.MinRuntime {
		return nil
	}
	movie := &models.Movie{
		ID:          sum.ID,
		Title:       sum.Title,
		Description: sum.Overview,
		ReleaseDate: parseDate(sum.ReleaseDate),
		Cover:       s.imageAbs(sum.PosterPath),
		Background:  s.imageAbs(sum.BackdropPath),
		Popularity:  validPopularity(sum.Popularity),
		Duration:    d.Runtime,
		Rating:      validRating(d.VoteAverage),
		Director:    d.Director(),
	}
	if category != nil {
		movie.CategoryID = &category.ID
		movie.Category = category
	}
	for _, gid := range sum.GenreIDs {
		// Unresolvable ids are dropped from the genre set, not an error.
		if genre := s.resolver.Lookup(ctx, gid); genre != nil {
			movie.Genres = append(movie.Genres, genre)
		}
	}
	key := s.fetchTrailer(ctx, tmdb.KindMovie, sum.ID)
	if key == "" && s.moviePolicy.RequireTrailer {
		return nil
	}
	if key != "" {
		movie.Trailer = youtubeWatchURL + key
	}
	return movie
}

// SerieFromSummary maps one page entry plus its prefetched detail record.
func (s *Mapper) SerieFromSummary(ctx context.Context, sum tmdb.SeriesSummary, details map[int64]*tmdb.SeriesDetails) *models.Serie {
	d := details[sum.ID]
	if d == nil {
		return nil
	}
	serie := &models.Serie{
		ID:               sum.ID,
		Title:            sum.Name,
		Description:      sum.Overview,
		Creator:          seriesCreator(d),
		ReleaseDate:      parseDate(d.FirstAirDate),
		Poster:           s.imageAbs(d.PosterPath),
		Backdrop:         s.imageAbs(d.BackdropPath),
		Rating:           validRating(d.VoteAverage),
		Popularity:       validPopularity(d.Popularity),
		NumberOfSeasons:  d.NumberOfSeasons,
		NumberOfEpisodes: d.NumberOfEpisodes,
		Status:           d.Status,
	}
	for _, g := range d.Genres {
		if genre := s.resolver.Resolve(ctx, g.ID, g.Name); genre != nil {
			serie.Genres = append(serie.Genres, genre)
		}
	}
	for _, season := range d.Seasons {
		serie.Seasons = append(serie.Seasons, &models.Season{
			ID:           season.ID,
			SerieID:      serie.ID,
			Name:         season.Name,
			AirDate:      parseDate(season.AirDate),
			EpisodeCount: season.EpisodeCount,
			SeasonNumber: season.SeasonNumber,
			Poster:       s.imageAbs(season.PosterPath),
		})
	}
	key := s.fetchTrailer(ctx, tmdb.KindTV, sum.ID)
	if key == "" && s.seriePolicy.RequireTrailer {
		return nil
	}
	if key != "" {
		serie.Trailer = youtubeWatchURL + key
	}
	return serie
}

// fetchTrailer degrades to absence on upstream failure.
func (s *Mapper) fetchTrailer(ctx context.Context, kind tmdb.Kind, id int64) string {
	key, err := s.trailer(ctx, kind, id)
	if err != nil {
		log.WithError(err).Warnf("failed to fetch trailer for %v %v", kind, id)
		return ""
	}
	return key
}

func (s *Mapper) imageAbs(path string) string {
	if path == "" {
		return ""
	}
	return s.imageURL + path
}

func parseDate(v string) *time.Time {
	if v == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return nil
	}
	return &t
}

func seriesCreator(d *tmdb.SeriesDetails) string {
	if len(d.CreatedBy) == 0 {
		return "Unknown"
	}
	return d.CreatedBy[0].Name
}

func validRating(v *float64) *float64 {
	if v == nil || *v < 0 || *v > 10 {
		return nil
	}
	return v
}

func validPopularity(v *float64) *float64 {
	if v == nil || *v < 0 {
		return nil
	}
	return v
}
