package catalog

import (
	"context"
	"fmt"
	"testing"

	"github.com/pkg/errors"

	"github.com/garmanaz/vidaria/models"
	"github.com/garmanaz/vidaria/services/tmdb"
)

type fakeClient struct {
	moviePages    map[string]map[int][]tmdb.MovieSummary
	seriesPages   map[string]map[int][]tmdb.SeriesSummary
	movieDetails  map[int64]*tmdb.MovieDetails
	seriesDetails map[int64]*tmdb.SeriesDetails
	moviePageErr  error
	requests      []string
}

func (s *fakeClient) MovieGenres(_ context.Context) ([]tmdb.Genre, error) {
	return []tmdb.Genre{{ID: 28, Name: "Action"}}, nil
}

func (s *fakeClient) TVGenres(_ context.Context) ([]tmdb.Genre, error) {
	return []tmdb.Genre{{ID: 18, Name: "Drama"}}, nil
}

func (s *fakeClient) MoviePage(_ context.Context, category string, page int) ([]tmdb.MovieSummary, error) {
	s.requests = append(s.requests, fmt.Sprintf("%v/%v", category, page))
	if s.moviePageErr != nil {
		return nil, s.moviePageErr
	}
	return s.moviePages[category][page], nil
}

func (s *fakeClient) MovieDetails(_ context.Context, id int64) (*tmdb.MovieDetails, error) {
	return s.movieDetails[id], nil
}

func (s *fakeClient) TVPage(_ context.Context, seriesType string, page int) ([]tmdb.SeriesSummary, error) {
	s.requests = append(s.requests, fmt.Sprintf("%v/%v", seriesType, page))
	return s.seriesPages[seriesType][page], nil
}

func (s *fakeClient) TVDetails(_ context.Context, id int64) (*tmdb.SeriesDetails, error) {
	return s.seriesDetails[id], nil
}

func (s *fakeClient) Trailer(_ context.Context, kind tmdb.Kind, _ int64) (string, error) {
	if kind == tmdb.KindTV {
		return "tv-trailer", nil
	}
	return "", nil
}

func (s *fakeClient) ImageURL() string {
	return "https://img.example/w500"
}

func (s *fakeClient) requested(key string) bool {
	for _, r := range s.requests {
		if r == key {
			return true
		}
	}
	return false
}

type fakeStore struct {
	movies     map[int64]*models.Movie
	series     map[int64]*models.Serie
	genres     map[int64]*models.Genre
	categories map[string]*models.Category
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		movies:     map[int64]*models.Movie{},
		series:     map[int64]*models.Serie{},
		genres:     map[int64]*models.Genre{},
		categories: map[string]*models.Category{},
	}
}

func (s *fakeStore) MovieExists(_ context.Context, id int64) (bool, error) {
	_, ok := s.movies[id]
	return ok, nil
}

func (s *fakeStore) SaveMovie(_ context.Context, movie *models.Movie) error {
	s.movies[movie.ID] = movie
	return nil
}

func (s *fakeStore) GetMovie(_ context.Context, id int64) (*models.Movie, error) {
	return s.movies[id], nil
}

func (s *fakeStore) SerieExists(_ context.Context, id int64) (bool, error) {
	_, ok := s.series[id]
	return ok, nil
}

func (s *fakeStore) SaveSerie(_ context.Context, serie *models.Serie) error {
	s.series[serie.ID] = serie
	return nil
}

func (s *fakeStore) GetSerie(_ context.Context, id int64) (*models.Serie, error) {
	return s.series[id], nil
}

func (s *fakeStore) GetGenre(_ context.Context, id int64) (*models.Genre, error) {
	return s.genres[id], nil
}

func (s *fakeStore) GetOrCreateGenre(_ context.Context, id int64, name string) (*models.Genre, error) {
	if g, ok := s.genres[id]; ok {
		return g, nil
	}
	g := &models.Genre{ID: id, Name: name}
	s.genres[id] = g
	return g, nil
}

func (s *fakeStore) SaveGenres(_ context.Context, genres []*models.Genre) error {
	for _, g := range genres {
		s.genres[g.ID] = g
	}
	return nil
}

func (s *fakeStore) EnsureCategory(_ context.Context, name string) (*models.Category, error) {
	if c, ok := s.categories[name]; ok {
		return c, nil
	}
	c := &models.Category{ID: int64(len(s.categories) + 1), Name: name}
	s.categories[name] = c
	return c, nil
}

func mins(v int64) *int64 { return &v }

func movieSummaries(ids ...int64) []tmdb.MovieSummary {
	out := make([]tmdb.MovieSummary, 0, len(ids))
	for _, id := range ids {
		out = append(out, tmdb.MovieSummary{ID: id, Title: fmt.Sprintf("Movie %v", id)})
	}
	return out
}

func admittableMovieDetails(ids ...int64) map[int64]*tmdb.MovieDetails {
	out := map[int64]*tmdb.MovieDetails{}
	for _, id := range ids {
		out[id] = &tmdb.MovieDetails{ID: id, Runtime: mins(120)}
	}
	return out
}

func TestSyncMoviesStopsAtTarget(t *testing.T) {
	cl := &fakeClient{
		moviePages: map[string]map[int][]tmdb.MovieSummary{
			"popular": {
				1: movieSummaries(1, 2, 5),
				2: movieSummaries(3, 2),
			},
		},
		movieDetails: admittableMovieDetails(1, 2, 3),
	}
	// Movie 5 fails admission by runtime.
	cl.movieDetails[5] = &tmdb.MovieDetails{ID: 5, Runtime: mins(30)}
	store := newFakeStore()
	s := NewSyncer(cl, store)

	saved, err := s.SyncMovies(context.Background(), 1, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved != 3 {
		t.Fatalf("expected 3 new movies, got %v", saved)
	}
	for _, id := range []int64{1, 2, 3} {
		if _, ok := store.movies[id]; !ok {
			t.Errorf("movie %v not persisted", id)
		}
	}
	if _, ok := store.movies[5]; ok {
		t.Error("inadmissible movie 5 was persisted")
	}
	if cl.requested("popular/3") {
		t.Error("fetched a page past the target")
	}
	if cl.requested("top_rated/1") {
		t.Error("fetched the next category after reaching the target")
	}
}

func TestSyncMoviesSecondRunCountsNothing(t *testing.T) {
	cl := &fakeClient{
		moviePages: map[string]map[int][]tmdb.MovieSummary{
			"popular": {
				1: movieSummaries(1, 2),
			},
		},
		movieDetails: admittableMovieDetails(1, 2),
	}
	store := newFakeStore()
	s := NewSyncer(cl, store)

	saved, err := s.SyncMovies(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved != 2 {
		t.Fatalf("expected 2 new movies on first run, got %v", saved)
	}

	saved, err = s.SyncMovies(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved != 0 {
		t.Fatalf("expected 0 new movies on second run, got %v", saved)
	}
}

func TestSyncSeriesUpdatesDoNotCount(t *testing.T) {
	cl := &fakeClient{
		seriesPages: map[string]map[int][]tmdb.SeriesSummary{
			"popular": {
				1: {
					{ID: 100, Name: "Old Show"},
					{ID: 200, Name: "New Show"},
				},
			},
		},
		seriesDetails: map[int64]*tmdb.SeriesDetails{
			100: {ID: 100, Name: "Old Show"},
			200: {ID: 200, Name: "New Show"},
		},
	}
	store := newFakeStore()
	store.series[100] = &models.Serie{ID: 100, Title: "Old Show"}
	s := NewSyncer(cl, store)

	saved, err := s.SyncSeries(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved != 1 {
		t.Fatalf("expected 1 new serie, got %v", saved)
	}
	if len(store.series) != 2 {
		t.Fatalf("expected 2 series persisted, got %v", len(store.series))
	}
}

func TestSyncMoviesAbortsOnPageError(t *testing.T) {
	cl := &fakeClient{
		moviePageErr: errors.New("upstream down"),
	}
	s := NewSyncer(cl, newFakeStore())

	saved, err := s.SyncMovies(context.Background(), 1, 10)
	if err == nil {
		t.Fatal("expected an error")
	}
	if saved != 0 {
		t.Fatalf("expected 0 saved, got %v", saved)
	}
}

func TestSyncMoviesStopsOnCancelledContext(t *testing.T) {
	cl := &fakeClient{
		moviePages: map[string]map[int][]tmdb.MovieSummary{
			"popular": {1: movieSummaries(1)},
		},
		movieDetails: admittableMovieDetails(1),
	}
	s := NewSyncer(cl, newFakeStore())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	saved, err := s.SyncMovies(ctx, 1, 10)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if saved != 0 {
		t.Fatalf("expected 0 saved, got %v", saved)
	}
}

func TestSyncTaxonomyPersistsGenresAndCategories(t *testing.T) {
	cl := &fakeClient{}
	store := newFakeStore()
	s := NewSyncer(cl, store)

	if err := s.SyncTaxonomy(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.genres[28] == nil || store.genres[18] == nil {
		t.Error("genres not persisted")
	}
	for _, name := range MovieCategories {
		if store.categories[name] == nil {
			t.Errorf("category %v not persisted", name)
		}
	}
}
