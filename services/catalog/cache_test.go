package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/garmanaz/vidaria/models"
)

type memKV struct {
	data map[string][]byte
}

func newMemKV() *memKV {
	return &memKV{data: map[string][]byte{}}
}

func (s *memKV) Get(_ context.Context, key string) ([]byte, error) {
	b, ok := s.data[key]
	if !ok {
		return nil, nil
	}
	return b, nil
}

func (s *memKV) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	s.data[key] = value
	return nil
}

func (s *memKV) Del(_ context.Context, key string) error {
	delete(s.data, key)
	return nil
}

type brokenKV struct{}

func (brokenKV) Get(_ context.Context, _ string) ([]byte, error) {
	return nil, errors.New("backend down")
}

func (brokenKV) Set(_ context.Context, _ string, _ []byte, _ time.Duration) error {
	return errors.New("backend down")
}

func (brokenKV) Del(_ context.Context, _ string) error {
	return errors.New("backend down")
}

type countingLoader struct {
	movies     map[int64]*models.Movie
	series     map[int64]*models.Serie
	movieLoads int
	serieLoads int
}

func (s *countingLoader) GetMovie(_ context.Context, id int64) (*models.Movie, error) {
	s.movieLoads++
	return s.movies[id], nil
}

func (s *countingLoader) GetSerie(_ context.Context, id int64) (*models.Serie, error) {
	s.serieLoads++
	return s.series[id], nil
}

func TestCacheServesSecondReadFromBackend(t *testing.T) {
	kv := newMemKV()
	loader := &countingLoader{movies: map[int64]*models.Movie{
		1: {ID: 1, Title: "Cached"},
	}}
	c := newCache(kv, loader, time.Minute)

	movie, err := c.GetMovie(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if movie == nil || movie.Title != "Cached" {
		t.Fatalf("unexpected movie: %+v", movie)
	}
	if loader.movieLoads != 1 {
		t.Fatalf("expected 1 storage load, got %v", loader.movieLoads)
	}

	// A second cache over the same backend must not touch storage at all.
	empty := &countingLoader{}
	c2 := newCache(kv, empty, time.Minute)
	movie, err = c2.GetMovie(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if movie == nil || movie.Title != "Cached" {
		t.Fatalf("unexpected movie from cache: %+v", movie)
	}
	if empty.movieLoads != 0 {
		t.Fatalf("expected 0 storage loads, got %v", empty.movieLoads)
	}
}

func TestCacheBackendFailureDegradesToStorage(t *testing.T) {
	loader := &countingLoader{series: map[int64]*models.Serie{
		2: {ID: 2, Title: "Resilient"},
	}}
	c := newCache(brokenKV{}, loader, time.Minute)

	serie, err := c.GetSerie(context.Background(), 2)
	if err != nil {
		t.Fatalf("backend failure must not surface: %v", err)
	}
	if serie == nil || serie.Title != "Resilient" {
		t.Fatalf("unexpected serie: %+v", serie)
	}
}

func TestCacheWithoutBackend(t *testing.T) {
	loader := &countingLoader{movies: map[int64]*models.Movie{
		3: {ID: 3, Title: "Direct"},
	}}
	c := newCache(nil, loader, time.Minute)

	movie, err := c.GetMovie(context.Background(), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if movie == nil || movie.Title != "Direct" {
		t.Fatalf("unexpected movie: %+v", movie)
	}
}

func TestCacheDoesNotCacheAbsence(t *testing.T) {
	kv := newMemKV()
	c := newCache(kv, &countingLoader{}, time.Minute)

	movie, err := c.GetMovie(context.Background(), 404)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if movie != nil {
		t.Fatalf("expected absence, got %+v", movie)
	}
	if len(kv.data) != 0 {
		t.Fatalf("negative result was cached: %v", kv.data)
	}
}

func TestCacheInvalidate(t *testing.T) {
	kv := newMemKV()
	loader := &countingLoader{movies: map[int64]*models.Movie{
		5: {ID: 5, Title: "Stale"},
	}}
	c := newCache(kv, loader, time.Minute)

	if _, err := c.GetMovie(context.Background(), 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(kv.data) != 1 {
		t.Fatalf("expected a cached entry, got %v", kv.data)
	}
	c.InvalidateMovie(context.Background(), 5)
	if len(kv.data) != 0 {
		t.Fatalf("entry survived invalidation: %v", kv.data)
	}
}
