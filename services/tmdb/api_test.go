package tmdb

import (
	"context"
	"flag"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/urfave/cli"
)

func newTestApi(t *testing.T, h http.Handler) (*Api, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	app := cli.NewApp()
	flagSet := flag.NewFlagSet("test", flag.ContinueOnError)
	flagSet.String(tmdbApiKeyFlag, "test-key", "")
	flagSet.String(tmdbApiURLFlag, srv.URL, "")
	flagSet.String(tmdbImageURLFlag, "https://img.example/w500", "")
	c := cli.NewContext(app, flagSet, nil)

	api := New(c, srv.Client())
	if api == nil {
		t.Fatal("expected an api instance")
	}
	return api, srv
}

func TestNewWithoutKeyReturnsNil(t *testing.T) {
	app := cli.NewApp()
	flagSet := flag.NewFlagSet("test", flag.ContinueOnError)
	flagSet.String(tmdbApiKeyFlag, "", "")
	c := cli.NewContext(app, flagSet, nil)

	if api := New(c, http.DefaultClient); api != nil {
		t.Fatal("expected nil without an api key")
	}
}

func TestMoviePage(t *testing.T) {
	api, _ := newTestApi(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movie/popular" {
			t.Errorf("unexpected path: %v", r.URL.Path)
		}
		if r.URL.Query().Get("api_key") != "test-key" {
			t.Errorf("api key not appended: %v", r.URL.RawQuery)
		}
		if r.URL.Query().Get("page") != "2" {
			t.Errorf("unexpected page: %v", r.URL.Query().Get("page"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"page":2,"results":[{"id":603,"title":"The Matrix"}]}`))
	}))

	res, err := api.MoviePage(context.Background(), "popular", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res) != 1 || res[0].ID != 603 || res[0].Title != "The Matrix" {
		t.Fatalf("unexpected results: %+v", res)
	}
}

func TestMoviePageUnknownCategory(t *testing.T) {
	api, _ := newTestApi(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request to %v", r.URL.Path)
	}))

	if _, err := api.MoviePage(context.Background(), "bogus", 1); err == nil {
		t.Fatal("expected an error for an unknown category")
	}
}

func TestMovieCategoryPath(t *testing.T) {
	path, err := MovieCategoryPath("trending")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != "/trending/movie/day" {
		t.Fatalf("unexpected path: %v", path)
	}
	if _, err := MovieCategoryPath("unheard_of"); err == nil {
		t.Fatal("expected an error")
	}
}

func TestMovieDetailsNotFound(t *testing.T) {
	api, _ := newTestApi(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	d, err := api.MovieDetails(context.Background(), 999)
	if err != nil {
		t.Fatalf("absence must not be an error: %v", err)
	}
	if d != nil {
		t.Fatalf("expected nil details, got %+v", d)
	}
}

func TestMovieDetailsAppendsCredits(t *testing.T) {
	api, _ := newTestApi(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("append_to_response") != "credits" {
			t.Errorf("credits not requested: %v", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":603,"runtime":136,"credits":{"crew":[{"name":"Lana Wachowski","job":"Director"}]}}`))
	}))

	d, err := api.MovieDetails(context.Background(), 603)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d == nil || d.Runtime == nil || *d.Runtime != 136 {
		t.Fatalf("unexpected details: %+v", d)
	}
	if d.Director() != "Lana Wachowski" {
		t.Fatalf("unexpected director: %v", d.Director())
	}
}

func TestGetJSONRetriesTransientFailures(t *testing.T) {
	var calls int
	api, _ := newTestApi(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"genres":[{"id":28,"name":"Action"}]}`))
	}))

	genres, err := api.MovieGenres(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected a retry, got %v calls", calls)
	}
	if len(genres) != 1 || genres[0].Name != "Action" {
		t.Fatalf("unexpected genres: %+v", genres)
	}
}

func TestPickTrailer(t *testing.T) {
	videos := []Video{
		{Key: "teaser", Type: "Teaser"},
		{Key: "first", Type: "Trailer"},
		{Key: "second", Type: "Trailer"},
	}
	if got := PickTrailer(videos); got != "first" {
		t.Fatalf("expected the first trailer, got %v", got)
	}
	if got := PickTrailer(nil); got != "" {
		t.Fatalf("expected empty key, got %v", got)
	}
}
