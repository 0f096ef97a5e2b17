package models

import (
	"testing"
	"time"
)

func TestPageRequestNormalize(t *testing.T) {
	for _, tc := range []struct {
		name string
		in   PageRequest
		want PageRequest
	}{
		{"defaults", PageRequest{}, PageRequest{Page: 0, Size: DefaultPageSize}},
		{"negative page", PageRequest{Page: -3, Size: 10}, PageRequest{Page: 0, Size: 10}},
		{"oversized", PageRequest{Page: 2, Size: 1000}, PageRequest{Page: 2, Size: MaxPageSize}},
		{"kept as is", PageRequest{Page: 4, Size: 50}, PageRequest{Page: 4, Size: 50}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.in.Normalize(); got != tc.want {
				t.Errorf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestCatalogFilterCondsEmpty(t *testing.T) {
	f := &CatalogFilter{}
	if cs := f.conds("movie"); len(cs) != 0 {
		t.Errorf("empty filter produced conditions: %+v", cs)
	}
}

func TestCatalogFilterCondsInclusiveBounds(t *testing.T) {
	rating := 7.0
	from := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	f := &CatalogFilter{
		Title:       "matrix",
		ReleaseFrom: &from,
		RatingFrom:  &rating,
		RatingTo:    &rating,
	}
	cs := f.conds("movie")
	if len(cs) != 4 {
		t.Fatalf("expected 4 conditions, got %v", len(cs))
	}
	wantExprs := []string{
		"movie.title ILIKE ?",
		"movie.release_date >= ?",
		"movie.rating >= ?",
		"movie.rating <= ?",
	}
	for i, want := range wantExprs {
		if cs[i].expr != want {
			t.Errorf("cond %v: got %q, want %q", i, cs[i].expr, want)
		}
	}
	if cs[0].args[0] != "%matrix%" {
		t.Errorf("title arg not wrapped: %v", cs[0].args[0])
	}
	// Both bounds carry the same value so an exact match passes either way.
	if cs[2].args[0] != rating || cs[3].args[0] != rating {
		t.Errorf("rating bounds not inclusive of %v: %v, %v", rating, cs[2].args[0], cs[3].args[0])
	}
}

func TestLowered(t *testing.T) {
	got := lowered([]string{"Action", "SCI-FI", "drama"})
	want := []string{"action", "sci-fi", "drama"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %v: got %q, want %q", i, got[i], want[i])
		}
	}
}
