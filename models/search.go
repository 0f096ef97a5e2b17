package models

import (
	"strings"
	"time"

	"github.com/go-pg/pg/v10/orm"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PageRequest is a zero-based page cursor.
type PageRequest struct {
	Page int
	Size int
}

func (p PageRequest) Normalize() PageRequest {
	if p.Page < 0 {
		p.Page = 0
	}
	if p.Size <= 0 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

func (p PageRequest) offset() int {
	return p.Page * p.Size
}

type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Size  int `json:"size"`
}

// CatalogFilter holds the optional search predicates. A zero field imposes
// no constraint.
type CatalogFilter struct {
	Title          string
	Genres         []string
	Categories     []string
	ReleaseFrom    *time.Time
	ReleaseTo      *time.Time
	RatingFrom     *float64
	RatingTo       *float64
	PopularityFrom *float64
	PopularityTo   *float64
}

type cond struct {
	expr string
	args []any
}

// conds builds the conjunctive predicate list for the scalar filters.
// Range bounds are inclusive on both ends. Genre and category membership
// require joins and are composed by the callers.
func (f *CatalogFilter) conds(alias string) []cond {
	var cs []cond
	if f.Title != "" {
		cs = append(cs, cond{alias + ".title ILIKE ?", []any{"%" + f.Title + "%"}})
	}
	if f.ReleaseFrom != nil {
		cs = append(cs, cond{alias + ".release_date >= ?", []any{*f.ReleaseFrom}})
	}
	if f.ReleaseTo != nil {
		cs = append(cs, cond{alias + ".release_date <= ?", []any{*f.ReleaseTo}})
	}
	if f.RatingFrom != nil {
		cs = append(cs, cond{alias + ".rating >= ?", []any{*f.RatingFrom}})
	}
	if f.RatingTo != nil {
		cs = append(cs, cond{alias + ".rating <= ?", []any{*f.RatingTo}})
	}
	if f.PopularityFrom != nil {
		cs = append(cs, cond{alias + ".popularity >= ?", []any{*f.PopularityFrom}})
	}
	if f.PopularityTo != nil {
		cs = append(cs, cond{alias + ".popularity <= ?", []any{*f.PopularityTo}})
	}
	return cs
}

func applyConds(q *orm.Query, cs []cond) *orm.Query {
	for _, c := range cs {
		q = q.Where(c.expr, c.args...)
	}
	return q
}

func lowered(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = strings.ToLower(n)
	}
	return out
}
