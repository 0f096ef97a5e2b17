package common

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/garmanaz/vidaria/models"
)

// BindID parses the numeric id path param.
func BindID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, errors.Errorf("invalid id: %v", c.Param("id"))
	}
	return id, nil
}

func BindPage(c *gin.Context) models.PageRequest {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "0"))
	return models.PageRequest{
		Page: page,
		Size: size,
	}.Normalize()
}

// BindFilter reads the optional search predicates from the query string.
// Absent parameters impose no constraint.
func BindFilter(c *gin.Context) (*models.CatalogFilter, error) {
	f := &models.CatalogFilter{
		Title:      c.Query("title"),
		Genres:     namesQuery(c, "genres"),
		Categories: namesQuery(c, "categories"),
	}
	var err error
	if f.ReleaseFrom, err = dateQuery(c, "date_from"); err != nil {
		return nil, err
	}
	if f.ReleaseTo, err = dateQuery(c, "date_to"); err != nil {
		return nil, err
	}
	if f.RatingFrom, err = floatQuery(c, "rating_from"); err != nil {
		return nil, err
	}
	if f.RatingTo, err = floatQuery(c, "rating_to"); err != nil {
		return nil, err
	}
	if f.PopularityFrom, err = floatQuery(c, "popularity_from"); err != nil {
		return nil, err
	}
	if f.PopularityTo, err = floatQuery(c, "popularity_to"); err != nil {
		return nil, err
	}
	return f, nil
}

// namesQuery accepts both repeated params and one comma-separated value.
func namesQuery(c *gin.Context, key string) []string {
	names := c.QueryArray(key)
	if len(names) == 1 && strings.Contains(names[0], ",") {
		names = strings.Split(names[0], ",")
	}
	var out []string
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n != "" {
			out = append(out, n)
		}
	}
	return out
}

func dateQuery(c *gin.Context, key string) (*time.Time, error) {
	v := c.Query(key)
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return nil, errors.Errorf("invalid %v: %v", key, v)
	}
	return &t, nil
}

func floatQuery(c *gin.Context, key string) (*float64, error) {
	v := c.Query(key)
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, errors.Errorf("invalid %v: %v", key, v)
	}
	return &f, nil
}
