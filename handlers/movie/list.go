package movie

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/garmanaz/vidaria/handlers/common"
	"github.com/garmanaz/vidaria/models"
)

func (s *Handler) list(c *gin.Context) {
	p := common.BindPage(c)
	db := s.pg.Get()
	if db == nil {
		_ = c.AbortWithError(http.StatusInternalServerError, errors.New("no db"))
		return
	}
	page, err := models.GetPaginatedMovies(c.Request.Context(), db, p)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (s *Handler) categories(c *gin.Context) {
	db := s.pg.Get()
	if db == nil {
		_ = c.AbortWithError(http.StatusInternalServerError, errors.New("no db"))
		return
	}
	categories, err := models.GetCategories(c.Request.Context(), db)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (s *Handler) byCategory(c *gin.Context) {
	p := common.BindPage(c)
	db := s.pg.Get()
	if db == nil {
		_ = c.AbortWithError(http.StatusInternalServerError, errors.New("no db"))
		return
	}
	category, err := models.GetCategoryByName(c.Request.Context(), db, c.Param("name"))
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	if category == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "category not found"})
		return
	}
	page, err := models.GetMoviesByCategory(c.Request.Context(), db, category.Name, p)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (s *Handler) bestByGenre(c *gin.Context) {
	p := common.BindPage(c)
	db := s.pg.Get()
	if db == nil {
		_ = c.AbortWithError(http.StatusInternalServerError, errors.New("no db"))
		return
	}
	page, err := models.GetBestMoviesByGenre(c.Request.Context(), db, c.Param("genre"), p)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (s *Handler) search(c *gin.Context) {
	f, err := common.BindFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p := common.BindPage(c)
	db := s.pg.Get()
	if db == nil {
		_ = c.AbortWithError(http.StatusInternalServerError, errors.New("no db"))
		return
	}
	page, err := models.SearchMovies(c.Request.Context(), db, f, p)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, page)
}
