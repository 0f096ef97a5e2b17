package movie

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/garmanaz/vidaria/handlers/common"
	"github.com/garmanaz/vidaria/models"
)

// get serves a single movie through the read-through cache.
func (s *Handler) get(c *gin.Context) {
	id, err := common.BindID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	movie, err := s.cache.GetMovie(c.Request.Context(), id)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	if movie == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "movie not found"})
		return
	}
	c.JSON(http.StatusOK, movie)
}

func (s *Handler) create(c *gin.Context) {
	var movie models.Movie
	if err := c.ShouldBindJSON(&movie); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if movie.ID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required"})
		return
	}
	db := s.pg.Get()
	if db == nil {
		_ = c.AbortWithError(http.StatusInternalServerError, errors.New("no db"))
		return
	}
	if err := models.SaveMovie(c.Request.Context(), db, &movie); err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusCreated, movie)
}

func (s *Handler) update(c *gin.Context) {
	id, err := common.BindID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	db := s.pg.Get()
	if db == nil {
		_ = c.AbortWithError(http.StatusInternalServerError, errors.New("no db"))
		return
	}
	exists, err := models.MovieExists(c.Request.Context(), db, id)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "movie not found"})
		return
	}
	var movie models.Movie
	if err := c.ShouldBindJSON(&movie); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	movie.ID = id
	if err := models.SaveMovie(c.Request.Context(), db, &movie); err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	s.cache.InvalidateMovie(c.Request.Context(), id)
	c.JSON(http.StatusOK, movie)
}

func (s *Handler) remove(c *gin.Context) {
	id, err := common.BindID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	db := s.pg.Get()
	if db == nil {
		_ = c.AbortWithError(http.StatusInternalServerError, errors.New("no db"))
		return
	}
	if err := models.DeleteMovie(c.Request.Context(), db, id); err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	s.cache.InvalidateMovie(c.Request.Context(), id)
	c.Status(http.StatusNoContent)
}
