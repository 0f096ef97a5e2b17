package serie

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/garmanaz/vidaria/handlers/common"
	"github.com/garmanaz/vidaria/models"
)

// get serves a single serie through the read-through cache.
func (s *Handler) get(c *gin.Context) {
	id, err := common.BindID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	serie, err := s.cache.GetSerie(c.Request.Context(), id)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	if serie == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "serie not found"})
		return
	}
	c.JSON(http.StatusOK, serie)
}

func (s *Handler) check(c *gin.Context) {
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
	exists, err := models.SerieExists(c.Request.Context(), db, id)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, exists)
}

func (s *Handler) create(c *gin.Context) {
	var serie models.Serie
	if err := c.ShouldBindJSON(&serie); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if serie.ID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required"})
		return
	}
	db := s.pg.Get()
	if db == nil {
		_ = c.AbortWithError(http.StatusInternalServerError, errors.New("no db"))
		return
	}
	if err := models.SaveSerie(c.Request.Context(), db, &serie); err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusCreated, serie)
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
	exists, err := models.SerieExists(c.Request.Context(), db, id)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "serie not found"})
		return
	}
	var serie models.Serie
	if err := c.ShouldBindJSON(&serie); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	serie.ID = id
	if err := models.SaveSerie(c.Request.Context(), db, &serie); err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	s.cache.InvalidateSerie(c.Request.Context(), id)
	c.JSON(http.StatusOK, serie)
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
	if err := models.DeleteSerie(c.Request.Context(), db, id); err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	s.cache.InvalidateSerie(c.Request.Context(), id)
	c.Status(http.StatusNoContent)
}
