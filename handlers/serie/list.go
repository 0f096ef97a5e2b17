package serie

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
	page, err := models.GetPaginatedSeries(c.Request.Context(), db, p)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (s *Handler) mostPopular(c *gin.Context) {
	p := common.BindPage(c)
	db := s.pg.Get()
	if db == nil {
		_ = c.AbortWithError(http.StatusInternalServerError, errors.New("no db"))
		return
	}
	page, err := models.GetMostPopularAndTopRatedSeries(c.Request.Context(), db, p)
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
	page, err := models.GetBestSeriesByGenre(c.Request.Context(), db, c.Param("genre"), p)
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
	page, err := models.SearchSeries(c.Request.Context(), db, f, p)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, page)
}
