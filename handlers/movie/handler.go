package movie

import (
	"github.com/gin-gonic/gin"
	cs "github.com/webtor-io/common-services"

	"github.com/garmanaz/vidaria/services/catalog"
)

type Handler struct {
	pg     *cs.PG
	cache  *catalog.Cache
	syncer *catalog.Syncer
}

func RegisterHandler(r *gin.Engine, pg *cs.PG, cache *catalog.Cache, syncer *catalog.Syncer) {
	h := &Handler{
		pg:     pg,
		cache:  cache,
		syncer: syncer,
	}
	gr := r.Group("/movies")
	gr.GET("", h.list)
	gr.GET("/search", h.search)
	gr.GET("/categories", h.categories)
	gr.GET("/category/:name", h.byCategory)
	gr.GET("/best/:genre", h.bestByGenre)
	gr.GET("/:id", h.get)
	gr.POST("", h.create)
	gr.PATCH("/:id", h.update)
	gr.DELETE("/:id", h.remove)
	gr.POST("/sync", h.sync)
}
