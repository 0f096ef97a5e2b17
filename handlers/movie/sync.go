package movie

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// sync triggers a full movie sync in background with a configurable
// target count and starting page.
func (s *Handler) sync(c *gin.Context) {
	if s.syncer == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "catalog sync is not configured"})
		return
	}
	target, _ := strconv.Atoi(c.DefaultQuery("target", "300"))
	startPage, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if target <= 0 || startPage <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "target and page must be positive"})
		return
	}
	go func() {
		// The run outlives the request.
		saved, err := s.syncer.SyncMovies(context.Background(), startPage, target)
		if err != nil {
			log.WithError(err).Error("movie sync failed")
			return
		}
		log.Infof("movie sync finished, %v new movies", saved)
	}()
	c.JSON(http.StatusAccepted, gin.H{"status": "movie sync started", "target": target, "page": startPage})
}
