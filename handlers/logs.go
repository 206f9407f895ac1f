package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/DeepanshiGandhi/Image-Tracker/auth/middleware"
)

const logsLimit = 1000

// Logs returns stored hits newest first. Unprivileged callers only see
// rows recorded under their own requester id.
func (t *Tracker) Logs(c *gin.Context) {
	hits, err := t.Store.List(
		c.Request.Context(),
		middleware.RequesterID(c),
		middleware.Privileged(c),
		logsLimit,
	)
	if err != nil {
		t.Log.Error("hit listing failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch hits"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"hits": hits})
}
