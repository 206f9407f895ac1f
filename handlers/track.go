package handlers

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/DeepanshiGandhi/Image-Tracker/auth/middleware"
	"github.com/DeepanshiGandhi/Image-Tracker/config"
	"github.com/DeepanshiGandhi/Image-Tracker/geo"
	"github.com/DeepanshiGandhi/Image-Tracker/initializers"
	"github.com/DeepanshiGandhi/Image-Tracker/models"
	"github.com/DeepanshiGandhi/Image-Tracker/store"
	"github.com/DeepanshiGandhi/Image-Tracker/tracker"
)

// GeoResolver is the slice of the geo package the handlers depend on.
type GeoResolver interface {
	Resolve(ctx context.Context, ip string) geo.Result
}

// Tracker carries the injected collaborators for all artifact and beacon
// routes. Nothing here is a package global; main wires it up.
type Tracker struct {
	Store   store.HitStore
	Geo     GeoResolver
	Encoder *tracker.Encoder
	Issuer  *tracker.Issuer
	Mirror  *initializers.S3Mirror // optional
	Cfg     *config.Config
	Log     *zap.Logger
}

// recordHit enriches and appends one hit row. Geo failure only means null
// location columns; a store failure is the caller's to surface.
func (t *Tracker) recordHit(c *gin.Context, trackID string) error {
	ip := c.ClientIP()
	res := t.Geo.Resolve(c.Request.Context(), ip)

	requester := middleware.RequesterID(c)
	if requester == "" {
		requester = models.AnonymousRequester
	}

	hit := &models.Hit{
		TrackID:     trackID,
		RequesterID: requester,
		IPAddress:   ip,
		UserAgent:   c.Request.UserAgent(),
		CreatedAt:   time.Now().UTC(),
	}
	if res.Resolved {
		hit.Latitude = &res.Location.Latitude
		hit.Longitude = &res.Location.Longitude
		hit.City = optString(res.Location.City)
		hit.Region = optString(res.Location.Region)
		hit.Country = optString(res.Location.Country)
	}

	// Beacon clients routinely drop the connection the moment the request
	// fires; the insert is the whole point of the ping and must outlive
	// the request context.
	return t.Store.Record(context.WithoutCancel(c.Request.Context()), hit)
}

// Track serves the beacon pixel. The hit is recorded whether or not the id
// was ever issued, and the response is identical either way.
func (t *Tracker) Track(c *gin.Context) {
	if err := t.recordHit(c, c.Param("id")); err != nil {
		t.Log.Error("hit recording failed", zap.String("track_id", c.Param("id")), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record hit"})
		return
	}
	c.Data(http.StatusOK, "image/png", tracker.TransparentPixel)
}

// Click records the hit and redirects to the configured destination.
func (t *Tracker) Click(c *gin.Context) {
	if err := t.recordHit(c, c.Param("id")); err != nil {
		t.Log.Error("hit recording failed", zap.String("track_id", c.Param("id")), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record hit"})
		return
	}
	c.Redirect(http.StatusFound, t.Cfg.RedirectURL)
}

// ProxyImage records the hit, then streams the stored raster artifact. The
// record survives even when the file was already cleaned up.
func (t *Tracker) ProxyImage(c *gin.Context) {
	if err := t.recordHit(c, c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record hit"})
		return
	}

	path, ok := t.generatedPath(c.Param("name"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}
	c.Header("Content-Type", "image/png")
	c.File(path)
}

// DownloadPDF records the hit, then streams the wrapped PDF as an
// attachment.
func (t *Tracker) DownloadPDF(c *gin.Context) {
	if err := t.recordHit(c, c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record hit"})
		return
	}

	path, ok := t.generatedPath(c.Param("name"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}
	c.FileAttachment(path, filepath.Base(path))
}

var mimeByExt = map[string]string{
	".svg":  "image/svg+xml",
	".png":  "image/png",
	".html": "text/html",
	".pdf":  "application/pdf",
}

// DownloadGenerated streams a previously generated file without recording
// a hit.
func (t *Tracker) DownloadGenerated(c *gin.Context) {
	name := filepath.Base(c.Param("name"))

	path, ok := t.generatedPath(name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}

	mt, found := mimeByExt[strings.ToLower(filepath.Ext(name))]
	if !found {
		mt = "application/octet-stream"
	}
	c.Header("Content-Type", mt)
	c.FileAttachment(path, name)
}

// generatedPath resolves a file name inside the output dir, refusing
// anything that escapes it.
func (t *Tracker) generatedPath(name string) (string, bool) {
	name = filepath.Base(name)
	if name == "." || name == string(filepath.Separator) {
		return "", false
	}

	path := filepath.Join(t.Cfg.OutputDir, name)
	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	return path, true
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
