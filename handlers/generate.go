package handlers

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/DeepanshiGandhi/Image-Tracker/tracker"
)

type generatedFile struct {
	Kind string `json:"kind"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Generate issues a fresh identifier and writes the requested artifact
// under the output dir. PNG mode keeps the original pairing: the raster
// artifact plus a pixel-PDF wrapper around it. Every generation also emits
// a QR code resolving through the click endpoint.
func (t *Tracker) Generate(c *gin.Context) {
	format := tracker.Format(c.DefaultPostForm("mode", "png"))
	pdfMode := tracker.PDFMode(c.DefaultPostForm("pdf_mode", string(tracker.PDFModePixel)))

	switch format {
	case tracker.FormatPNG, tracker.FormatSVG, tracker.FormatPDF:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Unsupported format %q", format)})
		return
	}
	switch pdfMode {
	case tracker.PDFModePixel, tracker.PDFModeRedirect:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Unsupported pdf mode %q", pdfMode)})
		return
	}

	source, err := t.sourceImage(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not decode uploaded image"})
		return
	}

	id, err := t.Issuer.Issue()
	if err != nil {
		t.Log.Error("identifier issue failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue identifier"})
		return
	}

	var files []generatedFile
	save := func(kind, name, contentType string, data []byte) bool {
		url, err := t.saveArtifact(c, name, contentType, data)
		if err != nil {
			t.Log.Error("artifact write failed", zap.String("name", name), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write artifact"})
			return false
		}
		files = append(files, generatedFile{Kind: kind, Name: name, URL: url})
		return true
	}

	switch format {
	case tracker.FormatSVG:
		data, err := t.Encoder.EncodeSVG(id)
		if err != nil {
			t.Log.Error("svg encode failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to encode artifact"})
			return
		}
		if !save("SVG", "tracked_"+id+".svg", "image/svg+xml", data) {
			return
		}

	case tracker.FormatPNG:
		data, err := t.Encoder.EncodePNG(source)
		if err != nil {
			t.Log.Error("png encode failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to encode artifact"})
			return
		}
		if !save("PNG", "tracked_"+id+".png", "image/png", data) {
			return
		}

		pdfData, err := t.Encoder.EncodePDF(id, source, tracker.PDFModePixel)
		if err != nil {
			t.Log.Error("pdf wrap failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to encode artifact"})
			return
		}
		if !save("PDF", "wrapped_"+id+".pdf", "application/pdf", pdfData) {
			return
		}

	case tracker.FormatPDF:
		data, err := t.Encoder.EncodePDF(id, source, pdfMode)
		if err != nil {
			t.Log.Error("pdf encode failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to encode artifact"})
			return
		}
		if !save("PDF", "wrapped_"+id+".pdf", "application/pdf", data) {
			return
		}
	}

	if qr, err := t.Encoder.EncodeQR(id); err == nil {
		save("QR", "qr_"+id+".png", "image/png", qr)
	}

	c.JSON(http.StatusOK, gin.H{
		"track_id":   id,
		"beacon_url": t.Encoder.BeaconURL(id),
		"click_url":  t.Encoder.ClickURL(id),
		"files":      files,
	})
}

func (t *Tracker) sourceImage(c *gin.Context) (image.Image, error) {
	fh, err := c.FormFile("image")
	if err != nil {
		return nil, nil // no upload, encoder synthesizes the canvas
	}

	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}
	return img, nil
}

// saveArtifact writes to local disk and, when configured, mirrors the
// bytes to S3. Mirror failures are logged and ignored.
func (t *Tracker) saveArtifact(c *gin.Context, name, contentType string, data []byte) (string, error) {
	if err := os.MkdirAll(t.Cfg.OutputDir, 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(t.Cfg.OutputDir, name), data, 0o644); err != nil {
		return "", err
	}

	if t.Mirror != nil {
		if err := t.Mirror.Upload(c.Request.Context(), name, contentType, data); err != nil {
			t.Log.Warn("s3 mirror failed", zap.String("name", name), zap.Error(err))
		}
	}

	return t.Cfg.BaseURL + "/generated/" + name, nil
}
