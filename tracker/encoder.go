package tracker

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"
)

// Format selects the artifact type to generate.
type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
	FormatPDF Format = "pdf"
)

// PDFMode selects how the PDF carries its callback reference.
type PDFMode string

const (
	// PDFModePixel embeds the beacon pixel, fetched from the live callback
	// URL at generation time.
	PDFModePixel PDFMode = "pixel"
	// PDFModeRedirect places a link annotation over the image that routes
	// through the click endpoint.
	PDFModeRedirect PDFMode = "redirect"
)

var ErrUnsupportedFormat = errors.New("unsupported artifact format")

const (
	canvasWidth  = 800
	canvasHeight = 600
	pageMargin   = 36 // points
)

// Encoder turns an identifier plus optional source image into artifact
// bytes with the callback reference embedded per format.
type Encoder struct {
	BaseURL string
	Client  *http.Client
}

func NewEncoder(baseURL string, pixelTimeout time.Duration) *Encoder {
	return &Encoder{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: pixelTimeout},
	}
}

func (e *Encoder) BeaconURL(id string) string { return e.BaseURL + "/track/" + id }
func (e *Encoder) ClickURL(id string) string  { return e.BaseURL + "/click/" + id }

// Encode dispatches on format. Unknown formats are rejected before any file
// or network I/O.
func (e *Encoder) Encode(format Format, id string, source image.Image, mode PDFMode) ([]byte, error) {
	switch format {
	case FormatPNG:
		return e.EncodePNG(source)
	case FormatSVG:
		return e.EncodeSVG(id)
	case FormatPDF:
		return e.EncodePDF(id, source, mode)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// EncodePNG re-encodes the source losslessly, synthesizing an opaque white
// 800x600 canvas when no source was uploaded. The callback reference is not
// in the pixel data; the proxy route serving the file carries the id.
func (e *Encoder) EncodePNG(source image.Image) ([]byte, error) {
	if source == nil {
		canvas := image.NewRGBA(image.Rect(0, 0, canvasWidth, canvasHeight))
		draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
		source = canvas
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, source); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

const svgTemplate = `<?xml version="1.0" encoding="utf-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="800" height="600">
  <rect width="100%%" height="100%%" fill="#fff"/>
  <text x="10" y="20" font-size="14">Tracked SVG ID: %s</text>
  <image x="0" y="0" width="1" height="1" href="%s" />
</svg>
`

// EncodeSVG emits a minimal document whose single external image reference
// is the callback URL. A conforming renderer fetches it despite the 1x1
// render size.
func (e *Encoder) EncodeSVG(id string) ([]byte, error) {
	return []byte(fmt.Sprintf(svgTemplate, id, e.BeaconURL(id))), nil
}

// EncodePDF centers the source image on a letter page with a margin,
// preserving aspect ratio. Pixel mode then embeds the live beacon pixel at
// 1x1pt; a fetch failure skips the pixel and the document still renders.
// Redirect mode instead covers the image with a link annotation targeting
// the click endpoint.
func (e *Encoder) EncodePDF(id string, source image.Image, mode PDFMode) ([]byte, error) {
	switch mode {
	case PDFModePixel, PDFModeRedirect:
	case "":
		mode = PDFModePixel
	default:
		return nil, fmt.Errorf("unknown pdf mode %q", mode)
	}

	srcBytes, err := e.EncodePNG(source)
	if err != nil {
		return nil, err
	}

	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.AddPage()
	pageW, pageH := pdf.GetPageSize()

	opt := fpdf.ImageOptions{ImageType: "PNG"}
	info := pdf.RegisterImageOptionsReader("artifact", opt, bytes.NewReader(srcBytes))
	if pdf.Err() {
		return nil, fmt.Errorf("register image: %v", pdf.Error())
	}
	iw, ih := info.Extent()

	maxW, maxH := pageW-2*pageMargin, pageH-2*pageMargin
	scale := math.Min(maxW/iw, maxH/ih)
	drawW, drawH := iw*scale, ih*scale
	x := (pageW - drawW) / 2
	y := (pageH - drawH) / 2

	link := ""
	if mode == PDFModeRedirect {
		link = e.ClickURL(id)
	}
	pdf.ImageOptions("artifact", x, y, drawW, drawH, false, opt, 0, link)

	if mode == PDFModePixel {
		if pixel, err := e.fetchPixel(id); err == nil {
			pdf.RegisterImageOptionsReader("pixel", opt, bytes.NewReader(pixel))
			pdf.ImageOptions("pixel", 1, 1, 1, 1, false, opt, 0, "")
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("assemble pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodeQR renders a QR code resolving through the click endpoint, handy
// for printed copies of the artifact.
func (e *Encoder) EncodeQR(id string) ([]byte, error) {
	return qrcode.Encode(e.ClickURL(id), qrcode.Medium, 256)
}

// fetchPixel retrieves the live beacon pixel. The body is verified to be a
// parseable PNG before it goes anywhere near fpdf: feeding fpdf bad bytes
// sets its sticky error and would fail the whole document on Output, while
// a bad pixel is supposed to be skipped silently.
func (e *Encoder) fetchPixel(id string) ([]byte, error) {
	client := e.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Get(e.BeaconURL(id))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pixel fetch status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return nil, err
	}
	if _, err := png.DecodeConfig(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("pixel body is not a png: %w", err)
	}
	return data, nil
}
