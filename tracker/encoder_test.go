package tracker

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEncoder() *Encoder {
	return NewEncoder("http://tracker.test", time.Second)
}

func TestEncoder_Encode_UnsupportedFormat(t *testing.T) {
	_, err := testEncoder().Encode(Format("bmp"), "abcd1234", nil, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestEncoder_EncodeSVG_SingleBeaconReference(t *testing.T) {
	data, err := testEncoder().EncodeSVG("abcd1234")
	require.NoError(t, err)

	svg := string(data)
	assert.True(t, strings.HasPrefix(svg, "<?xml"))
	assert.Contains(t, svg, "Tracked SVG ID: abcd1234")
	assert.Equal(t, 1, strings.Count(svg, "<image"), "exactly one external image reference")
	assert.Contains(t, svg, `href="http://tracker.test/track/abcd1234"`)
}

func TestEncoder_EncodePNG_DefaultCanvas(t *testing.T) {
	data, err := testEncoder().EncodePNG(nil)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)

	bounds := img.Bounds()
	assert.Equal(t, 800, bounds.Dx())
	assert.Equal(t, 600, bounds.Dy())

	r, g, b, a := img.At(0, 0).RGBA()
	assert.Equal(t, []uint32{0xffff, 0xffff, 0xffff, 0xffff}, []uint32{r, g, b, a}, "opaque white canvas")
}

func TestEncoder_EncodePNG_RendersIdentically(t *testing.T) {
	enc := testEncoder()

	first, err := enc.EncodePNG(nil)
	require.NoError(t, err)
	second, err := enc.EncodePNG(nil)
	require.NoError(t, err)

	a, err := png.Decode(bytes.NewReader(first))
	require.NoError(t, err)
	b, err := png.Decode(bytes.NewReader(second))
	require.NoError(t, err)

	require.Equal(t, a.Bounds(), b.Bounds())
	for _, pt := range []image.Point{{0, 0}, {400, 300}, {799, 599}} {
		assert.Equal(t, a.At(pt.X, pt.Y), b.At(pt.X, pt.Y))
	}
}

func TestEncoder_EncodePNG_ReencodesSource(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 10, 10))
	src.Set(3, 3, color.RGBA{R: 255, A: 255})

	data, err := testEncoder().EncodePNG(src)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 10, img.Bounds().Dx())

	r, _, _, a := img.At(3, 3).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Equal(t, uint32(0xffff), a)
}

func TestEncoder_EncodePDF_RedirectMode(t *testing.T) {
	data, err := testEncoder().EncodePDF("abcd1234", nil, PDFModeRedirect)
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
	assert.Contains(t, string(data), "http://tracker.test/click/abcd1234",
		"link annotation targets the click endpoint")
}

func TestEncoder_EncodePDF_PixelModeFetchesBeacon(t *testing.T) {
	var fetched string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetched = r.URL.Path
		w.Header().Set("Content-Type", "image/png")
		w.Write(TransparentPixel)
	}))
	defer srv.Close()

	enc := NewEncoder(srv.URL, time.Second)
	data, err := enc.EncodePDF("abcd1234", nil, PDFModePixel)
	require.NoError(t, err)

	assert.Equal(t, "/track/abcd1234", fetched)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestEncoder_EncodePDF_PixelModeSurvivesFetchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // unreachable callback host at generation time

	enc := NewEncoder(srv.URL, 100*time.Millisecond)
	data, err := enc.EncodePDF("abcd1234", nil, PDFModePixel)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestEncoder_EncodePDF_PixelModeSkipsNonImageBody(t *testing.T) {
	// A proxy or captive portal can answer 200 with an HTML body; the
	// pixel must be dropped without poisoning the document.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html><body>blocked</body></html>"))
	}))
	defer srv.Close()

	enc := NewEncoder(srv.URL, time.Second)
	data, err := enc.EncodePDF("abcd1234", nil, PDFModePixel)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestNewEncoder_TrimsTrailingSlash(t *testing.T) {
	enc := NewEncoder("http://tracker.test/", time.Second)
	assert.Equal(t, "http://tracker.test/track/abcd1234", enc.BeaconURL("abcd1234"))
	assert.Equal(t, "http://tracker.test/click/abcd1234", enc.ClickURL("abcd1234"))
}

func TestEncoder_EncodePDF_UnknownMode(t *testing.T) {
	_, err := testEncoder().EncodePDF("abcd1234", nil, PDFMode("popup"))
	require.Error(t, err)
}

func TestEncoder_EncodeQR(t *testing.T) {
	data, err := testEncoder().EncodeQR("abcd1234")
	require.NoError(t, err)

	_, err = png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
}

func TestTransparentPixel_IsValidPNG(t *testing.T) {
	img, err := png.Decode(bytes.NewReader(TransparentPixel))
	require.NoError(t, err)
	assert.Equal(t, 1, img.Bounds().Dx())
	assert.Equal(t, 1, img.Bounds().Dy())
}
