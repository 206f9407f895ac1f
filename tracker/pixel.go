package tracker

import (
	"bytes"
	"image"
	"image/png"
)

// TransparentPixel is the 1x1 transparent PNG returned on beacon pings,
// pre-encoded once at startup.
var TransparentPixel = func() []byte {
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 1, 1))); err != nil {
		panic(err)
	}
	return buf.Bytes()
}()
