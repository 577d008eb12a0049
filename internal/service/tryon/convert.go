package tryon

import (
	"bytes"
	"image"
	"image/png"

	_ "image/jpeg"

	_ "golang.org/x/image/webp"
)

// normalizePNG re-encodes an output image (the service returns png, jpeg
// or webp depending on the space) into PNG for the artifact store.
func normalizePNG(raw []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
