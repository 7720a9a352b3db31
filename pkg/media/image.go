package media

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

const (
	defaultJPEGQuality = 80
	fullJPEGQuality    = 100
)

// ReencodeImage decodes an uploaded image of any supported format and
// re-encodes it as JPEG. Re-encoding strips metadata and normalizes what
// ends up in object storage.
func ReencodeImage(data []byte, fullQuality bool) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	quality := defaultJPEGQuality
	if fullQuality {
		quality = fullJPEGQuality
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encoding image: %w", err)
	}
	return buf.Bytes(), nil
}
