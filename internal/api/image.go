package api

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"strings"

	"github.com/nfnt/resize"
)

// maxImageWidth is the widest image stored with a user recipe.
const maxImageWidth = 800

// resizeImage decodes a base64 image, optionally prefixed with a data URL
// header, scales it down to maxImageWidth and re-encodes it in its format.
func resizeImage(encoded string) (string, error) {
	prefix := ""
	if strings.HasPrefix(encoded, "data:") {
		i := strings.Index(encoded, ",")
		if i < 0 {
			return "", fmt.Errorf("malformed data url")
		}
		prefix, encoded = encoded[:i+1], encoded[i+1:]
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("failed to decode base64: %w", err)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	if img.Bounds().Dx() > maxImageWidth {
		img = resize.Resize(maxImageWidth, 0, img, resize.Lanczos3)
	}

	var buf bytes.Buffer
	switch format {
	case "jpeg":
		err = jpeg.Encode(&buf, img, nil)
	case "png":
		err = png.Encode(&buf, img)
	default:
		return "", fmt.Errorf("unsupported image format: %s", format)
	}
	if err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}

	return prefix + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
