package signature

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var ErrInvalidDataURI = errors.New("signature is not a valid image data URI")

// Store writes decoded signature images under a base directory and returns
// public URLs for them.
type Store struct {
	dir     string
	baseURL string
}

func NewStore(dir, baseURL string) *Store {
	return &Store{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}
}

// Save decodes a base64 image data URI, flattens it onto an opaque white
// background (canvas exports default to transparent) and writes it as a JPEG.
// Returns the public URL of the stored file. An empty input is not an error:
// it returns an empty URL.
func (s *Store) Save(dataURI string) (string, error) {
	if dataURI == "" {
		return "", nil
	}

	raw, err := decodeDataURI(dataURI)
	if err != nil {
		return "", err
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("decode signature image: %w", err)
	}

	flat := flattenOnWhite(img)

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create signature dir: %w", err)
	}

	name := "signature-" + uuid.New().String() + ".jpg"
	path := filepath.Join(s.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create signature file: %w", err)
	}
	defer f.Close()

	if err := jpeg.Encode(f, flat, &jpeg.Options{Quality: 90}); err != nil {
		return "", fmt.Errorf("encode signature: %w", err)
	}

	return s.baseURL + "/signatures/" + name, nil
}

func decodeDataURI(dataURI string) ([]byte, error) {
	if !strings.HasPrefix(dataURI, "data:image/") {
		return nil, ErrInvalidDataURI
	}
	idx := strings.Index(dataURI, ";base64,")
	if idx < 0 {
		return nil, ErrInvalidDataURI
	}
	mediaType := dataURI[len("data:"):idx]
	if mediaType != "image/png" && mediaType != "image/jpeg" {
		return nil, ErrInvalidDataURI
	}
	raw, err := base64.StdEncoding.DecodeString(dataURI[idx+len(";base64,"):])
	if err != nil {
		return nil, ErrInvalidDataURI
	}
	return raw, nil
}

// flattenOnWhite composites the image over an opaque white rectangle.
func flattenOnWhite(img image.Image) *image.RGBA {
	bounds := img.Bounds()
	flat := image.NewRGBA(bounds)
	draw.Draw(flat, bounds, &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.Draw(flat, bounds, img, bounds.Min, draw.Over)
	return flat
}
