package signature

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// transparentPNGDataURI builds a 16x16 PNG with a transparent background
// and a black block in the top-left quadrant, the shape of a canvas
// signature export.
func transparentPNGDataURI(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.Black)
		}
	}

	var buf bytes.Buffer
	assert.NoError(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestSave_EmptyInputIsNotAnError(t *testing.T) {
	store := NewStore(t.TempDir(), "http://localhost:8080")

	url, err := store.Save("")

	assert.NoError(t, err)
	assert.Empty(t, url)
}

func TestSave_WritesJPEGAndReturnsURL(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, "http://localhost:8080/")

	url, err := store.Save(transparentPNGDataURI(t))

	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://localhost:8080/signatures/signature-"), url)
	assert.True(t, strings.HasSuffix(url, ".jpg"), url)

	entries, err := os.ReadDir(dir)
	assert.NoError(t, err)
	assert.Len(t, entries, 1)

	f, err := os.Open(filepath.Join(dir, entries[0].Name()))
	assert.NoError(t, err)
	defer f.Close()
	_, err = jpeg.Decode(f)
	assert.NoError(t, err, "the stored file must be a decodable JPEG")
}

func TestSave_FlattensTransparencyOntoWhite(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, "http://localhost:8080")

	_, err := store.Save(transparentPNGDataURI(t))
	assert.NoError(t, err)

	entries, err := os.ReadDir(dir)
	assert.NoError(t, err)
	f, err := os.Open(filepath.Join(dir, entries[0].Name()))
	assert.NoError(t, err)
	defer f.Close()

	img, err := jpeg.Decode(f)
	assert.NoError(t, err)

	// The transparent quadrant must come out white, not black.
	r, g, b, _ := img.At(14, 14).RGBA()
	assert.Greater(t, r, uint32(55000))
	assert.Greater(t, g, uint32(55000))
	assert.Greater(t, b, uint32(55000))

	// The drawn block stays dark.
	r, _, _, _ = img.At(3, 3).RGBA()
	assert.Less(t, r, uint32(20000))
}

func TestSave_RejectsNonImagePayloads(t *testing.T) {
	store := NewStore(t.TempDir(), "http://localhost:8080")

	cases := []string{
		"not a data uri",
		"data:text/html;base64,PGI+aGk8L2I+",
		"data:image/svg+xml;base64,PHN2Zz48L3N2Zz4=",
		"data:image/png;base64,!!!not-base64!!!",
	}
	for _, in := range cases {
		_, err := store.Save(in)
		assert.ErrorIs(t, err, ErrInvalidDataURI, in)
	}
}

func TestSave_RejectsCorruptImageData(t *testing.T) {
	store := NewStore(t.TempDir(), "http://localhost:8080")

	corrupt := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("junk bytes"))
	_, err := store.Save(corrupt)

	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidDataURI)
}
