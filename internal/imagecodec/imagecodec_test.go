package imagecodec

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func decoded(t *testing.T, uri string) image.Image {
	t.Helper()
	mediaType, data, err := DecodeDataURI(uri)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", mediaType)
	img, err := imaging.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img
}

func TestCompress_Downsizes(t *testing.T) {
	uri, err := Compress(bytes.NewReader(pngBytes(t, 400, 200)), Preset{MaxWidth: 100, Quality: 70})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(uri, "data:image/jpeg;base64,"))

	img := decoded(t, uri)
	assert.Equal(t, 100, img.Bounds().Dx())
	assert.Equal(t, 50, img.Bounds().Dy())
}

func TestCompress_KeepsSmallImages(t *testing.T) {
	uri, err := Compress(bytes.NewReader(pngBytes(t, 80, 60)), Photo)
	require.NoError(t, err)

	img := decoded(t, uri)
	assert.Equal(t, 80, img.Bounds().Dx())
	assert.Equal(t, 60, img.Bounds().Dy())
}

func TestCompress_NotAnImage(t *testing.T) {
	_, err := Compress(strings.NewReader("plain text"), Photo)
	assert.Error(t, err)
}

func TestDecodeDataURI_Errors(t *testing.T) {
	for _, uri := range []string{"", "http://x", "data:image/png,abc", "data:image/png;base64"} {
		_, _, err := DecodeDataURI(uri)
		assert.ErrorIs(t, err, ErrNotDataURI, uri)
	}
	_, _, err := DecodeDataURI("data:image/png;base64,@@@")
	assert.Error(t, err)
}

func TestExtension(t *testing.T) {
	assert.Equal(t, ".png", Extension("image/png"))
	assert.Equal(t, ".jpg", Extension("image/jpeg"))
	assert.Equal(t, ".jpg", Extension(""))
}
