// Package imagecodec compresses uploaded images into JPEG data URIs.
package imagecodec

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/disintegration/imaging"
)

// Preset bounds the output size and quality.
type Preset struct {
	MaxWidth int `yaml:"max_width"`
	Quality  int `yaml:"quality"`
}

// Default presets per image kind.
var (
	Plan    = Preset{MaxWidth: 2000, Quality: 85}
	Photo   = Preset{MaxWidth: 1200, Quality: 70}
	Receipt = Preset{MaxWidth: 1500, Quality: 80}
)

const jpegPrefix = "data:image/jpeg;base64,"

// ErrNotDataURI is returned when a payload is not a base64 data URI.
var ErrNotDataURI = errors.New("not a base64 data URI")

// Compress decodes an image, shrinks it to p.MaxWidth keeping its aspect
// ratio, and re-encodes it as a JPEG data URI. Narrower images keep their size.
func Compress(r io.Reader, p Preset) (string, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("decoding image: %w", err)
	}
	if p.MaxWidth > 0 && img.Bounds().Dx() > p.MaxWidth {
		img = imaging.Resize(img, p.MaxWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	var opts []imaging.EncodeOption
	if p.Quality > 0 {
		opts = append(opts, imaging.JPEGQuality(p.Quality))
	}
	if err := imaging.Encode(&buf, img, imaging.JPEG, opts...); err != nil {
		return "", fmt.Errorf("encoding image: %w", err)
	}
	return jpegPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// DecodeDataURI returns the media type and raw bytes of a base64 data URI.
func DecodeDataURI(uri string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, ErrNotDataURI
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, ErrNotDataURI
	}
	mediaType, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return "", nil, ErrNotDataURI
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decoding data URI: %w", err)
	}
	return mediaType, data, nil
}

// Extension returns a file extension for a media type.
func Extension(mediaType string) string {
	switch mediaType {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	}
	return ".jpg"
}
