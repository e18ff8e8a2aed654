package processor

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"ppv-marketplace/pkg/errors"

	"github.com/disintegration/imaging"
)

type ResizeOption struct {
	Width   int
	Quality int // 1-100
}

var DefaultThumbnail = ResizeOption{Width: 640, Quality: 85}

// NormalizeThumbnail decodes an uploaded cover image, applies its EXIF
// orientation, shrinks it to the target width and re-encodes it as JPEG.
// Images narrower than the target keep their size.
func NormalizeThumbnail(r io.Reader, opt ResizeOption) (*bytes.Buffer, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, errors.ErrInvalidInput(fmt.Errorf("decoding thumbnail: %w", err))
	}
	if opt.Width > 0 && img.Bounds().Dx() > opt.Width {
		img = imaging.Resize(img, opt.Width, 0, imaging.Lanczos)
	}
	if opt.Quality <= 0 || opt.Quality > 100 {
		opt.Quality = DefaultThumbnail.Quality
	}

	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, img, imaging.JPEG, imaging.JPEGQuality(opt.Quality)); err != nil {
		return nil, fmt.Errorf("encoding thumbnail: %w", err)
	}
	return buf, nil
}

// ThumbnailName swaps the extension for the re-encoded format.
func ThumbnailName(filename string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	if base == "" || base == "." {
		base = "thumbnail"
	}
	return base + ".jpg"
}

func MimeTypeFromExtension(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".mp4":
		return "video/mp4"
	case ".mov":
		return "video/quicktime"
	case ".webm":
		return "video/webm"
	case ".mkv":
		return "video/x-matroska"
	default:
		return "application/octet-stream"
	}
}
