package file

import (
	"mime"
	"path/filepath"
	"strings"
)

func IsVideoFile(filePath string) bool {
	ext := strings.ToLower(filepath.Ext(filePath))
	videoExtensions := []string{".mp4", ".mov", ".mkv", ".webm"}
	for _, v := range videoExtensions {
		if ext == v {
			return true
		}
	}
	return false
}

// IsVideoMIME accepts any video/* content type, falling back to the
// extension when the declared type is empty or generic.
func IsVideoMIME(contentType, filename string) bool {
	if contentType != "" && contentType != "application/octet-stream" {
		mt, _, err := mime.ParseMediaType(contentType)
		return err == nil && strings.HasPrefix(mt, "video/")
	}
	return IsVideoFile(filename)
}

func IsImageFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	imageExtensions := []string{".png", ".jpg", ".jpeg", ".gif"}

	for _, imgExt := range imageExtensions {
		if ext == imgExt {
			return true
		}
	}
	return false
}
