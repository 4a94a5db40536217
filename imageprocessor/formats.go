package imageprocessor

import (
	"path/filepath"
	"strings"
)

// FormatType represents a known image format type
type FormatType string

// Known image format constants
const (
	FormatUnknown FormatType = "unknown"
	FormatJPEG    FormatType = "jpeg"
	FormatPNG     FormatType = "png"
	FormatGIF     FormatType = "gif"
	FormatBMP     FormatType = "bmp"
	FormatWEBP    FormatType = "webp"
	FormatTIFF    FormatType = "tiff"
)

// MIME types accepted for upload
const (
	MIMEPNG     = "image/png"
	MIMEJPEG    = "image/jpeg"
	MIMEJPEGAlt = "image/jpg"
)

// Map of extensions to format types
var formatExtensions = map[string]FormatType{
	".jpg":  FormatJPEG,
	".jpeg": FormatJPEG,
	".png":  FormatPNG,
	".gif":  FormatGIF,
	".bmp":  FormatBMP,
	".webp": FormatWEBP,
	".tif":  FormatTIFF,
	".tiff": FormatTIFF,
}

var formatMIMETypes = map[string]FormatType{
	MIMEPNG:      FormatPNG,
	MIMEJPEG:     FormatJPEG,
	MIMEJPEGAlt:  FormatJPEG,
	"image/gif":  FormatGIF,
	"image/bmp":  FormatBMP,
	"image/webp": FormatWEBP,
	"image/tiff": FormatTIFF,
}

// GetFileFormat returns the format type based on file extension
func GetFileFormat(path string) FormatType {
	ext := strings.ToLower(filepath.Ext(path))
	format, exists := formatExtensions[ext]
	if !exists {
		return FormatUnknown
	}
	return format
}

// ExtensionMatches reports whether the extension of path agrees with mimeType.
// Paths with an unknown extension never disagree.
func ExtensionMatches(path, mimeType string) bool {
	byExt := GetFileFormat(path)
	return byExt == FormatUnknown || byExt == FormatFromMIME(mimeType)
}

// FormatFromMIME returns the format type of a MIME type
func FormatFromMIME(mimeType string) FormatType {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	format, exists := formatMIMETypes[mimeType]
	if !exists {
		return FormatUnknown
	}
	return format
}

// IsAllowedMIME reports whether uploads of this MIME type may be partitioned
func IsAllowedMIME(mimeType string) bool {
	switch FormatFromMIME(mimeType) {
	case FormatPNG, FormatJPEG:
		return true
	default:
		return false
	}
}

// DisplayName returns the upper-case label shown for a MIME type, e.g. "PNG"
func DisplayName(mimeType string) string {
	format := FormatFromMIME(mimeType)
	if format == FormatUnknown {
		return "UNKNOWN"
	}
	return strings.ToUpper(string(format))
}
