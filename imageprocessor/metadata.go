package imageprocessor

import (
	"fmt"
	"os/exec"
	"sort"
	"strings"

	"ninegrid/logging"
	"ninegrid/types"

	"github.com/barasher/go-exiftool"
)

// exifTags are the fields shown alongside the basic source summary
var exifTags = []string{
	"ColorType",
	"BitDepth",
	"ColorComponents",
	"Orientation",
	"Make",
	"Model",
	"DateTimeOriginal",
}

// Metadata describes an uploaded source image
type Metadata struct {
	Width  int
	Height int
	Size   int64
	Format string
	Exif   map[string]string
}

// NewMetadata builds the basic metadata of a decoded source
func NewMetadata(src types.SourceImage) Metadata {
	return Metadata{
		Width:  src.Width,
		Height: src.Height,
		Size:   src.Size,
		Format: DisplayName(src.MIMEType),
	}
}

// Summary renders the one-line description shown after upload
func (m Metadata) Summary() string {
	return fmt.Sprintf("Dimensions: %d × %dpx | File size: %.2fMB | Format: %s",
		m.Width, m.Height, float64(m.Size)/1024/1024, m.Format)
}

// ExifLines renders extracted exif fields in a stable order
func (m Metadata) ExifLines() []string {
	keys := make([]string, 0, len(m.Exif))
	for k := range m.Exif {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%s: %s", k, m.Exif[k]))
	}
	return lines
}

// checkExiftoolCommandAvailable reports whether the exiftool binary is on PATH
func checkExiftoolCommandAvailable() bool {
	_, err := exec.LookPath("exiftool")
	return err == nil
}

// ReadExif extracts a few descriptive tags from the file at path.
// It returns nil without error when exiftool is not installed.
func ReadExif(path string) (map[string]string, error) {
	if !checkExiftoolCommandAvailable() {
		logging.DebugLog("exiftool not found, skipping metadata for %s", path)
		return nil, nil
	}

	et, err := exiftool.NewExiftool()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize exiftool: %w", err)
	}
	defer et.Close()

	fileInfos := et.ExtractMetadata(path)
	if len(fileInfos) == 0 {
		return nil, fmt.Errorf("no metadata extracted from %s", path)
	}

	fileInfo := fileInfos[0]
	if fileInfo.Err != nil {
		return nil, fmt.Errorf("error extracting metadata from %s: %w", path, fileInfo.Err)
	}

	fields := make(map[string]string)
	for _, tag := range exifTags {
		value, ok := fileInfo.Fields[tag]
		if !ok {
			continue
		}
		text := strings.TrimSpace(fmt.Sprint(value))
		if text != "" {
			fields[tag] = text
		}
	}

	return fields, nil
}
