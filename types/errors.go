package types

import "errors"

// Error taxonomy shared by upload, partition and export
var (
	ErrUnsupportedFormat = errors.New("unsupported-format")
	ErrTooLarge          = errors.New("too-large")
	ErrDecode            = errors.New("decode-failure")
	ErrPartition         = errors.New("partition-failure")
	ErrExport            = errors.New("export-failure")

	ErrBatchInFlight = errors.New("export batch already in progress")
	ErrNoImage       = errors.New("no image uploaded")
	ErrNoTiles       = errors.New("no tiles to export")
)
