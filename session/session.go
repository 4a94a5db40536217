// Package session owns the uploaded image and its current tile batch.
package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"ninegrid/database"
	"ninegrid/export"
	"ninegrid/imageprocessor"
	"ninegrid/logging"
	"ninegrid/notify"
	"ninegrid/types"
	"ninegrid/upload"

	"github.com/google/uuid"
)

// Config wires the collaborators of a session
type Config struct {
	DBPath   string
	Decoder  imageprocessor.Decoder
	Renderer imageprocessor.Renderer
	Saver    export.Saver
	Prefix   string
	MaxSize  int64
	Delay    time.Duration
	Notifier notify.Notifier
	Control  export.Control
}

// Session is the single owner of the current source image and tile batch.
// Both are replaced wholesale, never mutated; a replaced batch releases its
// blob handles.
type Session struct {
	db          *sql.DB
	decoder     imageprocessor.Decoder
	validator   *upload.Validator
	partitioner *imageprocessor.Partitioner
	sequencer   *export.Sequencer
	notifier    notify.Notifier

	mu      sync.Mutex
	source  *types.SourceImage
	batchID string
	tiles   []types.Tile
	closed  bool
}

// New opens the tile store and builds a session
func New(cfg Config) (*Session, error) {
	if cfg.DBPath == "" {
		cfg.DBPath = database.MemoryPath
	}
	if cfg.Decoder == nil {
		if imageprocessor.OpenCVAvailable {
			cfg.Decoder = imageprocessor.NewMatDecoder()
		} else {
			cfg.Decoder = imageprocessor.NewRasterDecoder()
		}
	}
	if cfg.Renderer == nil {
		if imageprocessor.OpenCVAvailable {
			cfg.Renderer = imageprocessor.NewMatRenderer()
		} else {
			cfg.Renderer = imageprocessor.NewRasterRenderer()
		}
	}
	if cfg.Saver == nil {
		return nil, fmt.Errorf("session needs a saver")
	}
	if cfg.Notifier == nil {
		cfg.Notifier = notify.NewToast(nil, 0)
	}

	db, err := database.InitDatabase(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("error initializing tile store: %w", err)
	}

	s := &Session{
		db:          db,
		decoder:     cfg.Decoder,
		validator:   upload.NewValidator(cfg.MaxSize),
		partitioner: imageprocessor.NewPartitioner(cfg.Renderer, cfg.Prefix),
		notifier:    cfg.Notifier,
	}
	s.sequencer = export.NewSequencer(cfg.Saver, export.Options{
		Delay:    cfg.Delay,
		Notifier: cfg.Notifier,
		Control:  cfg.Control,
		OnExport: s.recordExport,
	})

	return s, nil
}

// Upload validates and decodes f, then makes it the current source.
// On any failure the previous source and batch are left untouched.
func (s *Session) Upload(ctx context.Context, f upload.File) error {
	if err := s.validator.Validate(f); err != nil {
		s.notifier.Show(notify.Error, "%s", rejectMessage(err))
		return err
	}

	var res upload.DecodeResult
	select {
	case res = <-upload.Decode(ctx, f, s.decoder):
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", types.ErrDecode, ctx.Err())
	}
	if res.Err != nil {
		s.notifier.Show(notify.Error, "Image failed to load, please try again")
		return res.Err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("session is closed")
	}

	if f.ExtensionMismatch {
		s.notifier.Show(notify.Warning, "%s is actually %s", f.Name, imageprocessor.DisplayName(f.MIMEType))
	}

	src := res.Source
	s.source = &src
	logging.DebugLog("Loaded %s (%dx%d, %d bytes)", src.Name, src.Width, src.Height, src.Size)
	s.notifier.Show(notify.Success, "Image uploaded")
	return nil
}

// Source returns the current source image
func (s *Session) Source() (types.SourceImage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.source == nil {
		return types.SourceImage{}, false
	}
	return *s.source, true
}

// Partition splits the current source into a new batch of nine tiles and
// releases the previous batch. A failure keeps the previous batch.
func (s *Session) Partition(ctx context.Context) ([]types.Tile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, fmt.Errorf("session is closed")
	}
	if s.source == nil {
		s.notifier.Show(notify.Warning, "Upload an image first")
		return nil, types.ErrNoImage
	}

	tiles, err := s.partitioner.Partition(ctx, s.source.Raster)
	if err != nil {
		s.notifier.Show(notify.Error, "Image split failed")
		return nil, err
	}

	batchID := uuid.NewString()
	for i := range tiles {
		handle, err := database.StoreTile(s.db, batchID, tiles[i])
		if err != nil {
			if _, relErr := database.ReleaseBatch(s.db, batchID); relErr != nil {
				logging.LogError("Cannot release partial batch %s: %v", batchID, relErr)
			}
			s.notifier.Show(notify.Error, "Image split failed")
			return nil, fmt.Errorf("%w: %w", types.ErrPartition, err)
		}
		tiles[i].Handle = handle
	}

	if s.batchID != "" {
		if _, err := database.ReleaseBatch(s.db, s.batchID); err != nil {
			logging.LogError("Cannot release batch %s: %v", s.batchID, err)
		}
	}
	s.batchID = batchID
	s.tiles = tiles

	s.notifier.Show(notify.Success, "Image split complete")
	return s.snapshot(), nil
}

// Tiles returns a copy of the current batch without pixel data
func (s *Session) Tiles() []types.Tile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Session) snapshot() []types.Tile {
	out := make([]types.Tile, len(s.tiles))
	for i, tile := range s.tiles {
		tile.Pixels = nil
		out[i] = tile
	}
	return out
}

// ExportOne saves the tile at pos from the current batch
func (s *Session) ExportOne(ctx context.Context, pos types.Position) error {
	tiles, err := s.resolve()
	if err != nil {
		return err
	}

	if pos.Row < 0 || pos.Row >= types.GridSize || pos.Col < 0 || pos.Col >= types.GridSize {
		return fmt.Errorf("position %s is outside the grid", pos)
	}
	return s.sequencer.ExportOne(ctx, tiles[pos.Index()])
}

// ExportAll saves all tiles of the current batch, paced
func (s *Session) ExportAll(ctx context.Context) (*export.Report, error) {
	tiles, err := s.resolve()
	if err != nil {
		return nil, err
	}
	return s.sequencer.ExportAll(ctx, tiles)
}

// resolve loads the encoded bytes of the current batch through its handles
func (s *Session) resolve() ([]types.Tile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.tiles) == 0 {
		s.notifier.Show(notify.Warning, "No tiles to export")
		return nil, types.ErrNoTiles
	}

	tiles := make([]types.Tile, len(s.tiles))
	for i, tile := range s.tiles {
		data, err := database.LoadTile(s.db, tile.Handle)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", types.ErrExport, err)
		}
		tile.Pixels = data
		tiles[i] = tile
	}
	return tiles, nil
}

func (s *Session) recordExport(tile types.Tile, exportErr error) {
	batchID, _, err := database.ParseHandle(tile.Handle)
	if err != nil {
		logging.LogWarning("%v", err)
		return
	}
	if err := database.RecordExport(s.db, batchID, tile.DownloadName, exportErr); err != nil {
		logging.LogWarning("%v", err)
	}
}

// Stats returns export statistics for the current batch
func (s *Session) Stats() (*database.ExportStats, error) {
	s.mu.Lock()
	batchID := s.batchID
	s.mu.Unlock()

	return database.GetExportStats(s.db, batchID)
}

// LiveHandles returns the number of tile blobs still held
func (s *Session) LiveHandles() (int, error) {
	return database.CountHandles(s.db)
}

// Close releases every tile handle and the store. It is safe to call twice.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	n, err := database.ReleaseAll(s.db)
	if err != nil {
		logging.LogError("Cannot release tiles at teardown: %v", err)
	} else {
		logging.DebugLog("Released %d tile handles at teardown", n)
	}

	s.source = nil
	s.tiles = nil
	s.batchID = ""
	return s.db.Close()
}

func rejectMessage(err error) string {
	switch {
	case errors.Is(err, types.ErrUnsupportedFormat):
		return "Only PNG and JPEG images are supported"
	case errors.Is(err, types.ErrTooLarge):
		return "File size cannot exceed the upload limit"
	default:
		return "Upload rejected"
	}
}
