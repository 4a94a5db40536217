// Package export saves partitioned tiles, one at a time or as a paced batch.
package export

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"ninegrid/logging"
	"ninegrid/notify"
	"ninegrid/types"
)

// DefaultDelay is the pause between successive saves of a batch
const DefaultDelay = 800 * time.Millisecond

// Control labels
const (
	LabelIdle = "Export all tiles"
	LabelBusy = "Exporting..."
)

// Saver performs a single save-file action
type Saver interface {
	Save(ctx context.Context, name string, data []byte) error
}

// Control is the surface that triggers a batch; it is disabled while one runs
type Control interface {
	SetEnabled(enabled bool, label string)
}

// Options configures a Sequencer
type Options struct {
	// Delay between successive saves; zero means DefaultDelay
	Delay time.Duration

	Notifier notify.Notifier
	Control  Control

	// OnExport is called after every save attempt; err is nil on success
	OnExport func(tile types.Tile, err error)
}

// Sequencer runs single and batch exports. At most one batch is in flight.
type Sequencer struct {
	saver    Saver
	delay    time.Duration
	notifier notify.Notifier
	control  Control
	onExport func(types.Tile, error)
	busy     atomic.Bool
}

// NewSequencer creates a sequencer that saves through saver
func NewSequencer(saver Saver, opts Options) *Sequencer {
	delay := opts.Delay
	if delay <= 0 {
		delay = DefaultDelay
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = discard{}
	}
	return &Sequencer{
		saver:    saver,
		delay:    delay,
		notifier: notifier,
		control:  opts.Control,
		onExport: opts.OnExport,
	}
}

// Delay returns the pacing delay between batch saves
func (s *Sequencer) Delay() time.Duration {
	return s.delay
}

// Busy reports whether a batch is in flight
func (s *Sequencer) Busy() bool {
	return s.busy.Load()
}

// ExportOne saves a single tile under its download name
func (s *Sequencer) ExportOne(ctx context.Context, tile types.Tile) error {
	if err := s.save(ctx, tile); err != nil {
		s.notifier.Show(notify.Error, "Export of %s failed", tile.DownloadName)
		return err
	}
	s.notifier.Show(notify.Success, "Export of %s started", tile.DownloadName)
	return nil
}

// ExportAll saves every tile in index order, waiting Delay between saves.
//
// The first failing save ends the batch: tiles already saved are kept and the
// rest are skipped. A call made while another batch is running is rejected
// with types.ErrBatchInFlight.
func (s *Sequencer) ExportAll(ctx context.Context, tiles []types.Tile) (*Report, error) {
	if len(tiles) == 0 {
		s.notifier.Show(notify.Warning, "No tiles to export")
		return nil, types.ErrNoTiles
	}

	if !s.busy.CompareAndSwap(false, true) {
		s.notifier.Show(notify.Warning, "An export is already running")
		return nil, types.ErrBatchInFlight
	}
	defer s.busy.Store(false)

	s.setEnabled(false, LabelBusy)
	defer s.setEnabled(true, LabelIdle)

	ordered := make([]types.Tile, len(tiles))
	copy(ordered, tiles)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Index < ordered[j].Index })

	report := newReport(len(ordered))
	s.notifier.Show(notify.Info, "Preparing batch export...")

	for i, tile := range ordered {
		s.notifier.Show(notify.Info, "Exporting tile %d/%d...", i+1, len(ordered))

		err := s.save(ctx, tile)
		report.record(tile, err)
		if err != nil {
			s.notifier.Show(notify.Error, "Batch export failed")
			return report, err
		}

		if i == len(ordered)-1 {
			break
		}
		if err := sleep(ctx, s.delay); err != nil {
			s.notifier.Show(notify.Warning, "Batch export cancelled after %d/%d tiles", i+1, len(ordered))
			return report, fmt.Errorf("%w: %w", types.ErrExport, err)
		}
	}

	report.finish()
	s.notifier.Show(notify.Success, "All %d tiles exported", len(ordered))
	return report, nil
}

func (s *Sequencer) save(ctx context.Context, tile types.Tile) error {
	err := s.saver.Save(ctx, tile.DownloadName, tile.Pixels)
	if err != nil {
		err = fmt.Errorf("%w: %s: %w", types.ErrExport, tile.DownloadName, err)
		logging.LogTileExported(tile.DownloadName, false, err.Error())
	} else {
		logging.LogTileExported(tile.DownloadName, true, "")
	}

	if s.onExport != nil {
		s.onExport(tile, err)
	}
	return err
}

func (s *Sequencer) setEnabled(enabled bool, label string) {
	if s.control != nil {
		s.control.SetEnabled(enabled, label)
	}
}

// sleep waits for d or until ctx is done
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type discard struct{}

func (discard) Show(notify.Level, string, ...interface{}) {}
