package export

import (
	"fmt"
	"io"
	"time"

	"ninegrid/types"
)

// Report tracks the progress of one batch export
type Report struct {
	Total    int
	Exported []string
	Failed   string
	Err      error
	Started  time.Time
	Finished time.Time
	Complete bool
}

func newReport(total int) *Report {
	return &Report{Total: total, Started: time.Now()}
}

func (r *Report) record(tile types.Tile, err error) {
	if err != nil {
		r.Failed = tile.DownloadName
		r.Err = err
		r.Finished = time.Now()
		return
	}
	r.Exported = append(r.Exported, tile.DownloadName)
}

func (r *Report) finish() {
	r.Finished = time.Now()
	r.Complete = true
}

// Skipped returns how many tiles were never attempted
func (r *Report) Skipped() int {
	n := r.Total - len(r.Exported)
	if r.Failed != "" {
		n--
	}
	return n
}

// Print writes completion statistics for the batch
func (r *Report) Print(w io.Writer) {
	elapsed := r.Finished.Sub(r.Started)
	if r.Finished.IsZero() {
		elapsed = time.Since(r.Started)
	}

	fmt.Fprintf(w, "Exported %d/%d tiles in %v.\n", len(r.Exported), r.Total, elapsed.Round(time.Millisecond))
	if r.Failed != "" {
		fmt.Fprintf(w, "Export of %s failed: %v\n", r.Failed, r.Err)
	}
	if skipped := r.Skipped(); skipped > 0 {
		fmt.Fprintf(w, "%d tiles were not exported.\n", skipped)
	}
}
