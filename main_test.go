package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"ninegrid/export"
	"ninegrid/types"
)

func TestFinishExport(t *testing.T) {
	var out bytes.Buffer
	assert.NoError(t, finishExport(&out, &export.Report{Total: 9, Complete: true}, nil))

	out.Reset()
	cancelled := fmt.Errorf("%w: %w", types.ErrExport, context.Canceled)
	err := finishExport(&out, &export.Report{Total: 9, Exported: []string{"ninegrid_1-1.png"}}, cancelled)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, out.String(), "Export interrupted.")
	assert.Contains(t, out.String(), "8 tiles were not exported.")

	failed := errors.New("disk full")
	assert.ErrorIs(t, finishExport(&out, nil, failed), failed)
}

func TestPipeline(t *testing.T) {
	_, _, err := pipeline(map[string]string{"renderer": "raster"})
	assert.NoError(t, err)

	_, _, err = pipeline(map[string]string{"renderer": "vips"})
	assert.ErrorContains(t, err, "unknown renderer")

	_, _, err = pipeline(map[string]string{})
	assert.NoError(t, err)
}
