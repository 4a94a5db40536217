package database

import (
	"database/sql"
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ninegrid/types"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := InitDatabase(MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func testTile(index int) types.Tile {
	pos := types.Position{Row: index / 3, Col: index % 3}
	return types.Tile{
		Index:        index,
		Position:     pos,
		Bounds:       image.Rect(0, 0, 4, 3),
		Pixels:       []byte{0x89, 'P', 'N', 'G', byte(index)},
		DownloadName: types.DownloadName("", pos),
	}
}

func TestStoreAndLoadTile(t *testing.T) {
	db := newTestDB(t)

	handle, err := StoreTile(db, "b1", testTile(4))
	require.NoError(t, err)
	assert.Equal(t, "tile://b1/4", handle)

	data, err := LoadTile(db, handle)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G', 4}, data)
}

func TestStoreTile_DuplicateIndexRejected(t *testing.T) {
	db := newTestDB(t)

	_, err := StoreTile(db, "b1", testTile(0))
	require.NoError(t, err)
	_, err = StoreTile(db, "b1", testTile(0))
	assert.Error(t, err)
}

func TestReleaseBatch(t *testing.T) {
	db := newTestDB(t)

	for i := 0; i < types.TileCount; i++ {
		_, err := StoreTile(db, "old", testTile(i))
		require.NoError(t, err)
		_, err = StoreTile(db, "new", testTile(i))
		require.NoError(t, err)
	}

	n, err := ReleaseBatch(db, "old")
	require.NoError(t, err)
	assert.EqualValues(t, types.TileCount, n)

	count, err := CountHandles(db)
	require.NoError(t, err)
	assert.Equal(t, types.TileCount, count)

	_, err = LoadTile(db, TileHandle("old", 0))
	assert.ErrorContains(t, err, "released")

	n, err = ReleaseAll(db)
	require.NoError(t, err)
	assert.EqualValues(t, types.TileCount, n)
}

func TestExportStats(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, RecordExport(db, "b1", "ninegrid_1-1.png", nil))
	require.NoError(t, RecordExport(db, "b1", "ninegrid_1-2.png", nil))
	require.NoError(t, RecordExport(db, "b1", "ninegrid_1-3.png", errors.New("disk full")))
	require.NoError(t, RecordExport(db, "b2", "ninegrid_1-1.png", nil))

	stats, err := GetExportStats(db, "b1")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Exported)
	assert.Equal(t, 1, stats.ErrorCount)
}

func TestParseHandle(t *testing.T) {
	batch, index, err := ParseHandle(TileHandle("5f1c-aa", 7))
	require.NoError(t, err)
	assert.Equal(t, "5f1c-aa", batch)
	assert.Equal(t, 7, index)

	for _, bad := range []string{"", "blob:xyz", "tile:///3", "tile://b1/x"} {
		_, _, err := ParseHandle(bad)
		assert.Error(t, err, bad)
	}
}
