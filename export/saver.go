package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// DirSaver writes each save into an output directory
type DirSaver struct {
	Dir       string
	Overwrite bool
}

// NewDirSaver creates the output directory if needed
func NewDirSaver(dir string, overwrite bool) (*DirSaver, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("cannot create output folder %s: %w", dir, err)
	}
	return &DirSaver{Dir: dir, Overwrite: overwrite}, nil
}

// Save writes data to Dir/name. Existing files are kept unless Overwrite is set.
func (s *DirSaver) Save(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path := filepath.Join(s.Dir, filepath.Base(name))

	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if !s.Overwrite {
		flags = os.O_CREATE | os.O_WRONLY | os.O_EXCL
	}

	f, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return fmt.Errorf("cannot create %s: %w", path, err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("cannot write %s: %w", path, err)
	}
	return f.Close()
}
