package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FileSlots stores each slot as <dir>/<slot>.json.
type FileSlots struct {
	dir string
}

// NewFileSlots creates dir if needed.
func NewFileSlots(dir string) (*FileSlots, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", dir, err)
	}
	return &FileSlots{dir: dir}, nil
}

func (f *FileSlots) path(slot string) string {
	return filepath.Join(f.dir, slot+".json")
}

func (f *FileSlots) Read(_ context.Context, slot string) ([]byte, bool, error) {
	if err := validateSlot(slot); err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(f.path(slot))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("error reading slot %s: %w", slot, err)
	}
	return data, true, nil
}

// Write goes through a temporary file and a rename so readers never see a
// half-written document.
func (f *FileSlots) Write(_ context.Context, slot string, data []byte) error {
	if err := validateSlot(slot); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(f.dir, slot+".*.tmp")
	if err != nil {
		return fmt.Errorf("error writing slot %s: %w", slot, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("error writing slot %s: %w", slot, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("error writing slot %s: %w", slot, err)
	}
	if err := os.Rename(tmp.Name(), f.path(slot)); err != nil {
		return fmt.Errorf("error replacing slot %s: %w", slot, err)
	}
	return nil
}
