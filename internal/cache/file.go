package cache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/born-ml/dataprep/internal/descriptor"
)

// DescriptorFile is the descriptor's file name inside a dataset directory.
const DescriptorFile = "info.json"

// FileCache stores descriptors as <root>/<name>/info.json.
type FileCache struct {
	root string
}

// NewFileCache returns a file-backed cache rooted at the dataset output directory.
func NewFileCache(root string) *FileCache {
	return &FileCache{root: root}
}

// Root returns the dataset output directory.
func (c *FileCache) Root() string {
	return c.root
}

func (c *FileCache) path(name string) string {
	return filepath.Join(c.root, name, DescriptorFile)
}

// Load reads and decodes <root>/<name>/info.json.
func (c *FileCache) Load(_ context.Context, name string) (*descriptor.Descriptor, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	f, err := os.Open(c.path(name)) //nolint:gosec // G304: path built from validated dataset name
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("failed to open descriptor: %w", err)
	}
	defer f.Close()

	d, err := descriptor.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load descriptor for %s: %w", name, err)
	}
	return d, nil
}

// Store writes the descriptor to a temporary file and renames it into place.
func (c *FileCache) Store(_ context.Context, d *descriptor.Descriptor) error {
	if err := ValidateName(d.Dataset); err != nil {
		return err
	}
	data, err := descriptor.Marshal(d)
	if err != nil {
		return err
	}

	dir := filepath.Join(c.root, d.Dataset)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create dataset directory: %w", err)
	}
	return writeFileAtomic(c.path(d.Dataset), data)
}

// Stage writes d as the descriptor file of a dataset staging directory, so renaming that
// directory onto <root>/<name> commits payloads and descriptor together.
func (c *FileCache) Stage(stagingDir string, d *descriptor.Descriptor) error {
	if err := ValidateName(d.Dataset); err != nil {
		return err
	}
	data, err := descriptor.Marshal(d)
	if err != nil {
		return err
	}
	return writeFileAtomic(filepath.Join(stagingDir, DescriptorFile), data)
}

// Delete removes the descriptor file, leaving payloads in place.
func (c *FileCache) Delete(_ context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if err := os.Remove(c.path(name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete descriptor: %w", err)
	}
	return nil
}

// Names lists subdirectories of the root that contain a descriptor file.
func (c *FileCache) Names(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(c.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list %s: %w", c.root, err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() || ValidateName(e.Name()) != nil || IsTransient(e.Name()) {
			continue
		}
		if _, err := os.Stat(c.path(e.Name())); err == nil {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)
	return names, nil
}

// Close is a no-op.
func (c *FileCache) Close() error {
	return nil
}

func writeFileAtomic(path string, data []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write %s: %w", tmp.Name(), err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync %s: %w", tmp.Name(), err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmp.Name(), err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to rename descriptor into place: %w", err)
	}
	return nil
}
