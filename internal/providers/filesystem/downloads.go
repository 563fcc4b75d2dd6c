package filesystem

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/GriffinCanCode/Datash/backend/internal/shared/paths"
)

// Downloads persists completed transfers into a single directory
type Downloads struct {
	dir string
	mu  sync.Mutex // serializes name resolution between workers
}

// NewDownloads creates a downloads writer rooted at dir
func NewDownloads(dir string) *Downloads {
	return &Downloads{dir: filepath.Clean(dir)}
}

// Dir returns the downloads directory
func (d *Downloads) Dir() string {
	return d.dir
}

// Save writes data under a collision-free variant of desiredName and returns
// the absolute path of the new file.
func (d *Downloads) Save(desiredName string, data []byte) (string, error) {
	name, err := SanitizeName(desiredName)
	if err != nil {
		return "", err
	}

	f, fullPath, err := d.reserve(name)
	if err != nil {
		return "", err
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(fullPath)
		return "", fmt.Errorf("%w: write %s: %v", ErrFilesystem, fullPath, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(fullPath)
		return "", fmt.Errorf("%w: close %s: %v", ErrFilesystem, fullPath, err)
	}

	return fullPath, nil
}

// reserve resolves a free name and creates the file exclusively so two
// workers saving the same name cannot pick the same target.
func (d *Downloads) reserve(name string) (*os.File, string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	final, err := Resolve(d.dir, name)
	if err != nil {
		return nil, "", err
	}

	fullPath := filepath.Join(d.dir, final)
	if !paths.Within(d.dir, fullPath) {
		return nil, "", fmt.Errorf("%w: %s escapes %s", ErrFilesystem, final, d.dir)
	}

	f, err := os.OpenFile(fullPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, "", fmt.Errorf("%w: %s appeared while saving", ErrFilesystem, final)
		}
		return nil, "", fmt.Errorf("%w: create %s: %v", ErrFilesystem, fullPath, err)
	}
	return f, fullPath, nil
}

// SanitizeName strips any directory components from a web-supplied name
func SanitizeName(name string) (string, error) {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	base = strings.TrimSpace(base)
	if base == "" || base == "." || base == ".." || base == "/" {
		return "", fmt.Errorf("%w: invalid file name %q", ErrFilesystem, name)
	}
	return base, nil
}
