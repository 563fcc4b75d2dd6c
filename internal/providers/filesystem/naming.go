package filesystem

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// SplitName splits a file name into stem and extension at the last dot.
// An empty extension (no dot, or a trailing dot) is reported as absent.
func SplitName(name string) (stem, ext string) {
	i := strings.LastIndex(name, ".")
	if i < 0 || i == len(name)-1 {
		return name, ""
	}
	return name[:i], name[i+1:]
}

// candidateName builds the name tried for a given counter
func candidateName(desired, stem, ext string, counter int) string {
	if counter == 0 {
		return desired
	}
	if ext == "" {
		return stem + strconv.Itoa(counter)
	}
	return stem + strconv.Itoa(counter) + "." + ext
}

// Resolve returns the first name derived from desiredName that does not exist
// in targetDir, creating targetDir (with parents) if it is missing.
//
// Candidates are tried in order: desiredName, stem1.ext, stem2.ext, ...
// The result is only valid for the directory snapshot seen during the call.
func Resolve(targetDir, desiredName string) (string, error) {
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return "", fmt.Errorf("%w: create %s: %v", ErrFilesystem, targetDir, err)
	}

	stem, ext := SplitName(desiredName)
	for counter := 0; ; counter++ {
		name := candidateName(desiredName, stem, ext, counter)

		_, err := os.Lstat(filepath.Join(targetDir, name))
		if errors.Is(err, fs.ErrNotExist) {
			return name, nil
		}
		if err != nil {
			return "", fmt.Errorf("%w: stat %s: %v", ErrFilesystem, name, err)
		}
	}
}
