package paths

import (
	"os"
	"path/filepath"
	"strings"
)

// Directory names
const (
	DownloadsDirName = "Downloads"
	AppDirName       = "datash"
)

// Downloads returns the platform's public downloads location.
// XDG_DOWNLOAD_DIR wins when set, then $HOME/Downloads, then a temp fallback.
func Downloads() string {
	if dir := os.Getenv("XDG_DOWNLOAD_DIR"); dir != "" {
		return filepath.Clean(dir)
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return filepath.Join(home, DownloadsDirName)
	}
	return FallbackDownloads()
}

// FallbackDownloads returns the temp-scoped downloads directory
func FallbackDownloads() string {
	return filepath.Join(os.TempDir(), AppDirName, "downloads")
}

// Within reports whether path is dir itself or lies below it
func Within(dir, path string) bool {
	rel, err := filepath.Rel(filepath.Clean(dir), filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
