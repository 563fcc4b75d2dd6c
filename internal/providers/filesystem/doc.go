// Package filesystem provides the host-side file operations of the bridge.
//
// This package is organized into small modules:
//   - naming: collision-free destination names (stem + counter + extension)
//   - downloads: persisting completed inbound transfers
//   - resolver: reading host resources referenced by share events
//
// All operations:
//   - Keep writes inside the configured downloads directory
//   - Wrap directory and write failures in ErrFilesystem
//   - Materialize whole payloads in memory (no streaming)
//
// Example Usage:
//
//	downloads := filesystem.NewDownloads(paths.Downloads())
//	path, err := downloads.Save("photo.png", data)
//	if errors.Is(err, filesystem.ErrFilesystem) {
//	    // directory creation or write failed
//	}
package filesystem
