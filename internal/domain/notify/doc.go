/*
Package notify owns the per-transfer host notifications.

One notification exists per transfer, keyed by a 32-bit hash of the transfer's
refId. The Coordinator shows it as an ongoing, indeterminate progress entry when
the transfer is announced and replaces it with a dismissable completion entry
carrying an OpenAction once the file is written.

Activating a completed notification issues a short-lived read-only Grant for
the written file and asks the host Opener to open the grant URL.

	store := notify.NewMemoryStore()
	coord := notify.NewCoordinator(store, logger)

	coord.Announce("ref-1", "photo.png")
	coord.Finish("ref-1", "Download complete: photo.png", notify.OpenAction{Path: path, FileName: "photo.png", MIMEType: "image/png"})
*/
package notify
