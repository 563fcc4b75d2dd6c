// Package main is the entry point of the Datash bridge host.
//
// The host accepts calls from a web surface over a WebSocket at /bridge,
// writes transferred files into the downloads directory and tracks each
// transfer as a notification. Content shared with the host, over POST /shares
// or on the command line, is delivered back to the surface once it signals
// ready.
//
// Configuration is layered: defaults, then the YAML file given by --config
// or $CONFIG_FILE, then environment variables, then flags.
//
// Usage:
//
//	# Serve on the default port
//	datash
//
//	# Development mode (console logs, debug level)
//	datash --dev
//
//	# Hand a file to the surface once it is ready
//	datash --share-file ./report.pdf
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
