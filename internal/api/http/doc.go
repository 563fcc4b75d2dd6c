// Package http provides the REST surface of the Datash host.
//
// Endpoints:
//   - GET  /                          service banner
//   - GET  /health                    host, bridge and transfer status
//   - POST /shares                    submit a share event (text or files)
//   - GET  /notifications             current transfer notifications
//   - POST /notifications/:id/open    open a completed download through a grant
//   - GET  /files/:token              read-only file grant
//
// Errors are answered as {"error": "..."} with the matching status code.
package http
