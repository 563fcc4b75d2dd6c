// Package ws exposes the transfer bridge to the web surface over WebSocket.
//
// Each connection becomes the current bridge surface. Inbound call frames are
// handed to the bridge; outbound script evaluations, transient messages and
// notification updates are written back as JSON frames encoded with sonic.
//
// Message Types (Client → Server):
//   - call: {"type":"call","method":"beginTransfer","args":["…"]}
//
// Message Types (Server → Client):
//   - system: connection greeting
//   - evaluate: script statement to evaluate
//   - toast: transient message (sticky on failure)
//   - notification: notification created or replaced
//   - pong: reply to the ping() bridge call
//   - error: rejected call or malformed frame
//
// Example Usage:
//
//	handler := ws.NewHandler(dispatcher, store, ws.Options{MaxMessageBytes: 64 << 20}, logger, metrics)
//	router.GET("/bridge", handler.HandleConnection)
package ws
