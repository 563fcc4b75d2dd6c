// Package transfer provides the in-memory registry of inbound (web → host)
// file transfers.
//
// A transfer is announced by the web layer with beginTransfer and later
// completed with its payload. The registry correlates the two calls by refId
// and is the single source of truth for what a refId is about.
//
// Lifecycle:
//
//	NoRecord --Begin--> Announced --Complete--> Completed
//	                        |
//	                        +--Expire / unknown refId / decode or write error--> Failed
//
// Features:
//   - Atomic lookup-and-remove on Complete
//   - Last-write-wins when a refId is announced twice
//   - Optional time-boxed expiry of abandoned announcements
//   - Safe for concurrent use from the interaction loop and workers
package transfer
