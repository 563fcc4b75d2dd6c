// Package server wires the Datash host together: configuration, logging,
// metrics, the interaction loop, the worker pool, the transfer bridge and the
// HTTP/WebSocket surface.
//
// Example Usage:
//
//	srv, err := server.NewServer(cfg)
//	if err != nil {
//		return err
//	}
//	defer srv.Close()
//	return srv.Run(ctx)
package server
