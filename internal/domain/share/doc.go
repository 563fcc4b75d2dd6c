// Package share turns host share requests into deliveries to the web surface.
//
// A share Event carries either text or one or more host resource references.
// The Ingestor reads each resource, encodes name, MIME type and content with
// the transport codec and hands the result to a Sink. Multi-file events are
// delivered sequentially with a fixed minimum gap between deliveries.
//
// Failures never abort the process: they are passed to the Reporter, which the
// bridge turns into a transient message.
package share
