/*
Package bridge is the transfer bridge between the host and the web surface.

Outbound, the host delivers shared text and files by evaluating script
statements on the surface. All payload fields are base-64 encoded beforehand,
so they can be embedded in a double-quoted script literal unchanged.

Inbound, the surface calls four methods:

	ready()                                                   page finished loading
	beginTransfer(refId, sourceId, fileName, size, mimeType)   a download is starting
	completeTransfer(refId, base64Content)                     the download's payload
	ping()                                                     liveness check

Every inbound call is moved onto the interaction loop before it touches state.
Decoding and writing a completed download run on the worker pool, and the
result is applied back on the loop.

Transfer lifecycle per refId:

	NoRecord --beginTransfer--> Announced --completeTransfer--> Completed
	                                |                     \--> Failed (decode/write error)
	                                \--expiry--> Failed

Shares arriving before the surface signalled ready() are held by the readiness
Gate and delivered once, in arrival order, when it opens.
*/
package bridge
