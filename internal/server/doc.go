// Package server exposes the recognition pipeline over HTTP.
//
// # Routes
//
//	GET  /           liveness message (text/plain)
//	POST /ocr        JSON {"image_url": "...", "orientation": "horizontal|vertical"}
//	POST /ocr_local  multipart form: file field "image", optional field "orientation"
//	GET  /info       recognition backend description
//
// Both recognition routes answer {"text": [...]} with the recognized lines in
// reading order. Orientation defaults to horizontal.
//
// # Errors
//
// Failures are reported as {"error": "..."}:
//   - 400 for caller mistakes: missing file or URL, bad JSON, unknown
//     orientation, undecodable image, unreachable URL
//   - 504 when the request deadline expires
//   - 500 for everything else, including recognition engine failures
//
// # Middleware
//
// Every request gets an id (X-Request-ID, generated when absent) that is
// carried in the context and in log lines. CORS is open to all origins.
// Requests are traced with otelhttp.
package server
