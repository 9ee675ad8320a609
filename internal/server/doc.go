// Package server implements the HTTP API behind "wiring serve".
//
// Routes:
//
//	GET  /api/v1/health   liveness and build version
//	GET  /api/v1/colors   the active color table
//	POST /api/v1/check    validate a YAML harness, respond with the JSON model
//	POST /api/v1/render   validate and render a single diagram
//
// check and render accept a "strict" query parameter. render also takes
// "format" (svg, png, pdf, dot, json), "group" and "combine". Without a group
// every cluster is drawn into one diagram.
//
// Errors are JSON objects {status, code, message}. A strict abort answers 422
// and carries the diagnostic that stopped the build.
package server
