// Package server exposes the ingestion trigger over HTTP.
//
// # Routes
//
//	GET  /         page with the "Load data" button
//	POST /load     runs one ingestion and re-renders the page with its outcome
//	GET  /metrics  Prometheus exposition
//	GET  /healthz  liveness
//
// POST /load blocks until the run ends. The client only learns success or failure;
// details go to the log.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
//
// [Middleware] uses chi's func(http.Handler) http.Handler shape so chi's own middleware mixes in freely.
package server
