// Package inspect serves a read-only view of a reactive root over HTTP.
//
// The server keeps the latest JSON snapshot of the root and pushes a
// merge patch (RFC 7386) to every websocket client after each batch of
// changes:
//
//	srv := inspect.New(root)
//	defer srv.Close()
//	http.ListenAndServe(":7070", srv.Handler())
//
// Routes:
//
//	GET /state    current snapshot, with the sequence number in X-Rstate-Seq
//	GET /ws       snapshot message, then one change message per batch
//	GET /metrics  Prometheus exposition
//
// Clients cannot write to the root.
package inspect
