// Package devtools serves an HTTP inspection surface for a state engine.
//
// It exposes the value tree for reading and mutation, engine stats,
// Prometheus metrics, and a WebSocket feed that streams every change.
// It is a consumer of the engine's public contract only: everything it
// does could be done by any other subscriber.
//
//	srv := devtools.New(eng)
//	http.ListenAndServe(":6333", srv.Handler())
package devtools
