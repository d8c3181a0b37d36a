// Package server is a small self-hosted stand-in for the hosted table the
// editor syncs to. It answers the two requests internal/remote makes:
//
//	GET  /rest/v1/{table}?id=eq.{id}&select=data
//	POST /rest/v1/{table}?on_conflict=id   (Prefer: resolution=merge-duplicates)
//
// Rows are one JSON document per (table, id), kept in a Backend. Run picks
// RedisBackend when a redis address is configured and MemoryBackend
// otherwise. An optional API key is checked against the apikey header or a
// bearer token. CORS is open so a browser build of the editor can talk to it.
package server
