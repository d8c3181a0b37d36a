// Package remote provides the HTTP client for the shared prayer-times record.
//
// # Overview
//
// The remote is a PostgREST-style table (Supabase or the bundled `iqama
// serve`) holding one row per record id. The row's data column carries the
// whole dataset as an opaque JSON document; there are no partial updates.
//
// # Endpoints
//
//	GET  {url}/rest/v1/{table}?id=eq.{record}&select=data
//	POST {url}/rest/v1/{table}?on_conflict=id
//	     Prefer: resolution=merge-duplicates,return=minimal
//	     body:   [{"id": "{record}", "data": {...}}]
//
// Both requests carry the key twice, as the apikey header and as a bearer
// token, which is what PostgREST gateways expect.
//
// # Disabled mode
//
// A client built without URL or key is valid but disabled. Enabled reports
// false and Fetch/Push return ErrDisabled, so callers can treat local-only
// operation as a normal mode instead of a configuration error.
//
// # Errors
//
// Transport failures are wrapped with %w. Non-2xx responses become
// *HTTPError carrying the status and the first part of the body. Malformed
// row data is not an error: it decodes to the defaults through
// prayer.Decode.
//
// # Rate limiting
//
// The default http.Client goes through a token bucket (5 req/s, burst 10) and
// a 5 second timeout.
package remote
