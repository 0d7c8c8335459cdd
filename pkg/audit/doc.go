// Package audit records a per-request trail of proxied traffic.
//
// # Recording flow
//
// Audit records are written asynchronously so a slow or locked database
// can never block request handling:
//
//  1. The pipeline completes a request and hands the recorder an entry
//  2. Record enqueues the entry to a buffered channel without blocking
//  3. A background worker drains the channel and writes to SQLite
//  4. When the buffer is full the entry is dropped and counted
//  5. Close drains the channel before exit
//
// Entries carry request id, endpoint, upstream, method, path, outbound
// status, envelope code and latency. Request and response bodies are
// deliberately not stored: they hold bearer tokens, customer phone
// numbers and payment payloads.
//
// # Retention
//
// The Pruner deletes entries older than the configured retention window
// on a cron schedule (default daily at 3 AM).
package audit
