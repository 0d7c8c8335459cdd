// Package orders implements the gateway's one proxy-owned write path.
//
// Every other endpoint relays to an upstream and owns no durable state.
// Order creation additionally inserts a single row into a local SQLite
// database, so the admin order views keep working when the backend is
// unreachable. The store is a plain single-row insert with a uniqueness
// constraint on the order number; there are no multi-step transactions
// at this layer.
package orders
