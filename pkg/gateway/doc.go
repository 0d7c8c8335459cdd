// Package gateway implements the request pipeline every proxied endpoint
// runs through:
//
//	validate -> build -> call upstream -> normalize -> sanitize -> respond
//
// The pipeline itself is generic; per-endpoint behavior (upstream target,
// path template, auth requirement, body encoding, list-vs-detail shape,
// fail-silent policy, timeout, required fields) comes from a declarative
// Descriptor. One Executor configured with a descriptor registry replaces
// what would otherwise be the same handler copy-pasted forty times.
//
// Nothing in this package retains state between requests. The only
// process-wide inputs are the upstream registry and the descriptor set,
// both built once from configuration.
package gateway
