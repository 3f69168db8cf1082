// Package server exposes the HTTP surface of fmpmcp.
//
// Endpoints:
//
//   - /mcp: the protocol endpoint. Each request's client configuration is read
//     from its query string, mapped to a client identity, and served by that
//     client's cached protocol server. A cache miss constructs the server.
//     Without a credential the identity is created on initialize and returned
//     as the Mcp-Session-Id; requests presenting an unknown session get 404.
//     A client that reconnects with the same credential but other mode keys
//     keeps its cached server, and the mismatch is logged, until the entry
//     expires.
//   - /health: a JSON report of uptime, cache occupancy and memory use.
//   - /metrics: Prometheus exposition, when the prometheus exporter is selected.
//
// Stop halts the cache's background sweep before closing the listener. Each
// step is logged; a failing step does not prevent the next one.
package server
