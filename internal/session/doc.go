// Package session caches one protocol server per client.
//
// ResourceCache maps a client identity to the resource built for it and keeps
// at most MaxSize entries. Entries expire once they have not been accessed for
// TTL; a background sweep removes them independently of request traffic and
// Get treats an expired entry as a miss. When the cache is full, inserting a
// new identity first evicts the least recently accessed entry. Evicted
// resources are closed.
//
// Construction on a miss is single-flight per identity: concurrent misses for
// the same identity share one build. A failed build is returned to every
// waiter and nothing is cached.
//
// Client identities come from DeriveClientID: a stable hash of the credential,
// or a fresh random identity when the client supplied none.
package session
