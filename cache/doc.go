// Package cache provides the durable result cache used by guidelinely.
//
// It provides a Cache interface with a SQLite-backed DiskCache that survives
// process restarts and can be shared by several processes on one host, an
// in-memory implementation for tests, SHA-256 key derivation over canonical
// JSON, TTL policies, and a read-through Middleware that treats storage
// faults as misses.
package cache
