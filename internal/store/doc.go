// Package store provides durable key-value storage and the best-effort
// conversation archive built on top of it.
//
// # Overview
//
// Two layers:
//
//   - KV: a small key-value interface with Get/Set/Remove, backed by either
//     BoltDB (go.etcd.io/bbolt) or SQLite (modernc.org/sqlite)
//   - Archive: serializes the bounded conversation list through the KV
//
// # Reserved Keys
//
// The feature owns exactly two keys:
//
//   - "conversations": the serialized conversation list
//   - "settings": user-facing settings, reserved for other components
//
// Nothing else in the store is touched.
//
// # Best-Effort Contract
//
// The archive is not a correctness boundary. Load returns an empty list on
// missing, corrupt, or unreadable data; Save and Clear log and swallow
// write errors (quota, I/O). In-memory conversation state never blocks on
// persistence.
//
// # Bounding
//
// Save persists at most the configured maximum number of conversations.
// The caller keeps the list sorted by updated_at descending, so truncation
// always drops the oldest.
//
// # Backends
//
// Select via config:
//
//	storage:
//	  driver: "bolt"    # or "sqlite"
//	  path: "~/.local/share/coven/client.db"
//
// BoltKV stores all keys in a single bucket. SQLiteKV uses one kv table
// with WAL mode enabled. MemoryKV backs tests and supports injected
// failures.
package store
