// ABOUTME: Durable key-value interface and factory for coven-client storage
// ABOUTME: Backends are selected by config driver name (bolt or sqlite)

package store

import (
	"errors"
	"fmt"
)

// ErrKeyNotFound is returned by Get when the key has no value.
var ErrKeyNotFound = errors.New("key not found")

// KV is the durable key-value store the archive writes through. The two
// reserved keys are ConversationsKey and SettingsKey; nothing else in the
// store is touched by this feature.
type KV interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Remove(key string) error
	Close() error
}

// Reserved keys.
const (
	// ConversationsKey holds the serialized conversation list.
	ConversationsKey = "conversations"

	// SettingsKey is reserved for user-facing settings, managed elsewhere.
	SettingsKey = "settings"
)

// Open creates a KV backend by driver name.
func Open(driver, path string) (KV, error) {
	switch driver {
	case "bolt":
		return NewBoltKV(path)
	case "sqlite":
		return NewSQLiteKV(path)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}
