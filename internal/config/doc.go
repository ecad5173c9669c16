// Package config handles configuration loading for coven-client.
//
// # Overview
//
// Configuration is loaded from YAML files with environment variable expansion.
// The package provides validation and sensible defaults.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	user:
//	  id: "${COVEN_USER_ID}"
//
// Syntax: ${VAR_NAME}
//
// # Duration Parsing
//
// Duration values use Go's time.ParseDuration syntax:
//
//	backend:
//	  send_timeout: "60s"
//
// Supported units: ns, us, ms, s, m, h
//
// # Configuration Sections
//
// Backend:
//
//	backend:
//	  url: "https://chat.example.com"
//	  send_timeout: "60s"
//
// User identity:
//
//	user:
//	  id: "alice"
//	  workspace: "default"
//
// Durable storage:
//
//	storage:
//	  driver: "bolt"   # bolt, sqlite
//	  path: "~/.local/share/coven/client.db"
//
// Conversation bounds:
//
//	conversations:
//	  max: 50
//
// Logging:
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
// # Validation
//
// Load() validates:
//
//   - Backend URL presence
//   - User ID presence
//   - Storage driver values and path presence
//   - Duration format validity
//
// # Usage
//
// Load configuration from a path:
//
//	cfg, err := config.Load("/etc/coven/client.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
