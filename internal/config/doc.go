// Package config provides the configuration system for relay.
//
// Configuration is organized in layers with higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  3. Environment Variables   │  ← RELAY_*, seeded from .env files
//	├─────────────────────────────┤
//	│  2. Config File             │  ← relay.toml / relay.yaml
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │  ← Lowest priority
//	└─────────────────────────────┘
//
// # Sub-packages
//
//   - loader: Configuration file loading (TOML, YAML, environment variables)
//   - watcher: File watching for live reload
//
// # File Format
//
//	[log]
//	level = "info"     # debug, info, warn, error
//	format = "text"    # text, json
//
//	[relay]
//	forbidden_characters = "*:"
//	default_channel = "DEFAULT"
//	default_event_type = "DEFAULT"
//	handler_timeout = "0s"
//
// # Environment Variables
//
//	RELAY_LOG_LEVEL             log.level
//	RELAY_LOG_FORMAT            log.format
//	RELAY_FORBIDDEN_CHARACTERS  relay.forbidden_characters
//	RELAY_HANDLER_TIMEOUT       relay.handler_timeout
//
// Other RELAY_<SECTION>_<KEY> variables map to section.key, for example
// RELAY_RELAY_DEFAULT_CHANNEL sets relay.default_channel.
//
// # Basic Usage
//
//	cfg, err := config.Load("relay.toml")
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
