// Package config loads runtime configuration for the Vizzy CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the backend REST endpoint
//	-d string   path to the local credential database
//
// # JSON schema
//
// The JSON loader uses timex.Duration for timeouts, so values can be either
// strings like "120s" or integer nanoseconds:
//
//	{
//	  "server_base_url": "http://127.0.0.1:8000",
//	  "database_path": "vizzy.db",
//	  "request_timeout": "120s",
//	  "openai_api_key": "sk-...",
//	  "voice_model": "whisper-1"
//	}
//
// Note: This package does not read environment variables directly; use the
// JSON file or flags to configure values.
package config
