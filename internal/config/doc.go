// Package config handles configuration loading for globustelecom-bot.
//
// # Overview
//
// Configuration is loaded from YAML files with environment variable expansion.
// The package provides validation and sensible defaults.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from GLOBUSBOT_CONFIG environment variable
//  2. ./globustelecom-bot.yaml (current directory)
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	telegram:
//	  token: "${TELEGRAM_BOT_TOKEN}"
//
// Syntax: ${VAR_NAME}
//
// # Duration Parsing
//
// Duration values use Go's time.ParseDuration syntax:
//
//	escalation:
//	  claim_ttl: "15m"
//
// # Defaults
//
// Unset fields fall back to: offer_threshold 3, chunk_size 4000,
// claim_ttl 15m, gemini model gemini-2.5-flash-lite.
package config
