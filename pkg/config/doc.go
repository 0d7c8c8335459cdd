// Package config provides configuration management for the Lentera gateway.
//
// This package handles loading, validating, and managing configuration from
// YAML files with environment variable overrides. It provides a type-safe
// configuration system with validation and sensible defaults.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("config.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("config.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention LENTERA_SECTION_FIELD.
// For example:
//
//   - LENTERA_SERVER_LISTEN_ADDRESS overrides server.listen_address
//   - LENTERA_UPSTREAM_SHIPPING_V1_API_KEY overrides upstreams.shipping_v1.api_key
//   - LENTERA_TELEMETRY_LOG_LEVEL overrides telemetry.log_level
//
// Environment variables always take precedence over file-based
// configuration. Upstream credentials (API keys, HMAC secrets) should be
// provided this way rather than written into the config file.
//
// # Configuration Precedence
//
// Values are applied in order (later overrides earlier):
//
//  1. Compiled-in defaults
//  2. YAML file
//  3. Environment variables
//
// The final configuration is validated once after all sources are merged;
// an invalid merge fails startup rather than serving with a partial config.
//
// # Hot Reload
//
// The endpoint descriptor file can be watched for changes with
// DescriptorWatcher, which debounces editor write bursts and keeps the
// previous descriptor set when a reload fails. The rest of the
// configuration is fixed for the process lifetime.
package config
