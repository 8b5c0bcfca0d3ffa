// Package config provides configuration loading and validation for Callisto.
//
// Configuration is loaded from a YAML file, merged with built-in defaults,
// and overridden by CALLISTO_* environment variables. The final configuration
// is validated before use.
//
// Loading sequence:
//  1. Read YAML file
//  2. Apply defaults for unset fields
//  3. Apply environment variable overrides
//  4. Validate
//
// The package also provides a file watcher (fsnotify) that re-reads the
// configuration file on change so that hot-reloadable settings, currently
// the API key set, can be picked up without a restart.
package config
