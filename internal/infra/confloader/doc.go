// Package confloader loads vitals configuration with koanf.
//
// Sources, lowest priority first:
//
//  1. Defaults already present in the target struct
//  2. YAML configuration file
//  3. Environment variables (VITALS_ prefix, "__" between sections)
//  4. Overrides from command line flags
//
// Watcher reports changes to the configuration file so callers can
// reload the settings that are safe to change at runtime.
package confloader
