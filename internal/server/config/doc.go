// Package config defines the vitals server configuration.
//
//   - spec.go: ServerConfig struct definition
//   - default.go: default values
//   - verify.go: validation and normalization (bucket lists)
//
// Configuration is loaded via internal/infra/confloader from a YAML file
// and VITALS_ environment variables.
package config
