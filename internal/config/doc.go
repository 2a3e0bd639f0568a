// Package config handles YAML configuration loading with environment
// variable substitution. All fields are optional; a missing file means
// defaults.
package config
