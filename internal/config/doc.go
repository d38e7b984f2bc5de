// Package config provides configuration structures and utilities for
// clickchain. It defines the run options built from CLI flags, the YAML
// configuration file with per-dataset overrides, and validation of the
// combined result.
package config
