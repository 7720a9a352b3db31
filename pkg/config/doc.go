// Package config loads application configuration from BALAD_-prefixed
// environment variables, applying defaults and validating the settings the
// server cannot run without.
package config
