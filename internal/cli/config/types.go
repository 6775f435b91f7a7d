// Package config provides configuration management for the LineageMap CLI.
package config

// Config holds all CLI configuration options.
type Config struct {
	Host         string `koanf:"host"`
	Port         int    `koanf:"port"`
	OutputFormat string `koanf:"output"`
	Verbose      bool   `koanf:"verbose"`
}

// Default configuration values.
const (
	DefaultHost   = "127.0.0.1"
	DefaultPort   = 8000
	DefaultOutput = "text"
)
