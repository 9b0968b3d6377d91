package robot

import (
	"encoding/json"
	"os"
	"time"
)

const DefaultConfigFile = "roarm.json"

// DefaultTimeout is how long a command waits for the arm's acknowledgement.
const DefaultTimeout = 200 * time.Millisecond

// Config holds the arm connection and run configuration
type Config struct {
	Address   string `json:"address"`
	Transport string `json:"transport,omitempty"`
	BaudRate  int    `json:"baud,omitempty"`
	TimeoutMS int    `json:"timeout_ms,omitempty"`
	Program   string `json:"program,omitempty"`
	LogFile   string `json:"log_file,omitempty"`
	LogLevel  string `json:"log_level,omitempty"`
}

// Timeout returns the request timeout, falling back to DefaultTimeout.
func (c *Config) Timeout() time.Duration {
	if c.TimeoutMS <= 0 {
		return DefaultTimeout
	}
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

// ApplyDefaults fills unset fields with their defaults.
func (c *Config) ApplyDefaults() {
	if c.Transport == "" {
		c.Transport = TransportHTTP
	}
	if c.BaudRate <= 0 {
		c.BaudRate = DefaultBaudRate
	}
	if c.TimeoutMS <= 0 {
		c.TimeoutMS = int(DefaultTimeout / time.Millisecond)
	}
}

// LoadConfig loads configuration from the default config file
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(DefaultConfigFile)
}

// LoadConfigFrom loads configuration from a specific file
func LoadConfigFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save saves configuration to the default config file
func (c *Config) Save() error {
	return c.SaveTo(DefaultConfigFile)
}

// SaveTo saves configuration to a specific file
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ConfigExists returns true if the config file at path exists
func ConfigExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
