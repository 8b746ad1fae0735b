// Package config loads the YAML configuration shared by the gofm commands.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
	"periph.io/x/conn/v3/physic"
)

// Source types
const (
	SourceV4L2   = "v4l2"
	SourceFile   = "file"
	SourceHex    = "hex"
	SourceSerial = "serial"
	SourceSI4703 = "si4703"
)

// Broadcast standards
const (
	StandardRDS  = "rds"
	StandardRBDS = "rbds"
)

// Config represents the main application configuration
type Config struct {
	Settings Settings      `yaml:"settings"`
	Source   SourceConfig  `yaml:"source"`
	Storage  StorageConfig `yaml:"storage"`
	MQTT     MQTTConfig    `yaml:"mqtt"`
}

// Settings represents global application settings
type Settings struct {
	LogLevel string `yaml:"logLevel"`
	Standard string `yaml:"standard"`
}

// RBDS reports whether PI codes and program types are read with the North
// American tables.
func (s Settings) RBDS() bool {
	return s.Standard == StandardRBDS
}

// SourceConfig selects where RDS blocks come from.
//
//	v4l2, file : 3-byte records, Path is a radio device or a capture
//	hex        : text group dump at Path
//	serial     : text group dump from the serial port at Path
//	si4703     : the tuner on I2CBus, tuned to Frequency
type SourceConfig struct {
	Type         string        `yaml:"type"`
	Path         string        `yaml:"path"`
	BaudRate     int           `yaml:"baudRate"`
	I2CBus       string        `yaml:"i2cBus"`
	Address      uint16        `yaml:"address"`
	Frequency    string        `yaml:"frequency"`
	ResetPin     string        `yaml:"resetPin"`
	PollInterval time.Duration `yaml:"pollInterval"`
}

// TuneFrequency parses Frequency, e.g. "88.5MHz".
func (s SourceConfig) TuneFrequency() (physic.Frequency, error) {
	var f physic.Frequency
	if err := f.Set(s.Frequency); err != nil {
		return 0, fmt.Errorf("frequency %q: %w", s.Frequency, err)
	}
	return f, nil
}

// StorageConfig represents station log settings
type StorageConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// MQTTConfig represents snapshot publishing settings
type MQTTConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"clientId"`
	Topic    string `yaml:"topic"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	QoS      byte   `yaml:"qos"`
	Retain   bool   `yaml:"retain"`
}

// Load reads the file at path and fills in defaults.  The result still has
// to pass Validate.
func Load(path string) (*Config, error) {
	p, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(p)
}

// Parse decodes a YAML document and fills in defaults.
func Parse(p []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(p, &cfg); err != nil {
		return nil, fmt.Errorf("decoding yaml: %w", err)
	}
	normalize(&cfg)
	return &cfg, nil
}
