package config

import (
	"time"
)

const (
	defaultRadioDevice  = "/dev/radio0"
	defaultBaudRate     = 115200
	defaultAddress      = 0x10
	defaultPollInterval = 40 * time.Millisecond
	defaultStoragePath  = "rds.db"
	defaultClientID     = "gofm-rds"
	defaultTopic        = "rds"
)

// normalize fills in everything the file left out.  Values that were set are
// never changed.
func normalize(cfg *Config) {
	if cfg.Settings.LogLevel == "" {
		cfg.Settings.LogLevel = "info"
	}
	if cfg.Settings.Standard == "" {
		cfg.Settings.Standard = StandardRDS
	}

	src := &cfg.Source
	if src.Type == "" {
		src.Type = SourceV4L2
	}
	if src.Type == SourceV4L2 && src.Path == "" {
		src.Path = defaultRadioDevice
	}
	if src.Type == SourceSerial && src.BaudRate == 0 {
		src.BaudRate = defaultBaudRate
	}
	if src.Type == SourceSI4703 {
		if src.Address == 0 {
			src.Address = defaultAddress
		}
		if src.PollInterval == 0 {
			src.PollInterval = defaultPollInterval
		}
	}

	if cfg.Storage.Enabled && cfg.Storage.Path == "" {
		cfg.Storage.Path = defaultStoragePath
	}

	if cfg.MQTT.ClientID == "" {
		cfg.MQTT.ClientID = defaultClientID
	}
	if cfg.MQTT.Topic == "" {
		cfg.MQTT.Topic = defaultTopic
	}
}
