package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/bartgrantham/gofm/si4703"
)

// Validate checks configuration correctness.  It does not mutate cfg.
func Validate(cfg *Config) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Settings.LogLevel)); err != nil {
		return fmt.Errorf("settings: logLevel %q: %w", cfg.Settings.LogLevel, err)
	}

	switch cfg.Settings.Standard {
	case StandardRDS, StandardRBDS:
	default:
		return fmt.Errorf("settings: standard must be %q or %q, got %q", StandardRDS, StandardRBDS, cfg.Settings.Standard)
	}

	if err := validateSource(&cfg.Source); err != nil {
		return fmt.Errorf("source: %w", err)
	}

	if cfg.Storage.Enabled && cfg.Storage.Path == "" {
		return fmt.Errorf("storage: path is required")
	}

	if cfg.MQTT.Enabled {
		if cfg.MQTT.Broker == "" {
			return fmt.Errorf("mqtt: broker is required")
		}
		if cfg.MQTT.QoS > 2 {
			return fmt.Errorf("mqtt: qos must be 0, 1 or 2, got %d", cfg.MQTT.QoS)
		}
		if strings.ContainsAny(cfg.MQTT.Topic, "+#") {
			return fmt.Errorf("mqtt: topic %q contains wildcards", cfg.MQTT.Topic)
		}
	}

	return nil
}

func validateSource(src *SourceConfig) error {
	switch src.Type {
	case SourceV4L2, SourceFile, SourceHex:
		if src.Path == "" {
			return fmt.Errorf("%s: path is required", src.Type)
		}

	case SourceSerial:
		if src.Path == "" {
			return fmt.Errorf("serial: path is required")
		}
		if src.BaudRate <= 0 {
			return fmt.Errorf("serial: baudRate must be positive, got %d", src.BaudRate)
		}

	case SourceSI4703:
		if src.Address > 0x7f {
			return fmt.Errorf("si4703: address 0x%x is not a 7-bit I²C address", src.Address)
		}
		if src.PollInterval < 0 {
			return fmt.Errorf("si4703: pollInterval must not be negative")
		}
		f, err := src.TuneFrequency()
		if err != nil {
			return fmt.Errorf("si4703: %w", err)
		}
		if f < si4703.BandLow || f > si4703.BandHigh {
			return fmt.Errorf("si4703: frequency %s outside %s..%s", f, si4703.BandLow, si4703.BandHigh)
		}

	default:
		return fmt.Errorf("unknown type %q", src.Type)
	}
	return nil
}
