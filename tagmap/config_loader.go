package tagmap

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads the service configuration from a YAML file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	// Validate required fields
	if config.MQTT.Broker == "" {
		return nil, fmt.Errorf("mqtt.broker is required")
	}
	if config.Camera.ObservationTopic == "" {
		return nil, fmt.Errorf("camera.observationTopic is required")
	}
	if config.Camera.FrameWidth <= 0 || config.Camera.FrameHeight <= 0 {
		return nil, fmt.Errorf("camera.frameWidth and camera.frameHeight must be positive")
	}
	if len(config.TagHeights) == 0 {
		return nil, fmt.Errorf("at least one tagHeights range must be defined")
	}
	if _, err := NewHeightTable(config.TagHeights); err != nil {
		return nil, fmt.Errorf("tagHeights: %w", err)
	}

	if config.MapFile == "" {
		config.MapFile = DefaultMapFile
	}

	return &config, nil
}

// SaveConfig saves the configuration to a YAML file.
func SaveConfig(path string, config *Config) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("marshaling config YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
