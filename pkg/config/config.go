package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Sensor      SensorConfig      `yaml:"sensor"`
	Acquisition AcquisitionConfig `yaml:"acquisition"`
	Input       InputConfig       `yaml:"input"`
	Panel       PanelConfig       `yaml:"panel"`
	Link        LinkConfig        `yaml:"link"`
}

// SensorConfig selects and tunes the sensor backend.
type SensorConfig struct {
	Backend        string        `yaml:"backend"`         // auto, simulated, device18, device10
	SimulatedDelay time.Duration `yaml:"simulated_delay"` // Emulated integration time
	Seed           uint64        `yaml:"seed"`            // Simulation seed (0 = time based)
	ExternalLamp   bool          `yaml:"external_lamp"`   // External LED wired to the lamp pin
}

// AcquisitionConfig contains acquisition protocol parameters.
type AcquisitionConfig struct {
	Mode            string        `yaml:"mode"`             // single, continuous, burst<n>
	LED             string        `yaml:"led"`              // none, internal, external, both
	ContinuousPause time.Duration `yaml:"continuous_pause"` // Pause between continuous captures
	BurstPause      time.Duration `yaml:"burst_pause"`      // Pause between burst shots
	Classifier      string        `yaml:"classifier"`       // auto, band, ripeness
}

// InputConfig contains debounce parameters.
type InputConfig struct {
	ButtonConfirm  time.Duration `yaml:"button_confirm"`  // One-shot confirmation delay for the button
	EncoderConfirm time.Duration `yaml:"encoder_confirm"` // One-shot confirmation delay for the encoder
	Debounce       time.Duration `yaml:"debounce"`        // Minimum interval between accepted events
	LongPress      time.Duration `yaml:"long_press"`      // Encoder push held at least this long toggles mode
	QueueSize      int           `yaml:"queue_size"`      // Command queue capacity
}

// PanelConfig describes the e-paper panel geometry.
type PanelConfig struct {
	Width    int16 `yaml:"width"`
	Height   int16 `yaml:"height"`
	Rotation int   `yaml:"rotation"` // Quarter turns clockwise from landscape
}

// LinkConfig contains the serial report link configuration.
type LinkConfig struct {
	Port       string `yaml:"port"`
	BaudRate   int    `yaml:"baud_rate"`
	BufferSize int    `yaml:"buffer_size"`
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Sensor: SensorConfig{
			Backend:        "auto",
			SimulatedDelay: 750 * time.Millisecond,
			Seed:           0,
			ExternalLamp:   false,
		},
		Acquisition: AcquisitionConfig{
			Mode:            "single",
			LED:             "internal",
			ContinuousPause: 50 * time.Millisecond,
			BurstPause:      50 * time.Millisecond,
			Classifier:      "auto",
		},
		Input: InputConfig{
			ButtonConfirm:  20 * time.Millisecond,
			EncoderConfirm: 20 * time.Millisecond,
			Debounce:       200 * time.Millisecond,
			LongPress:      600 * time.Millisecond,
			QueueSize:      8,
		},
		Panel: PanelConfig{
			Width:    250,
			Height:   122,
			Rotation: 0,
		},
		Link: LinkConfig{
			Port:       "",
			BaudRate:   115200,
			BufferSize: 100,
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ensureDefaults fills zero-valued fields from Default.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Sensor.Backend == "" {
		c.Sensor.Backend = def.Sensor.Backend
	}
	if c.Sensor.SimulatedDelay == 0 {
		c.Sensor.SimulatedDelay = def.Sensor.SimulatedDelay
	}

	if c.Acquisition.Mode == "" {
		c.Acquisition.Mode = def.Acquisition.Mode
	}
	if c.Acquisition.LED == "" {
		c.Acquisition.LED = def.Acquisition.LED
	}
	if c.Acquisition.ContinuousPause == 0 {
		c.Acquisition.ContinuousPause = def.Acquisition.ContinuousPause
	}
	if c.Acquisition.BurstPause == 0 {
		c.Acquisition.BurstPause = def.Acquisition.BurstPause
	}
	if c.Acquisition.Classifier == "" {
		c.Acquisition.Classifier = def.Acquisition.Classifier
	}

	if c.Input.ButtonConfirm == 0 {
		c.Input.ButtonConfirm = def.Input.ButtonConfirm
	}
	if c.Input.EncoderConfirm == 0 {
		c.Input.EncoderConfirm = def.Input.EncoderConfirm
	}
	if c.Input.Debounce == 0 {
		c.Input.Debounce = def.Input.Debounce
	}
	if c.Input.LongPress == 0 {
		c.Input.LongPress = def.Input.LongPress
	}
	if c.Input.QueueSize <= 0 {
		c.Input.QueueSize = def.Input.QueueSize
	}

	if c.Panel.Width == 0 {
		c.Panel.Width = def.Panel.Width
	}
	if c.Panel.Height == 0 {
		c.Panel.Height = def.Panel.Height
	}

	if c.Link.BaudRate == 0 {
		c.Link.BaudRate = def.Link.BaudRate
	}
	if c.Link.BufferSize == 0 {
		c.Link.BufferSize = def.Link.BufferSize
	}
}
