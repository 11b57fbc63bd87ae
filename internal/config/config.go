package config

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/coreman2200/stagefx/internal/render/ambient"
)

type Log struct {
	Level  string `yaml:"level"` // debug|info|warn|error
	Pretty bool   `yaml:"pretty"`
}

type HTTP struct {
	Addr string `yaml:"addr"`
}

type MQTT struct {
	Broker   string `yaml:"broker"` // e.g. tcp://localhost:1883
	Topic    string `yaml:"topic"`
	ClientID string `yaml:"client_id"`
	QoS      byte   `yaml:"qos"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
}

type ArtNet struct {
	Addr     string `yaml:"addr"` // host:port, port defaults to 6454
	Universe uint16 `yaml:"universe"`
	// Patch maps a zone to its first DMX channel (1-based).
	Patch map[string]int `yaml:"patch"`
}

type SPI struct {
	Dev            string   `yaml:"dev"` // "" picks the first port
	PixelsPerZone  int      `yaml:"pixels_per_zone"`
	SpeedHz        int      `yaml:"speed_hz"`
	Zones          []string `yaml:"zones"` // strip order
	FlipEveryOther bool     `yaml:"flip_every_other"`
}

type Smoothing struct {
	Frequency float64 `yaml:"frequency"`
	Damping   float64 `yaml:"damping"`
	// FixedStep feeds the smoother the nominal frame interval instead of the
	// measured one.
	FixedStep bool `yaml:"fixed_step"`
}

type Post struct {
	GrandMaster float64   `yaml:"grand_master"`
	Budget      float64   `yaml:"budget"` // 0 disables the limiter
	Knee        float64   `yaml:"knee"`
	Smoothing   Smoothing `yaml:"smoothing"`
	InjectWhite bool      `yaml:"inject_white"` // white follows the dimmer on outputs with no colour
}

type Config struct {
	FPS     int    `yaml:"fps"`
	Seed    uint32 `yaml:"seed"`
	Project string `yaml:"project"`

	Log  Log  `yaml:"log"`
	HTTP HTTP `yaml:"http"`

	// Sinks selects outputs: log, mqtt, artnet, spi.
	Sinks  []string `yaml:"sinks"`
	MQTT   MQTT     `yaml:"mqtt,omitempty"`
	ArtNet ArtNet   `yaml:"artnet,omitempty"`
	SPI    SPI      `yaml:"spi,omitempty"`

	Ambient map[string]ambient.Look `yaml:"ambient"`
	// AmbientPulseHz breathes the ambient wash when > 0.
	AmbientPulseHz float64 `yaml:"ambient_pulse_hz,omitempty"`
	Post           Post    `yaml:"post"`
}

// Default is a simulator setup: log sink only, warm ambient wash.
func Default() *Config {
	return &Config{
		FPS:   60,
		Seed:  1,
		Log:   Log{Level: "info", Pretty: true},
		HTTP:  HTTP{Addr: ":8080"},
		Sinks: []string{"log"},
		MQTT: MQTT{
			Broker:   "tcp://localhost:1883",
			Topic:    "stagefx/frame",
			ClientID: "stagefx",
		},
		ArtNet: ArtNet{Addr: "255.255.255.255:6454"},
		SPI: SPI{
			PixelsPerZone: 8,
			SpeedHz:       2400000,
			Zones:         []string{"front-left", "front-right", "back-left", "back-right", "floor", "center", "air", "ambient"},
		},
		Ambient: map[string]ambient.Look{
			"all-pars": {H: 30, S: 70, L: 50, Dimmer: 0.15},
		},
		Post: Post{
			GrandMaster: 1,
			Knee:        0.9,
			Smoothing:   Smoothing{Frequency: 6, Damping: 1},
		},
	}
}

// Load reads path over Default, so missing keys keep their defaults.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, err
	}
	return c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// Environment overrides for secrets kept out of the YAML file.
const (
	EnvMQTTUsername = "STAGEFX_MQTT_USERNAME"
	EnvMQTTPassword = "STAGEFX_MQTT_PASSWORD"
)

// ApplyEnv copies credentials from the environment over c.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}
	if v := strings.TrimSpace(getenv(EnvMQTTUsername)); v != "" {
		c.MQTT.Username = v
	}
	if v := getenv(EnvMQTTPassword); v != "" {
		c.MQTT.Password = v
	}
}

// HasSink reports whether name is among the configured sinks.
func (c *Config) HasSink(name string) bool {
	for _, s := range c.Sinks {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return true
		}
	}
	return false
}
