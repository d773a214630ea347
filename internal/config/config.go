package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so yaml values like "30s" or "1h" decode.
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

type Config struct {
	Server ServerConfig `yaml:"server"`
	Relay  RelayConfig  `yaml:"relay"`
	DocGen DocGenConfig `yaml:"docgen"`
	Log    LogConfig    `yaml:"log"`
}

type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

type RelayConfig struct {
	// SubscriberBuffer is the per-subscription event buffer size. A
	// subscriber whose buffer is full at publish time is evicted.
	SubscriberBuffer int `yaml:"subscriber_buffer"`
	// RetainCompleted is how long a completed session record is kept
	// before the sweeper evicts it.
	RetainCompleted Duration `yaml:"retain_completed"`
	// RetainAbandoned is how long a generating session may go without
	// an update before it is considered abandoned and evicted.
	RetainAbandoned Duration `yaml:"retain_abandoned"`
	SweepInterval   Duration `yaml:"sweep_interval"`
}

type DocGenConfig struct {
	RendererURL string   `yaml:"renderer_url"`
	Timeout     Duration `yaml:"timeout"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: 3000,
			Host: "0.0.0.0",
		},
		Relay: RelayConfig{
			SubscriberBuffer: 16,
			RetainCompleted:  Duration(time.Hour),
			RetainAbandoned:  Duration(24 * time.Hour),
			SweepInterval:    Duration(time.Minute),
		},
		DocGen: DocGenConfig{
			RendererURL: "http://127.0.0.1:5000",
			Timeout:     Duration(30 * time.Second),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads the yaml config at path, applying defaults for anything unset.
// A missing file is not an error; the defaults are used as-is. HOST and PORT
// environment variables override the file, matching how the relay has
// historically been deployed.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	if host := os.Getenv("HOST"); host != "" {
		cfg.Server.Host = host
	}
	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT %q: %w", port, err)
		}
		cfg.Server.Port = p
	}

	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
