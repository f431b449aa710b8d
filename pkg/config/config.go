package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"yabaitray/pkg/yabai"
)

type Config struct {
	YabaiPath    string   `yaml:"yabai_path"`
	PollInterval Duration `yaml:"poll_interval"`
	MaxAttempts  int      `yaml:"max_attempts"`
	Backoff      Duration `yaml:"backoff"`

	// EventSocket is where space-change notifications arrive, see the
	// yabai signal setup in the event package.
	EventSocket string `yaml:"event_socket"`

	History History `yaml:"history"`
}

type History struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

func Default() Config {
	return Config{
		YabaiPath:    yabai.DefaultPath,
		PollInterval: Duration(time.Second),
		MaxAttempts:  5,
		Backoff:      Duration(500 * time.Millisecond),
		EventSocket:  filepath.Join(xdg.RuntimeDir, "yabaitray.sock"),
		History: History{
			Enabled: false,
			Path:    filepath.Join(xdg.DataHome, "yabaitray", "history.db"),
		},
	}
}

// Load reads the config file on top of the defaults. A missing file is
// not an error, the defaults apply as-is.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}

// DefaultPath returns the config file location, creating parent
// directories as needed.
func DefaultPath() (string, error) {
	path, err := xdg.ConfigFile("yabaitray/config.yaml")
	if err != nil {
		return "", fmt.Errorf("resolve config path: %w", err)
	}
	return path, nil
}

// Duration accepts "1s"-style values in YAML.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("duration must be a string: %w", err)
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}
