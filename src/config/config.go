// Package config resolves run settings from defaults, an optional YAML file and the environment.
// Command-line flags are applied last by the caller.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// DefaultTitle is the chart title (and file stem) when none is given.
const DefaultTitle = "ms_per_frame"

// Config is the resolved settings for one collection run.
type Config struct {
	Package string `yaml:"package"`
	Seconds int    `yaml:"seconds"`
	Title   string `yaml:"title"`
	// Device is the adb serial; empty lets adb pick the only connected device.
	Device   string        `yaml:"device"`
	ADBPath  string        `yaml:"adb"`
	OutDir   string        `yaml:"out_dir"`
	Interval time.Duration `yaml:"interval"`
	LogLevel string        `yaml:"log_level"`
	// Optional artifacts
	SummaryJSON string `yaml:"summary_json"`
	MetricsFile string `yaml:"metrics_file"`
	DumpDir     string `yaml:"dump_dir"`
	Footnote    bool   `yaml:"footnote"`
}

// Defaults returns the built-in settings.
func Defaults() Config {
	return Config{
		Seconds:  1,
		Title:    DefaultTitle,
		ADBPath:  "adb",
		Interval: time.Second,
		LogLevel: "info",
		Footnote: true,
	}
}

// LoadFile overlays the YAML document at path onto c. Keys absent from the file keep their value.
func (c *Config) LoadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "read config")
	}
	if err := yaml.UnmarshalStrict(b, c); err != nil {
		return errors.Wrapf(err, "parse %s", path)
	}
	return nil
}

// ApplyEnv overlays environment settings. ANDROID_SERIAL is the variable adb itself honours.
func (c *Config) ApplyEnv(getenv func(string) string) {
	c.Device = getEnv(getenv, "ANDROID_SERIAL", c.Device)
	c.ADBPath = getEnv(getenv, "ADB", c.ADBPath)
	c.LogLevel = getEnv(getenv, "FRAMETIME_LOG_LEVEL", c.LogLevel)
	c.OutDir = getEnv(getenv, "FRAMETIME_OUT_DIR", c.OutDir)
	c.Seconds = getEnvInt(getenv, "FRAMETIME_SECONDS", c.Seconds)
	if v := getenv("FRAMETIME_FOOTNOTE"); v == "0" || v == "false" {
		c.Footnote = false
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Package) == "" {
		return errors.New("package name is required")
	}
	if c.Seconds < 1 {
		return errors.Errorf("seconds must be a positive integer, got %d", c.Seconds)
	}
	if strings.TrimSpace(c.Title) == "" {
		return errors.New("title must not be empty")
	}
	if c.Interval <= 0 {
		return errors.Errorf("interval must be positive, got %s", c.Interval)
	}
	return nil
}

func getEnv(getenv func(string) string, key, def string) string {
	if v := strings.TrimSpace(getenv(key)); v != "" {
		return v
	}
	return def
}

func getEnvInt(getenv func(string) string, key string, def int) int {
	if v := strings.TrimSpace(getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
