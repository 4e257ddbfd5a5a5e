package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes environment overrides, e.g. ATTACHNAS_LOG_FILE
	EnvPrefix = "ATTACHNAS"

	// DefaultConfigName is the config file looked up next to the executable
	DefaultConfigName = "App.conf"

	// DefaultProbeTimeout bounds the SMB dial used by probe
	DefaultProbeTimeout = 10 * time.Second
)

// Settings are the application settings, as opposed to the share configuration.
type Settings struct {
	// ConfigFile is the share configuration file
	ConfigFile string `mapstructure:"config"`

	// Editor is the command used to edit ConfigFile
	Editor string `mapstructure:"editor"`

	// LogFile receives klog output when set
	LogFile string `mapstructure:"log_file"`

	// MetricsFile receives a Prometheus textfile after each command when set
	MetricsFile string `mapstructure:"metrics_file"`

	// MetricsAddress serves /metrics while long-running commands run when set
	MetricsAddress string `mapstructure:"metrics_address"`

	// ProbeTimeout bounds the SMB connection made by probe
	ProbeTimeout time.Duration `mapstructure:"probe_timeout"`
}

// NewViper returns a viper instance with defaults and ATTACHNAS_* environment
// overrides configured. Callers bind command-line flags onto it.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	v.SetDefault("config", DefaultConfigPath())
	v.SetDefault("editor", DefaultEditor())
	v.SetDefault("log_file", "")
	v.SetDefault("metrics_file", "")
	v.SetDefault("metrics_address", "")
	v.SetDefault("probe_timeout", DefaultProbeTimeout)
	return v
}

// LoadSettings decodes settings from v.
func LoadSettings(v *viper.Viper) (*Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	if s.ConfigFile == "" {
		return nil, fmt.Errorf("config file path cannot be empty")
	}
	if s.ProbeTimeout <= 0 {
		s.ProbeTimeout = DefaultProbeTimeout
	}
	return &s, nil
}

// DefaultConfigPath returns App.conf next to the running executable,
// falling back to the working directory.
func DefaultConfigPath() string {
	exe, err := os.Executable()
	if err != nil {
		return DefaultConfigName
	}
	return filepath.Join(filepath.Dir(exe), DefaultConfigName)
}

// DefaultEditor returns notepad on Windows, otherwise $EDITOR or vi.
func DefaultEditor() string {
	if runtime.GOOS == "windows" {
		return "notepad.exe"
	}
	if editor := os.Getenv("EDITOR"); editor != "" {
		return editor
	}
	return "vi"
}
