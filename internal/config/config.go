// Package config provides file-based configuration for geotrack.
//
// A configuration file is optional. It may be XML or YAML (chosen by the
// file extension); environment variables override it and command line flags
// override both.
package config

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// AppConfig represents the root configuration structure
type AppConfig struct {
	XMLName xml.Name `xml:"GeoTrack" yaml:"-"`

	// Track decoding
	Track TrackConfig `xml:"Track" yaml:"track"`

	// Output document and archive
	Output OutputConfig `xml:"Output" yaml:"output"`

	// Advanced options
	Advanced AdvancedConfig `xml:"Advanced" yaml:"advanced"`
}

// TrackConfig contains decoding settings
type TrackConfig struct {
	IntervalSeconds float64 `xml:"IntervalSeconds" yaml:"interval_seconds" validate:"gte=0"`
	ShiftSeconds    float64 `xml:"ShiftSeconds" yaml:"shift_seconds"`
	UseGeoTimezone  bool    `xml:"UseGeoTimezone" yaml:"use_geo_timezone"`
}

// OutputConfig contains output settings
type OutputConfig struct {
	Path       string `xml:"Path" yaml:"path"`
	Format     string `xml:"Format" yaml:"format" validate:"oneof=gpx json msgpack"`
	Creator    string `xml:"Creator" yaml:"creator" validate:"required"`
	Indent     bool   `xml:"Indent" yaml:"indent"`
	DuckDBPath string `xml:"DuckDBPath" yaml:"duckdb_path"`
}

// AdvancedConfig contains diagnostic options
type AdvancedConfig struct {
	Verbose bool `xml:"Verbose" yaml:"verbose"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Track: TrackConfig{
			IntervalSeconds: 1.0,
			ShiftSeconds:    0.0,
			UseGeoTimezone:  false,
		},
		Output: OutputConfig{
			Format:  "gpx",
			Creator: "geotrack",
			Indent:  true,
		},
	}
}

// Load returns the defaults, overlaid by the file at configPath when it is
// not empty, overlaid by the environment.
func Load(fs afero.Fs, configPath string) (*AppConfig, error) {
	if configPath == "" {
		cfg := DefaultConfig()
		cfg.applyEnvironmentOverrides()
		return cfg, nil
	}
	return LoadConfig(fs, configPath)
}

// LoadConfig loads configuration from an XML or YAML file
func LoadConfig(fs afero.Fs, configPath string) (*AppConfig, error) {
	data, err := afero.ReadFile(fs, configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if isYAML(configPath) {
		err = yaml.Unmarshal(data, config)
	} else {
		err = xml.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply environment variable overrides
	config.applyEnvironmentOverrides()

	// Resolve relative paths
	config.resolvePaths(filepath.Dir(configPath))

	return config, nil
}

// Save saves the configuration to an XML or YAML file
func (c *AppConfig) Save(fs afero.Fs, configPath string) error {
	var content []byte
	if isYAML(configPath) {
		output, err := yaml.Marshal(c)
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		content = append([]byte("# geotrack configuration\n"), output...)
	} else {
		output, err := xml.MarshalIndent(c, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		header := []byte(xml.Header + "<!-- geotrack configuration -->\n")
		content = append(header, output...)
		content = append(content, '\n')
	}

	if err := afero.WriteFile(fs, configPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks value ranges.
func (c *AppConfig) Validate() error {
	v := validator.New()
	if err := v.Struct(c.Track); err != nil {
		return fmt.Errorf("invalid track config: %w", err)
	}
	if err := v.Struct(c.Output); err != nil {
		return fmt.Errorf("invalid output config: %w", err)
	}
	return nil
}

// Interval returns the thinning interval.
func (c *AppConfig) Interval() time.Duration {
	return seconds(c.Track.IntervalSeconds)
}

// Shift returns the sidecar clock correction.
func (c *AppConfig) Shift() time.Duration {
	return seconds(c.Track.ShiftSeconds)
}

// applyEnvironmentOverrides allows environment variables to override config values
func (c *AppConfig) applyEnvironmentOverrides() {
	if v := os.Getenv("GEOTRACK_INTERVAL"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Track.IntervalSeconds = f
		}
	}

	if v := os.Getenv("GEOTRACK_SHIFT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Track.ShiftSeconds = f
		}
	}

	if v := os.Getenv("GEOTRACK_GEO_TIMEZONE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Track.UseGeoTimezone = b
		}
	}

	if v := os.Getenv("GEOTRACK_FORMAT"); v != "" {
		c.Output.Format = strings.ToLower(v)
	}
}

// resolvePaths converts relative paths to absolute based on config file location
func (c *AppConfig) resolvePaths(configDir string) {
	if c.Output.Path != "" && !filepath.IsAbs(c.Output.Path) {
		c.Output.Path = filepath.Join(configDir, c.Output.Path)
	}
	if c.Output.DuckDBPath != "" && !filepath.IsAbs(c.Output.DuckDBPath) {
		c.Output.DuckDBPath = filepath.Join(configDir, c.Output.DuckDBPath)
	}
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
