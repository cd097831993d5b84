package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"GEOTRACK_INTERVAL", "GEOTRACK_SHIFT", "GEOTRACK_GEO_TIMEZONE", "GEOTRACK_FORMAT"} {
		t.Setenv(k, "")
	}
}

// writeFile stores content under /etc/geotrack on an in-memory filesystem.
func writeFile(t *testing.T, name, content string) (afero.Fs, string) {
	t.Helper()
	fs := afero.NewMemMapFs()
	path := filepath.Join("/etc/geotrack", name)
	require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0644))
	return fs, path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, time.Second, cfg.Interval())
	assert.Equal(t, time.Duration(0), cfg.Shift())
	assert.False(t, cfg.Track.UseGeoTimezone)
	assert.Equal(t, "gpx", cfg.Output.Format)
	assert.Equal(t, "geotrack", cfg.Output.Creator)
	assert.Empty(t, cfg.Output.Path)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_NoFile(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(afero.NewMemMapFs(), "")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_XML(t *testing.T) {
	clearEnv(t)
	fs, path := writeFile(t, "geotrack.xml", `<?xml version="1.0" encoding="UTF-8"?>
<GeoTrack>
  <Track>
    <IntervalSeconds>2.5</IntervalSeconds>
    <ShiftSeconds>-30</ShiftSeconds>
    <UseGeoTimezone>true</UseGeoTimezone>
  </Track>
  <Output>
    <Path>out/merged.gpx</Path>
    <DuckDBPath>/var/lib/geotrack/archive.duckdb</DuckDBPath>
  </Output>
</GeoTrack>`)

	cfg, err := LoadConfig(fs, path)
	require.NoError(t, err)
	assert.Equal(t, 2500*time.Millisecond, cfg.Interval())
	assert.Equal(t, -30*time.Second, cfg.Shift())
	assert.True(t, cfg.Track.UseGeoTimezone)
	assert.Equal(t, "/etc/geotrack/out/merged.gpx", cfg.Output.Path)
	assert.Equal(t, "/var/lib/geotrack/archive.duckdb", cfg.Output.DuckDBPath)

	// unset elements keep their defaults
	assert.Equal(t, "gpx", cfg.Output.Format)
	assert.Equal(t, "geotrack", cfg.Output.Creator)
}

func TestLoadConfig_YAML(t *testing.T) {
	clearEnv(t)
	fs, path := writeFile(t, "geotrack.yaml", `
track:
  interval_seconds: 0
  shift_seconds: 12.5
output:
  format: json
  creator: field-team
advanced:
  verbose: true
`)

	cfg, err := LoadConfig(fs, path)
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), cfg.Interval())
	assert.Equal(t, 12500*time.Millisecond, cfg.Shift())
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, "field-team", cfg.Output.Creator)
	assert.True(t, cfg.Advanced.Verbose)
	assert.True(t, cfg.Output.Indent)
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(afero.NewMemMapFs(), "/etc/geotrack/missing.xml")
		assert.Error(t, err)
	})

	t.Run("wrong root element", func(t *testing.T) {
		fs, path := writeFile(t, "bad.xml", `<Other><Track/></Other>`)
		_, err := LoadConfig(fs, path)
		assert.Error(t, err)
	})

	t.Run("bad yaml", func(t *testing.T) {
		fs, path := writeFile(t, "bad.yml", "track: [unterminated")
		_, err := LoadConfig(fs, path)
		assert.Error(t, err)
	})
}

func TestEnvironmentOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEOTRACK_INTERVAL", "5")
	t.Setenv("GEOTRACK_SHIFT", "-3.5")
	t.Setenv("GEOTRACK_GEO_TIMEZONE", "true")
	t.Setenv("GEOTRACK_FORMAT", "MSGPACK")

	fs, path := writeFile(t, "geotrack.yaml", "track:\n  interval_seconds: 2\n")
	cfg, err := Load(fs, path)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.Interval())
	assert.Equal(t, -3500*time.Millisecond, cfg.Shift())
	assert.True(t, cfg.Track.UseGeoTimezone)
	assert.Equal(t, "msgpack", cfg.Output.Format)

	t.Run("unparsable values are ignored", func(t *testing.T) {
		t.Setenv("GEOTRACK_INTERVAL", "often")
		t.Setenv("GEOTRACK_GEO_TIMEZONE", "maybe")
		cfg, err := Load(fs, "")
		require.NoError(t, err)
		assert.Equal(t, time.Second, cfg.Interval())
		assert.False(t, cfg.Track.UseGeoTimezone)
	})
}

func TestSave_RoundTrip(t *testing.T) {
	clearEnv(t)
	for _, name := range []string{"saved.xml", "saved.yaml"} {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, name)

			cfg := DefaultConfig()
			cfg.Track.IntervalSeconds = 3
			cfg.Track.UseGeoTimezone = true
			cfg.Output.Format = "json"
			cfg.Output.Path = filepath.Join(dir, "merged.json")
			fs := afero.NewOsFs()
			require.NoError(t, cfg.Save(fs, path))

			loaded, err := LoadConfig(fs, path)
			require.NoError(t, err)
			assert.Equal(t, cfg.Track, loaded.Track)
			assert.Equal(t, cfg.Output, loaded.Output)
			assert.Equal(t, cfg.Advanced, loaded.Advanced)
		})
	}
}

func TestSave_InMemory(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, DefaultConfig().Save(fs, "/etc/geotrack/geotrack.xml"))

	data, err := afero.ReadFile(fs, "/etc/geotrack/geotrack.xml")
	require.NoError(t, err)
	assert.Contains(t, string(data), "<!-- geotrack configuration -->")
	assert.Contains(t, string(data), "<IntervalSeconds>1</IntervalSeconds>")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*AppConfig)
	}{
		{"negative interval", func(c *AppConfig) { c.Track.IntervalSeconds = -1 }},
		{"unknown format", func(c *AppConfig) { c.Output.Format = "kml" }},
		{"empty creator", func(c *AppConfig) { c.Output.Creator = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	t.Run("negative shift is fine", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Track.ShiftSeconds = -3600
		assert.NoError(t, cfg.Validate())
	})
}
