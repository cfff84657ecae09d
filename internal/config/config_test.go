package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Faultbox/illarion-mapkit/pkg/coord"
	"github.com/Faultbox/illarion-mapkit/pkg/encoding"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Test maps defaults
	if cfg.Maps.Root != "maps" {
		t.Errorf("expected root 'maps', got %s", cfg.Maps.Root)
	}
	if cfg.Maps.Charset != "utf-8" {
		t.Errorf("expected charset utf-8, got %s", cfg.Maps.Charset)
	}
	if cfg.Maps.CacheTTL != 10*time.Minute {
		t.Errorf("expected cache ttl 10m, got %v", cfg.Maps.CacheTTL)
	}
	if cfg.Maps.CacheMaxCost <= 0 {
		t.Errorf("expected positive cache cost, got %d", cfg.Maps.CacheMaxCost)
	}

	// Test geometry defaults
	if cfg.Geometry.StepX != 38 || cfg.Geometry.StepY != 19 {
		t.Errorf("expected steps 38x19, got %dx%d", cfg.Geometry.StepX, cfg.Geometry.StepY)
	}

	// Test logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config must be valid: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
maps:
  root: "/srv/illarion/maps"
  charset: "latin1"
  cache_max_cost: 1000
  cache_ttl: 30s
  default_level: -3

geometry:
  step_x: 40
  step_y: 20
  layer_offsets:
    items: 25
    Light: 1

logging:
  level: "debug"
  log_file: "mapkit.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Load config
	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Verify values were loaded
	if cfg.Maps.Root != "/srv/illarion/maps" {
		t.Errorf("expected root /srv/illarion/maps, got %s", cfg.Maps.Root)
	}
	cs, err := cfg.Maps.CharsetValue()
	if err != nil || cs != encoding.ISO88591 {
		t.Errorf("expected latin1 charset, got %s (%v)", cs, err)
	}
	if cfg.Maps.CacheMaxCost != 1000 {
		t.Errorf("expected cache cost 1000, got %d", cfg.Maps.CacheMaxCost)
	}
	if cfg.Maps.CacheTTL != 30*time.Second {
		t.Errorf("expected cache ttl 30s, got %v", cfg.Maps.CacheTTL)
	}
	if cfg.Maps.DefaultLevel != -3 {
		t.Errorf("expected default level -3, got %d", cfg.Maps.DefaultLevel)
	}

	geo, err := cfg.Geometry.Build()
	if err != nil {
		t.Fatalf("failed to build geometry: %v", err)
	}
	if geo.StepX != 40 || geo.StepY != 20 {
		t.Errorf("expected steps 40x20, got %dx%d", geo.StepX, geo.StepY)
	}
	if geo.Offset(coord.LayerItems) != 25 || geo.Offset(coord.LayerLight) != 1 {
		t.Errorf("layer offsets not applied: %v", geo.LayerOffsets)
	}
	if geo.Offset(coord.LayerTiles) != 40 {
		t.Errorf("unset layers must keep their default, got %d", geo.Offset(coord.LayerTiles))
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "mapkit.log" {
		t.Errorf("expected log file 'mapkit.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	// Create temporary config file with invalid YAML
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
maps:
  cache_max_cost: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Try to load - should error
	cfg := Default()
	err := loadFromFile(cfg, configPath)
	if err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	err := loadFromFile(cfg, "/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"empty root", func(c *Config) { c.Maps.Root = "" }},
		{"unknown charset", func(c *Config) { c.Maps.Charset = "ebcdic" }},
		{"negative cache", func(c *Config) { c.Maps.CacheMaxCost = -1 }},
		{"zero step", func(c *Config) { c.Geometry.StepY = 0 }},
		{"unknown layer", func(c *Config) { c.Geometry.LayerOffsets = map[string]int32{"sky": 3} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	// Just verify it returns a non-empty path
	// Actual path depends on OS
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}

	// Verify path is absolute
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	// Save current directory
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	// Isolate from a real user config
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	// Create temp directory and change to it
	tmpDir := t.TempDir()
	os.Chdir(tmpDir)

	// No config file exists - should return empty
	path := findConfigFile()
	if path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	// Create config.yaml in current directory
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("maps:\n  root: here\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	// Should find it now
	path = findConfigFile()
	if path == "" {
		t.Error("expected to find config.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*Config)
		teardown func()
	}{
		{
			name: "debug flag",
			setup: func() {
				*flagDebug = true
			},
			verify: func(cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() {
				*flagDebug = false
			},
		},
		{
			name: "maps flag",
			setup: func() {
				*flagMaps = "/data/maps"
			},
			verify: func(cfg *Config) {
				if cfg.Maps.Root != "/data/maps" {
					t.Errorf("expected root /data/maps, got %s", cfg.Maps.Root)
				}
			},
			teardown: func() {
				*flagMaps = ""
			},
		},
		{
			name: "charset flag",
			setup: func() {
				*flagCharset = "cp1252"
			},
			verify: func(cfg *Config) {
				if cfg.Maps.Charset != "cp1252" {
					t.Errorf("expected charset cp1252, got %s", cfg.Maps.Charset)
				}
			},
			teardown: func() {
				*flagCharset = ""
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup
			tt.setup()
			defer tt.teardown()

			// Apply flags to default config
			cfg := Default()
			applyFlags(cfg)

			// Verify
			tt.verify(cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
maps:
  root: "from-file"
  charset: "latin1"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Set flag to override config file
	*flagConfig = configPath
	*flagMaps = "from-flag"
	defer func() {
		*flagConfig = ""
		*flagMaps = ""
	}()

	// Load config
	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Root should be from flag, not file
	if cfg.Maps.Root != "from-flag" {
		t.Errorf("expected root from flag, got %s", cfg.Maps.Root)
	}

	// Charset should be from file since no flag override
	if cfg.Maps.Charset != "latin1" {
		t.Errorf("expected charset from file, got %s", cfg.Maps.Charset)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("geometry:\n  step_x: -1\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	defer func() { *flagConfig = "" }()

	if _, err := Load(); err == nil {
		t.Error("expected error for invalid geometry, got nil")
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Maps.Root = "/saved"
	cfg.Geometry.LayerOffsets = map[string]int32{"chars": 12}
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("failed to reload config: %v", err)
	}
	if loaded.Maps.Root != "/saved" || loaded.Geometry.LayerOffsets["chars"] != 12 {
		t.Errorf("saved config not reloaded: %+v", loaded)
	}
	if loaded.Maps.CacheTTL != cfg.Maps.CacheTTL {
		t.Errorf("expected cache ttl %v, got %v", cfg.Maps.CacheTTL, loaded.Maps.CacheTTL)
	}
}
