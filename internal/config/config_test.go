package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Export.Template != "professional" {
		t.Errorf("expected default template 'professional', got %s", cfg.Export.Template)
	}
	if cfg.PDF.PageFormat != "a4" || cfg.PDF.Orientation != "portrait" {
		t.Errorf("expected a4 portrait, got %s %s", cfg.PDF.PageFormat, cfg.PDF.Orientation)
	}
	if cfg.PDF.ViewportWidth != 794 {
		t.Errorf("expected viewport width 794, got %d", cfg.PDF.ViewportWidth)
	}
	if cfg.Store.Backend != "file" {
		t.Errorf("expected file store, got %s", cfg.Store.Backend)
	}
	if cfg.Export.Colors != nil {
		t.Error("expected no brand colors by default")
	}
}

func TestPDFConfig_TimeoutDuration(t *testing.T) {
	tests := []struct {
		timeout string
		want    time.Duration
		wantErr bool
	}{
		{"", 30 * time.Second, false},
		{"45s", 45 * time.Second, false},
		{"2m", 2 * time.Minute, false},
		{"soon", 0, true},
		{"-1s", 0, true},
	}
	for _, tc := range tests {
		got, err := PDFConfig{Timeout: tc.timeout}.TimeoutDuration()
		if tc.wantErr {
			if err == nil {
				t.Errorf("TimeoutDuration(%q): expected error", tc.timeout)
			}
			continue
		}
		if err != nil {
			t.Errorf("TimeoutDuration(%q): unexpected error %v", tc.timeout, err)
		}
		if got != tc.want {
			t.Errorf("TimeoutDuration(%q): expected %v, got %v", tc.timeout, tc.want, got)
		}
	}
}

func TestConfig_Set(t *testing.T) {
	tests := []struct {
		key     string
		value   string
		wantErr bool
		check   func(*Config) bool
	}{
		{"export.template", "branded", false, func(c *Config) bool { return c.Export.Template == "branded" }},
		{"export.template", "fancy", true, nil},
		{"export.colors.primary", "#ff0000", false, func(c *Config) bool { return c.Export.Colors.Primary == "#ff0000" }},
		{"pdf.page_format", "letter", false, func(c *Config) bool { return c.PDF.PageFormat == "letter" }},
		{"pdf.page_format", "a3", true, nil},
		{"pdf.orientation", "landscape", false, func(c *Config) bool { return c.PDF.Orientation == "landscape" }},
		{"pdf.timeout", "10s", false, func(c *Config) bool { return c.PDF.Timeout == "10s" }},
		{"pdf.timeout", "later", true, nil},
		{"pdf.viewport_width", "1024", false, func(c *Config) bool { return c.PDF.ViewportWidth == 1024 }},
		{"pdf.viewport_width", "10", true, nil},
		{"store.backend", "postgres", false, func(c *Config) bool { return c.Store.Backend == "postgres" }},
		{"store.backend", "mysql", true, nil},
		{"log.level", "debug", false, func(c *Config) bool { return c.Log.Level == "debug" }},
		{"unknown.key", "x", true, nil},
	}
	for _, tc := range tests {
		cfg := DefaultConfig()
		err := cfg.Set(tc.key, tc.value)
		if tc.wantErr {
			if err == nil {
				t.Errorf("Set(%q, %q): expected error", tc.key, tc.value)
			}
			continue
		}
		if err != nil {
			t.Errorf("Set(%q, %q): unexpected error %v", tc.key, tc.value, err)
			continue
		}
		if !tc.check(cfg) {
			t.Errorf("Set(%q, %q): value not applied", tc.key, tc.value)
		}
	}
}

func TestLoader_SaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	loader := NewLoaderWithPath(configPath)

	cfg := DefaultConfig()
	cfg.Export.Template = "minimal"

	if err := loader.Save(cfg); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}
	if !loader.Exists() {
		t.Error("expected config file to exist after save")
	}

	loaded, err := loader.LoadRaw()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if loaded.Export.Template != "minimal" {
		t.Errorf("expected template 'minimal', got %s", loaded.Export.Template)
	}
	if loaded.Store.DSN != "${PUBRENDER_DATABASE_URL}" {
		t.Errorf("expected raw DSN reference to survive, got %s", loaded.Store.DSN)
	}
}

func TestLoader_LoadNonExistent(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "nonexistent", "config.yaml")

	cfg, err := NewLoaderWithPath(configPath).Load()
	if err != nil {
		t.Fatalf("expected no error for non-existent file, got: %v", err)
	}
	if cfg.Export.Template != "professional" {
		t.Errorf("expected default template, got %s", cfg.Export.Template)
	}
}

func TestLoader_PartialFileKeepsDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("pdf:\n  page_format: a5\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := NewLoaderWithPath(configPath).Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.PDF.PageFormat != "a5" {
		t.Errorf("expected a5, got %s", cfg.PDF.PageFormat)
	}
	if cfg.PDF.Timeout != "30s" || cfg.Server.Address != ":8080" {
		t.Errorf("expected defaults for missing keys, got timeout=%s address=%s", cfg.PDF.Timeout, cfg.Server.Address)
	}
}

func TestLoader_ExpandEnvVars(t *testing.T) {
	t.Setenv("TEST_DSN", "postgres://u:p@localhost/pub")

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	content := `store:
  backend: postgres
  dsn: ${TEST_DSN}
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := NewLoaderWithPath(configPath).Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Store.DSN != "postgres://u:p@localhost/pub" {
		t.Errorf("expected expanded DSN, got %s", cfg.Store.DSN)
	}
}

func TestExpandEnvVars_UnsetVar(t *testing.T) {
	os.Unsetenv("UNSET_VAR_FOR_TEST")

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("store:\n  dsn: ${UNSET_VAR_FOR_TEST}\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := NewLoaderWithPath(configPath).Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Store.DSN != "" {
		t.Errorf("expected empty DSN for unset env var, got %s", cfg.Store.DSN)
	}
}

func TestLoader_EnvOverrides(t *testing.T) {
	t.Setenv("PUBRENDER_TEMPLATE", "branded")
	t.Setenv("PUBRENDER_ADDR", "127.0.0.1:9000")

	cfg, err := NewLoaderWithPath(filepath.Join(t.TempDir(), "config.yaml")).Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Export.Template != "branded" {
		t.Errorf("expected template from env, got %s", cfg.Export.Template)
	}
	if cfg.Server.Address != "127.0.0.1:9000" {
		t.Errorf("expected address from env, got %s", cfg.Server.Address)
	}

	t.Setenv("PUBRENDER_STORE", "sqlite")
	if _, err := NewLoaderWithPath(filepath.Join(t.TempDir(), "config.yaml")).Load(); err == nil {
		t.Error("expected error for invalid env override")
	}
}

func TestGetEnvOrDefault(t *testing.T) {
	t.Setenv("TEST_VAR", "test-value")

	if v := GetEnvOrDefault("TEST_VAR", "default"); v != "test-value" {
		t.Errorf("expected 'test-value', got %s", v)
	}
	if v := GetEnvOrDefault("NONEXISTENT_VAR", "default"); v != "default" {
		t.Errorf("expected 'default', got %s", v)
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		value    string
		expected bool
	}{
		{"true", true},
		{"TRUE", true},
		{"1", true},
		{"yes", true},
		{"false", false},
		{"0", false},
		{"", false},
		{"invalid", false},
	}

	for _, tc := range tests {
		t.Setenv("TEST_BOOL", tc.value)
		if got := GetEnvBool("TEST_BOOL"); got != tc.expected {
			t.Errorf("GetEnvBool(%q): expected %v, got %v", tc.value, tc.expected, got)
		}
	}
}

func TestNewLoader(t *testing.T) {
	loader, err := NewLoader()
	if err != nil {
		t.Fatalf("failed to create loader: %v", err)
	}
	if filepath.Base(loader.ConfigPath()) != ConfigFileName {
		t.Errorf("expected config file name %s, got %s", ConfigFileName, filepath.Base(loader.ConfigPath()))
	}

	custom := filepath.Join(t.TempDir(), "custom.yaml")
	t.Setenv(ConfigPathEnv, custom)
	loader, err = NewLoader()
	if err != nil {
		t.Fatalf("failed to create loader: %v", err)
	}
	if loader.ConfigPath() != custom {
		t.Errorf("expected %s, got %s", custom, loader.ConfigPath())
	}
}

func TestLoader_Init(t *testing.T) {
	loader := NewLoaderWithPath(filepath.Join(t.TempDir(), "config.yaml"))

	if err := loader.Init(); err != nil {
		t.Fatalf("failed to init config: %v", err)
	}
	if !loader.Exists() {
		t.Error("expected config file to exist after init")
	}
	if err := loader.Init(); err == nil {
		t.Error("expected error when initializing existing config")
	}
}

func TestLoader_LoadInvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("{{{{invalid yaml"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	if _, err := NewLoaderWithPath(configPath).Load(); err == nil {
		t.Error("expected error for invalid YAML")
	}
}
