package shared

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.YouTube.BaseURL == "" {
			t.Error("expected default YouTube base URL")
		}
		if config.Database.Path == "" {
			t.Error("expected default database path")
		}
		if config.Server.Port == 0 {
			t.Error("expected default server port")
		}
		if !config.Scheduler.Enabled {
			t.Error("expected scheduler enabled by default")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		t.Run("parses a valid file", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			content := `
[youtube]
api_key = "test-key"
base_url = "http://localhost:9999"

[database]
path = "test.db"
max_open_conns = 3

[server]
host = "0.0.0.0"
port = 8081

[scheduler]
enabled = false
`
			if err := os.WriteFile(path, []byte(content), 0644); err != nil {
				t.Fatalf("failed to write config: %v", err)
			}

			config, err := LoadConfig(path)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if config.YouTube.APIKey != "test-key" {
				t.Errorf("expected api key test-key, got %s", config.YouTube.APIKey)
			}
			if config.Server.Port != 8081 {
				t.Errorf("expected port 8081, got %d", config.Server.Port)
			}
			if config.Scheduler.Enabled {
				t.Error("expected scheduler disabled")
			}
		})

		t.Run("fails on a missing file", func(t *testing.T) {
			if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
				t.Fatal("expected error for missing file")
			}
		})

		t.Run("fails on malformed TOML", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.toml")
			if err := os.WriteFile(path, []byte("[youtube\napi_key"), 0644); err != nil {
				t.Fatalf("failed to write config: %v", err)
			}
			if _, err := LoadConfig(path); err == nil {
				t.Fatal("expected parse error")
			}
		})
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")

		if err := CreateConfigFile(path); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected config file to exist: %v", err)
		}

		if err := CreateConfigFile(path); err == nil {
			t.Fatal("expected error when file already exists")
		}
	})
}
