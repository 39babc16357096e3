package storage_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nikbrunner/kanmark/internal/places"
	"github.com/nikbrunner/kanmark/internal/storage"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	if err := storage.DefaultConfig().Validate(); err != nil {
		t.Errorf("default config must validate: %v", err)
	}
}

func TestDefaultConfig_Values(t *testing.T) {
	config := storage.DefaultConfig()

	if config.DBPath != "/tmp/places_copy.sqlite" {
		t.Errorf("db path: got %q", config.DBPath)
	}
	if config.ToolbarParentID != places.ToolbarFolderID {
		t.Errorf("toolbar parent: got %d", config.ToolbarParentID)
	}
	if config.WIPLimit != 3 {
		t.Errorf("wip limit: got %d", config.WIPLimit)
	}
	if len(config.Sources) != 5 {
		t.Errorf("sources: got %d, want 5", len(config.Sources))
	}

	var completed, recursive int
	for _, src := range config.Sources {
		if src.Completed {
			completed++
		}
		if src.Recursive {
			recursive++
		}
	}
	if completed != 1 {
		t.Errorf("completed sources: got %d, want 1", completed)
	}
	if recursive != 2 {
		t.Errorf("recursive sources: got %d, want 2", recursive)
	}

	if got := config.Bucket(places.BucketActive).Title; got != "01_IN_PROGRESS" {
		t.Errorf("active folder title: got %q", got)
	}
	if got := config.Bucket(places.BucketArchive).Title; got != "03_ARCHIVE" {
		t.Errorf("archive folder title: got %q", got)
	}
}

func TestLoadConfig_CreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	config, err := storage.LoadConfig(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if config.WIPLimit != 3 {
		t.Errorf("expected default wip limit, got %d", config.WIPLimit)
	}

	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected config file to be created: %v", err)
	}
}

func TestLoadConfig_MergesPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"wipLimit": 2}`), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	config, err := storage.LoadConfig(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if config.WIPLimit != 2 {
		t.Errorf("wip limit: got %d, want 2 from file", config.WIPLimit)
	}
	if config.DBPath != "/tmp/places_copy.sqlite" {
		t.Errorf("db path should keep its default, got %q", config.DBPath)
	}
	if len(config.Sources) != 5 {
		t.Errorf("sources should keep their defaults, got %d", len(config.Sources))
	}
}

func TestLoadConfig_RejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"wipLimit": -1}`), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	if _, err := storage.LoadConfig(path); err == nil {
		t.Error("expected error for negative wip limit")
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := storage.DefaultConfig()

	tests := []struct {
		name    string
		corrupt func(*storage.Config)
	}{
		{"empty db path", func(c *storage.Config) { c.DBPath = "" }},
		{"zero toolbar id", func(c *storage.Config) { c.ToolbarParentID = 0 }},
		{"zero wip limit", func(c *storage.Config) { c.WIPLimit = 0 }},
		{"no sources", func(c *storage.Config) { c.Sources = nil }},
		{"source without path", func(c *storage.Config) { c.Sources[0].Path = "" }},
		{"missing bucket title", func(c *storage.Config) {
			c.Buckets["active"] = storage.BucketFolder{Title: ""}
		}},
		{"slash in bucket title", func(c *storage.Config) {
			c.Buckets["active"] = storage.BucketFolder{Title: "01/IN_PROGRESS"}
		}},
		{"duplicate bucket titles", func(c *storage.Config) {
			c.Buckets["planning"] = c.Buckets["active"]
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := valid
			config.Sources = append([]storage.Source(nil), valid.Sources...)
			config.Buckets = make(map[string]storage.BucketFolder, len(valid.Buckets))
			for k, v := range valid.Buckets {
				config.Buckets[k] = v
			}

			tt.corrupt(&config)
			if err := config.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	config := storage.DefaultConfig()
	config.WIPLimit = 5
	if err := storage.SaveConfig(path, &config); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	loaded, err := storage.LoadConfig(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if loaded.WIPLimit != 5 {
		t.Errorf("wip limit: got %d, want 5", loaded.WIPLimit)
	}
}
