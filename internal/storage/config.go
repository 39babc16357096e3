package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nikbrunner/kanmark/internal/places"
)

// Source names one folder whose bookmarks take part in restructuring,
// addressed by its slash path below the toolbar folder.
type Source struct {
	Label string `json:"label"`
	Path  string `json:"path"`
	// Recursive collects bookmarks from the whole subtree instead of only
	// the folder's direct children.
	Recursive bool `json:"recursive,omitempty"`
	// Completed sends the bookmarks straight to the archive bucket.
	Completed bool `json:"completed,omitempty"`
}

// BucketFolder describes the destination folder for one bucket.
type BucketFolder struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// Config holds application configuration.
type Config struct {
	DBPath          string                  `json:"dbPath"`
	ToolbarParentID int64                   `json:"toolbarParentId"`
	WIPLimit        int                     `json:"wipLimit"`
	SystemFolderIDs []int64                 `json:"systemFolderIds"`
	Sources         []Source                `json:"sources"`
	Buckets         map[string]BucketFolder `json:"buckets"`
}

// Bucket returns the destination folder configured for b.
func (c Config) Bucket(b places.Bucket) BucketFolder {
	return c.Buckets[b.String()]
}

// Validate checks the config for values that would make a restructuring
// run meaningless or dangerous.
func (c Config) Validate() error {
	if c.DBPath == "" {
		return errors.New("config: dbPath must not be empty")
	}
	if c.ToolbarParentID <= 0 {
		return fmt.Errorf("config: toolbarParentId %d is not a valid folder id", c.ToolbarParentID)
	}
	if c.WIPLimit <= 0 {
		return fmt.Errorf("config: wipLimit %d must be at least 1", c.WIPLimit)
	}
	if len(c.Sources) == 0 {
		return errors.New("config: at least one source folder is required")
	}
	for _, src := range c.Sources {
		if src.Label == "" || src.Path == "" {
			return fmt.Errorf("config: source %+v needs both label and path", src)
		}
	}

	titles := make(map[string]string)
	for _, b := range places.Buckets() {
		folder := c.Bucket(b)
		if folder.Title == "" {
			return fmt.Errorf("config: bucket %s has no destination folder title", b)
		}
		if strings.Contains(folder.Title, "/") {
			return fmt.Errorf("config: bucket %s folder title %q must not contain /", b, folder.Title)
		}
		if other, ok := titles[folder.Title]; ok {
			return fmt.Errorf("config: buckets %s and %s share the folder title %q", other, b, folder.Title)
		}
		titles[folder.Title] = b.String()
	}

	return nil
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		DBPath:          "/tmp/places_copy.sqlite",
		ToolbarParentID: places.ToolbarFolderID,
		WIPLimit:        3,
		SystemFolderIDs: places.SystemFolderIDs(),
		Sources: []Source{
			{Label: "Coursera/In progress", Path: "Learn/Coursera/In progress"},
			{Label: "Coursera/Planning", Path: "Learn/Coursera/Planning"},
			{Label: "Coursera/Completed", Path: "Learn/Coursera/Completed", Completed: true},
			{Label: "Platzi", Path: "Learn/Platzi", Recursive: true},
			{Label: "CISCO", Path: "Learn/CISCO", Recursive: true},
		},
		Buckets: map[string]BucketFolder{
			"active":   {Title: "01_IN_PROGRESS", Description: "Active courses - WIP limit of 3"},
			"planning": {Title: "02_PLANNING", Description: "Queued courses to start later"},
			"archive":  {Title: "03_ARCHIVE", Description: "Completed courses"},
		},
	}
}

// LoadConfig reads config from the JSON file.
// Creates the file with defaults if it doesn't exist.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			config := DefaultConfig()
			// Create the config file with defaults
			if saveErr := SaveConfig(path, &config); saveErr != nil {
				// Non-fatal: return defaults even if save fails
				return &config, nil
			}
			return &config, nil
		}
		return nil, err
	}

	// Unmarshal over the defaults so missing keys keep their default values
	config := DefaultConfig()
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	if config.SystemFolderIDs == nil {
		config.SystemFolderIDs = places.SystemFolderIDs()
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// SaveConfig writes config to the JSON file.
// Creates the directory if it doesn't exist.
func SaveConfig(path string, config *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfigPath returns the default config path: ~/.config/kanmark/config.json
func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "kanmark", "config.json"), nil
}
