package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed default_levels.yaml
var defaultLevels []byte

type fileCatalog struct {
	Difficulties []fileDifficulty `yaml:"difficulties"`
	Levels       []fileLevel      `yaml:"levels"`
}

type fileDifficulty struct {
	ID   int  `yaml:"id"`
	Name Tier `yaml:"name"`
}

type fileLevel struct {
	Level      int  `yaml:"level"`
	Difficulty Tier `yaml:"difficulty"`
	Bots       int  `yaml:"bots"`
	Bullets    int  `yaml:"bullets"`
	Time       int  `yaml:"time"` // seconds
}

// Parse decodes a YAML catalog document.
func Parse(data []byte) (*Catalog, error) {
	var f fileCatalog
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("catalog: decode: %w", err)
	}

	diffs := make([]Difficulty, 0, len(f.Difficulties))
	for _, d := range f.Difficulties {
		diffs = append(diffs, Difficulty{ID: d.ID, Tier: d.Name})
	}
	levels := make([]Level, 0, len(f.Levels))
	for _, l := range f.Levels {
		levels = append(levels, Level{
			Number:          l.Level,
			BotQuota:        l.Bots,
			BulletAllowance: l.Bullets,
			Difficulty:      l.Difficulty,
			DefaultTime:     time.Duration(l.Time) * time.Second,
		})
	}
	return New(diffs, levels)
}

// Load reads and parses the catalog file at path.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: load %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog: load %s: %w", path, err)
	}
	return c, nil
}

// Default returns the catalog compiled into the binary.
func Default() (*Catalog, error) {
	return Parse(defaultLevels)
}

// MustDefault is Default for package initialisation and tests.
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

// LoadOrDefault loads path, or the embedded catalog when path is empty.
func LoadOrDefault(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	return Load(path)
}
