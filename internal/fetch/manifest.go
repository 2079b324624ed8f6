package fetch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Manifest lists the assets to download. Relative destinations are resolved
// against BaseDir, or the manifest's directory when BaseDir is empty.
//
//	base_dir: public/images
//	assets:
//	  - url: https://example.com/a.png
//	    dest: a.png
type Manifest struct {
	BaseDir string `yaml:"base_dir"`
	Assets  []Job  `yaml:"assets"`
}

func LoadManifest(path string) ([]Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	base := m.BaseDir
	if base == "" {
		base = filepath.Dir(path)
	} else if !filepath.IsAbs(base) {
		base = filepath.Join(filepath.Dir(path), base)
	}

	jobs := make([]Job, 0, len(m.Assets))
	for i, a := range m.Assets {
		if a.URL == "" || a.Dest == "" {
			return nil, fmt.Errorf("manifest asset %d: %w", i, errors.New("url and dest are required"))
		}
		if !filepath.IsAbs(a.Dest) {
			a.Dest = filepath.Join(base, a.Dest)
		}
		jobs = append(jobs, a)
	}
	return jobs, nil
}
