package content

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"dipanshu.dev/internal/models"
)

//go:embed site.yaml
var defaultSite []byte

// Load reads the site content from path, or the embedded default when
// path is empty.
func Load(path string) (*models.Site, error) {
	data := defaultSite
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read content file: %w", err)
		}
		data = raw
	}
	return Parse(data)
}

// Parse decodes and checks site content
func Parse(data []byte) (*models.Site, error) {
	var site models.Site
	if err := yaml.Unmarshal(data, &site); err != nil {
		return nil, fmt.Errorf("failed to parse content: %w", err)
	}
	if err := check(&site); err != nil {
		return nil, err
	}
	return &site, nil
}

func check(site *models.Site) error {
	if site.Profile.Name == "" {
		return fmt.Errorf("content: profile name is required")
	}

	seen := make(map[string]bool, len(site.Projects))
	for i, p := range site.Projects {
		if p.ID == "" {
			return fmt.Errorf("content: projects[%d] has no id", i)
		}
		if seen[p.ID] {
			return fmt.Errorf("content: duplicate project id %q", p.ID)
		}
		seen[p.ID] = true
	}

	srcs := make(map[string]bool, len(site.Tracks))
	for i, t := range site.Tracks {
		if t.Src == "" {
			return fmt.Errorf("content: tracks[%d] has no src", i)
		}
		if srcs[t.Src] {
			return fmt.Errorf("content: duplicate track src %q", t.Src)
		}
		srcs[t.Src] = true
	}
	return nil
}
