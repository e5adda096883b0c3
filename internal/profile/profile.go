// Package profile resolves a named library profile from the config file.
// A profile fixes the root directory, the catalog directory, and the scan
// options before the engine runs; the engine itself never inspects raw flags
// or viper keys.
package profile

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/chaiji/libman/internal/store"
	"github.com/chaiji/libman/internal/util"
)

// DefaultExtractDir is the artifact directory name used when a profile does
// not set one. Extracted text for root/<top>/<name>.pdf lives at
// root/<top>/<extract_dir>/<name>.txt.
const DefaultExtractDir = "extracted"

// Profile is the resolved configuration for one library
type Profile struct {
	Name             string
	Root             string
	CatalogDir       string
	ExtractDir       string
	Excluded         []string // exact names, or directory prefixes ending in "/"
	Concurrency      int
	FuzzyMaxDistance int // 0 means the ratio-based default
}

// Load resolves the named profile from the loaded viper config. The profile
// name "" selects the configured default profile, or "default".
func Load(name string) (*Profile, error) {
	if name == "" {
		name = viper.GetString("default_profile")
	}
	if name == "" {
		name = "default"
	}

	sub := viper.Sub("profiles." + name)
	if sub == nil {
		return nil, fmt.Errorf("%w: profile %q not found in config", util.ErrInvalidConfig, name)
	}

	p := &Profile{
		Name:             name,
		Root:             sub.GetString("root"),
		CatalogDir:       sub.GetString("catalog_dir"),
		ExtractDir:       sub.GetString("extract_dir"),
		Excluded:         sub.GetStringSlice("excluded"),
		Concurrency:      viper.GetInt("concurrency"),
		FuzzyMaxDistance: viper.GetInt("fuzzy_max_distance"),
	}

	if p.Root == "" {
		return nil, fmt.Errorf("%w: profile %q has no root", util.ErrInvalidConfig, name)
	}
	if p.CatalogDir == "" {
		p.CatalogDir = filepath.Join(p.Root, "catalog")
	}
	if p.ExtractDir == "" {
		p.ExtractDir = DefaultExtractDir
	}
	if p.Concurrency <= 0 {
		p.Concurrency = 8
	}

	return p, nil
}

// EnsureCatalogDir creates the catalog directory if needed
func (p *Profile) EnsureCatalogDir() error {
	if err := os.MkdirAll(p.CatalogDir, 0o755); err != nil {
		return fmt.Errorf("failed to create catalog dir: %w", err)
	}
	return nil
}

// StorePath is the location of the catalog database
func (p *Profile) StorePath() string {
	return filepath.Join(p.CatalogDir, store.DefaultFilename)
}

// MirrorPath is the location of the flat CSV export
func (p *Profile) MirrorPath() string {
	return filepath.Join(p.CatalogDir, "latest-catalog.csv")
}
