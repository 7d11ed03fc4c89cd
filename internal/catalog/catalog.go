// Package catalog loads the default life areas and writes them to storage.
package catalog

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/mmynk/lifeareas/internal/models"
)

//go:embed default_areas.yaml
var defaultAreas []byte

// Entry is one default life area.
type Entry struct {
	Designation string `yaml:"designation" validate:"required,max=55"`
	IconPath    string `yaml:"icon_path" validate:"required"`
}

type file struct {
	LifeAreas []Entry `yaml:"life_areas" validate:"dive"`
}

// Upserter is the storage the seeder writes through.
type Upserter interface {
	UpsertDefaultLifeArea(ctx context.Context, area *models.LifeArea) error
}

// Load reads the defaults from path, or the embedded list when path is empty.
func Load(path string) ([]Entry, error) {
	if path == "" {
		return Parse(defaultAreas)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read default areas: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a defaults document.
func Parse(data []byte) ([]Entry, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse default areas: %w", err)
	}
	if err := validator.New().Struct(&f); err != nil {
		return nil, fmt.Errorf("invalid default areas: %w", err)
	}

	seen := make(map[string]bool, len(f.LifeAreas))
	for _, e := range f.LifeAreas {
		if seen[e.Designation] {
			return nil, fmt.Errorf("invalid default areas: duplicate designation %q", e.Designation)
		}
		seen[e.Designation] = true
	}
	return f.LifeAreas, nil
}

// Seed upserts every entry in order. Existing defaults keep their IDs, so
// users' positions survive a restart.
func Seed(ctx context.Context, store Upserter, entries []Entry) error {
	for _, e := range entries {
		area := &models.LifeArea{Designation: e.Designation, IconPath: e.IconPath}
		if err := store.UpsertDefaultLifeArea(ctx, area); err != nil {
			return fmt.Errorf("failed to seed %q: %w", e.Designation, err)
		}
		slog.Debug("Default life area seeded", "life_area_id", area.ID, "designation", area.Designation)
	}
	slog.Info("Default life areas seeded", "count", len(entries))
	return nil
}
