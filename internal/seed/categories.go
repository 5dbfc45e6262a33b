package seed

import (
	"context"
	_ "embed"
	"fmt"

	"jobboard/internal/cache"
	"jobboard/internal/models"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:embed categories.yaml
var categoriesYAML []byte

type categoryFile struct {
	Categories []struct {
		Name string `yaml:"name"`
		Icon string `yaml:"icon"`
	} `yaml:"categories"`
}

// BuiltInCategories returns the embedded category list.
func BuiltInCategories() ([]models.Category, error) {
	var f categoryFile
	if err := yaml.Unmarshal(categoriesYAML, &f); err != nil {
		return nil, fmt.Errorf("parse categories.yaml: %w", err)
	}
	out := make([]models.Category, 0, len(f.Categories))
	for _, c := range f.Categories {
		out = append(out, models.Category{Name: c.Name, Icon: c.Icon})
	}
	return out, nil
}

// Categories inserts the built-in categories, skipping names that exist.
// It returns the number of rows inserted.
func Categories(ctx context.Context, db *gorm.DB) (int64, error) {
	cats, err := BuiltInCategories()
	if err != nil {
		return 0, err
	}
	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(&cats)
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected > 0 {
		cache.InvalidateCategories(ctx)
	}
	return res.RowsAffected, nil
}
