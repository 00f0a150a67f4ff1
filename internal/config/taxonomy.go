package config

import (
	"fmt"
	"os"

	"dario.cat/mergo"
	"github.com/ghodss/yaml"

	"github.com/insightdelivered/txn-ingest/internal/category"
	"github.com/insightdelivered/txn-ingest/internal/models"
)

// TaxonomyFile is the YAML shape of a custom category table. A list left
// out of the file keeps the built-in subcategories.
type TaxonomyFile struct {
	Needs         []string `json:"needs"`
	Wants         []string `json:"wants"`
	Savings       []string `json:"savings"`
	Uncategorized []string `json:"uncategorized"`
}

func defaultTaxonomyFile() TaxonomyFile {
	t := category.DefaultTaxonomy()
	return TaxonomyFile{
		Needs:         t.SubCategories(models.CategoryNeeds),
		Wants:         t.SubCategories(models.CategoryWants),
		Savings:       t.SubCategories(models.CategorySavings),
		Uncategorized: t.SubCategories(models.CategoryUncategorized),
	}
}

// Taxonomy returns the ordered table: needs, wants, savings, uncategorized.
func (f TaxonomyFile) Taxonomy() category.Taxonomy {
	return category.Taxonomy{
		{Category: models.CategoryNeeds, SubCategories: f.Needs},
		{Category: models.CategoryWants, SubCategories: f.Wants},
		{Category: models.CategorySavings, SubCategories: f.Savings},
		{Category: models.CategoryUncategorized, SubCategories: f.Uncategorized},
	}
}

// LoadTaxonomy reads a taxonomy file. An empty path yields the built-in
// table.
func LoadTaxonomy(path string) (category.Taxonomy, error) {
	if path == "" {
		return category.DefaultTaxonomy(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read taxonomy %s: %w", path, err)
	}
	return ParseTaxonomy(raw)
}

// ParseTaxonomy decodes a YAML or JSON taxonomy document.
func ParseTaxonomy(raw []byte) (category.Taxonomy, error) {
	var f TaxonomyFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse taxonomy: %w", err)
	}
	if err := mergo.Merge(&f, defaultTaxonomyFile()); err != nil {
		return nil, fmt.Errorf("merge taxonomy defaults: %w", err)
	}
	return f.Taxonomy(), nil
}
