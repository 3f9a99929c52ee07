// Package catalog loads the food catalog from a JSON file or a PostgreSQL
// table and serves it as an immutable snapshot.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/temcen/mealrec/internal/config"
	"github.com/temcen/mealrec/internal/validation"
	"github.com/temcen/mealrec/pkg/models"
)

const (
	SourceFile     = "file"
	SourcePostgres = "postgres"
)

var (
	ErrUnknownSource = errors.New("catalog: unknown source")
	ErrNoDatabase    = errors.New("catalog: postgres source requires a database connection")
)

// Source produces catalog records. Implementations drop malformed records
// instead of failing the whole load.
type Source interface {
	Load(ctx context.Context) ([]models.FoodRecord, error)
}

// Catalog is a read-only snapshot of food records, safe for concurrent use.
type Catalog struct {
	foods []models.FoodRecord
	index map[string]int
}

// New builds a catalog from records. Records with an id seen before are
// dropped.
func New(foods []models.FoodRecord) *Catalog {
	c := &Catalog{
		foods: make([]models.FoodRecord, 0, len(foods)),
		index: make(map[string]int, len(foods)),
	}
	for _, f := range foods {
		if _, dup := c.index[f.ID]; dup {
			continue
		}
		c.index[f.ID] = len(c.foods)
		c.foods = append(c.foods, f)
	}
	return c
}

// Foods returns the records in load order. The returned slice is a copy;
// records must still be treated as read-only.
func (c *Catalog) Foods() []models.FoodRecord {
	out := make([]models.FoodRecord, len(c.foods))
	copy(out, c.foods)
	return out
}

func (c *Catalog) Len() int {
	return len(c.foods)
}

// Get looks up a record by id.
func (c *Catalog) Get(id string) (models.FoodRecord, bool) {
	i, ok := c.index[id]
	if !ok {
		return models.FoodRecord{}, false
	}
	return c.foods[i], true
}

// Page returns up to limit records starting at offset.
func (c *Catalog) Page(offset, limit int) []models.FoodRecord {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(c.foods) || limit <= 0 {
		return []models.FoodRecord{}
	}
	end := offset + limit
	if end > len(c.foods) {
		end = len(c.foods)
	}
	out := make([]models.FoodRecord, end-offset)
	copy(out, c.foods[offset:end])
	return out
}

// Load reads the catalog from the configured source. On failure it returns
// an empty catalog together with the error so callers can keep serving.
func Load(ctx context.Context, cfg config.CatalogConfig, pg Querier, validator *validation.SchemaValidator, logger *logrus.Logger) (*Catalog, error) {
	var src Source
	switch cfg.Source {
	case SourceFile, "":
		src = NewFileSource(cfg.Path, validator, logger)
	case SourcePostgres:
		if pg == nil {
			return New(nil), ErrNoDatabase
		}
		src = NewPostgresSource(pg, cfg.Table, logger)
	default:
		return New(nil), fmt.Errorf("%w: %q", ErrUnknownSource, cfg.Source)
	}

	foods, err := src.Load(ctx)
	if err != nil {
		return New(nil), err
	}

	c := New(foods)
	logger.WithFields(logrus.Fields{
		"source": cfg.Source,
		"items":  c.Len(),
	}).Info("Food catalog loaded")
	return c, nil
}
