package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/temcen/mealrec/internal/validation"
	"github.com/temcen/mealrec/pkg/models"
)

// FileSource reads a JSON catalog: either an array of records or an object
// with a "foods" array. Every entry is checked against the food-record
// schema.
type FileSource struct {
	path      string
	validator *validation.SchemaValidator
	logger    *logrus.Logger
}

func NewFileSource(path string, validator *validation.SchemaValidator, logger *logrus.Logger) *FileSource {
	return &FileSource{
		path:      path,
		validator: validator,
		logger:    logger,
	}
}

func (s *FileSource) Load(ctx context.Context) ([]models.FoodRecord, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", s.path, err)
	}
	return s.Parse(ctx, data)
}

// Parse decodes a catalog document, dropping entries that fail validation
// or repeat an id.
func (s *FileSource) Parse(ctx context.Context, data []byte) ([]models.FoodRecord, error) {
	entries, err := SplitEntries(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", s.path, err)
	}

	foods := make([]models.FoodRecord, 0, len(entries))
	seen := make(map[string]bool, len(entries))
	dropped := 0

	for i, raw := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if s.validator != nil {
			if result := s.validator.ValidateFoodRecord(raw); !result.Valid {
				s.logger.WithFields(logrus.Fields{
					"index": i,
					"error": result.Err(),
				}).Warn("Dropping invalid catalog entry")
				dropped++
				continue
			}
		}

		var food models.FoodRecord
		if err := json.Unmarshal(raw, &food); err != nil {
			s.logger.WithError(err).WithField("index", i).Warn("Dropping undecodable catalog entry")
			dropped++
			continue
		}
		if food.ID == "" || seen[food.ID] {
			s.logger.WithFields(logrus.Fields{
				"index": i,
				"id":    food.ID,
			}).Warn("Dropping catalog entry with missing or duplicate id")
			dropped++
			continue
		}
		seen[food.ID] = true
		foods = append(foods, food)
	}

	if dropped > 0 {
		s.logger.WithFields(logrus.Fields{
			"path":    s.path,
			"dropped": dropped,
			"kept":    len(foods),
		}).Warn("Catalog contained invalid entries")
	}

	return foods, nil
}

// SplitEntries returns the raw entries of a catalog document, which is
// either an array of records or an object with a "foods" array.
func SplitEntries(data []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var doc struct {
			Foods []json.RawMessage `json:"foods"`
		}
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, err
		}
		return doc.Foods, nil
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(trimmed, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
