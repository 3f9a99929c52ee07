package catalog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/sirupsen/logrus"

	"github.com/temcen/mealrec/pkg/models"
)

// Querier is the subset of pgxpool.Pool used by PostgresSource.
type Querier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

// PostgresSource reads the catalog from a foods table.
type PostgresSource struct {
	db     Querier
	table  string
	logger *logrus.Logger
}

func NewPostgresSource(db Querier, table string, logger *logrus.Logger) *PostgresSource {
	if table == "" {
		table = "foods"
	}
	return &PostgresSource{
		db:     db,
		table:  table,
		logger: logger,
	}
}

type foodRow struct {
	id, name, brand               pgtype.Text
	category, foodType            pgtype.Text
	calories, protein, fat, carbs pgtype.Float8
	sodium, sugar, fiber, price   pgtype.Float8
	tags, allergens               []string
	score                         pgtype.Float8
}

func (s *PostgresSource) Load(ctx context.Context) ([]models.FoodRecord, error) {
	query := fmt.Sprintf(`
		SELECT id, name, brand, category, type,
		       calories, protein, fat, carbs, sodium, sugar, fiber, price,
		       tags, allergens, score
		FROM %s
		ORDER BY id`, pgx.Identifier{s.table}.Sanitize())

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query catalog table %s: %w", s.table, err)
	}
	defer rows.Close()

	var foods []models.FoodRecord
	dropped := 0
	for rows.Next() {
		var r foodRow
		if err := rows.Scan(
			&r.id, &r.name, &r.brand, &r.category, &r.foodType,
			&r.calories, &r.protein, &r.fat, &r.carbs, &r.sodium, &r.sugar, &r.fiber, &r.price,
			&r.tags, &r.allergens, &r.score,
		); err != nil {
			return nil, fmt.Errorf("failed to scan catalog row: %w", err)
		}

		food, ok := r.record()
		if !ok {
			s.logger.WithField("id", r.id.String).Warn("Dropping incomplete catalog row")
			dropped++
			continue
		}
		foods = append(foods, food)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read catalog rows: %w", err)
	}

	if dropped > 0 {
		s.logger.WithFields(logrus.Fields{
			"table":   s.table,
			"dropped": dropped,
			"kept":    len(foods),
		}).Warn("Catalog table contained incomplete rows")
	}

	return foods, nil
}

// record converts a row, reporting false when a required column is missing
// or negative.
func (r foodRow) record() (models.FoodRecord, bool) {
	for _, v := range []pgtype.Text{r.id, r.name} {
		if !v.Valid || v.String == "" {
			return models.FoodRecord{}, false
		}
	}
	for _, v := range []pgtype.Float8{r.calories, r.protein, r.fat, r.carbs, r.price} {
		if !v.Valid || v.Float64 < 0 {
			return models.FoodRecord{}, false
		}
	}

	food := models.FoodRecord{
		ID:        r.id.String,
		Name:      r.name.String,
		Brand:     r.brand.String,
		Category:  r.category.String,
		Type:      r.foodType.String,
		Calories:  r.calories.Float64,
		Protein:   r.protein.Float64,
		Fat:       r.fat.Float64,
		Carbs:     r.carbs.Float64,
		Sodium:    r.sodium.Float64,
		Sugar:     r.sugar.Float64,
		Fiber:     r.fiber.Float64,
		Price:     r.price.Float64,
		Tags:      r.tags,
		Allergens: r.allergens,
	}
	if food.Tags == nil {
		food.Tags = []string{}
	}
	if r.score.Valid {
		score := r.score.Float64
		food.Score = &score
	}
	return food, true
}
