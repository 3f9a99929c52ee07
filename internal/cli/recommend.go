package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/temcen/mealrec/internal/catalog"
	"github.com/temcen/mealrec/internal/config"
	"github.com/temcen/mealrec/internal/database"
	"github.com/temcen/mealrec/internal/services"
	"github.com/temcen/mealrec/internal/validation"
	"github.com/temcen/mealrec/pkg/models"
)

type recommendOptions struct {
	catalogPath   string
	profilePath   string
	seed          int64
	deterministic bool
	format        string
}

func newRecommendCmd(root *rootOptions) *cobra.Command {
	opts := &recommendOptions{}

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Recommend meals for a profile",
		Long: `Reads a profile document (the same JSON the API accepts) and prints
a meal plan built from the catalog. Without --catalog the configured catalog
source is used.`,
		Example: `  mealrec recommend --catalog data/foods.json --profile profile.json
  cat profile.json | mealrec recommend --profile - --format text --seed 42`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecommend(cmd, root, opts)
		},
	}

	cmd.Flags().StringVar(&opts.catalogPath, "catalog", "", "Catalog JSON file (overrides the configured source)")
	cmd.Flags().StringVarP(&opts.profilePath, "profile", "p", "", "Profile JSON file, or - for stdin")
	cmd.Flags().Int64Var(&opts.seed, "seed", 0, "Random seed for reproducible output (0 uses the configured seed)")
	cmd.Flags().BoolVar(&opts.deterministic, "deterministic", false, "Always pick the best scored items")
	cmd.Flags().StringVarP(&opts.format, "format", "f", formatJSON, "Output format: json or text")
	_ = cmd.MarkFlagRequired("profile")

	return cmd
}

func runRecommend(cmd *cobra.Command, root *rootOptions, opts *recommendOptions) error {
	if err := checkFormat(opts.format); err != nil {
		return err
	}

	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	logger := root.logger(cmd.ErrOrStderr())

	validator, err := validation.NewSchemaValidator()
	if err != nil {
		return err
	}

	raw, err := readInput(cmd, opts.profilePath)
	if err != nil {
		return fmt.Errorf("read profile: %w", err)
	}
	req, err := parseRecommendationRequest(validator, raw)
	if err != nil {
		return err
	}

	cat, err := loadCatalog(cmd.Context(), cfg, opts.catalogPath, validator, logger)
	if err != nil {
		return err
	}

	tuning := cfg.Recommendation
	if opts.seed != 0 {
		tuning.Seed = opts.seed
	}
	if opts.deterministic {
		tuning.Deterministic = true
	}

	engine := services.NewRecommender(tuning, logger)
	rec, err := engine.Recommend(req.Profile(), cat.Foods())
	if err != nil {
		return fmt.Errorf("recommend: %w", err)
	}

	if opts.format == formatText {
		return renderRecommendation(cmd.OutOrStdout(), rec)
	}
	return writeJSON(cmd.OutOrStdout(), rec)
}

// parseRecommendationRequest checks a profile document against the
// user-profile schema before decoding it.
func parseRecommendationRequest(validator *validation.SchemaValidator, raw []byte) (*models.RecommendationRequest, error) {
	if !json.Valid(raw) {
		return nil, errors.New("profile is not valid JSON")
	}
	if result := validator.ValidateUserProfile(raw); !result.Valid {
		return nil, fmt.Errorf("invalid profile: %w", result.Err())
	}

	var req models.RecommendationRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return &req, nil
}

// loadCatalog reads the catalog from path when given, otherwise from the
// configured source. A postgres source opens its own connection for the
// duration of the load.
func loadCatalog(ctx context.Context, cfg *config.Config, path string, validator *validation.SchemaValidator, logger *logrus.Logger) (*catalog.Catalog, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	if path != "" {
		foods, err := catalog.NewFileSource(path, validator, logger).Load(ctx)
		if err != nil {
			return nil, err
		}
		return catalog.New(foods), nil
	}

	var pg catalog.Querier
	if cfg.Catalog.Source == catalog.SourcePostgres {
		db, err := database.New(cfg, logger)
		if err != nil {
			return nil, err
		}
		defer db.Close()
		if db.PG != nil {
			pg = db.PG
		}
	}

	return catalog.Load(ctx, cfg.Catalog, pg, validator, logger)
}
