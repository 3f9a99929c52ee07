// Package recommender builds meal recommendations from a food catalog and a
// user profile: constraint filtering, nutrition scoring, preference bonuses,
// meal slot allocation and a nutrition summary. It does no I/O and keeps no
// state between runs, so one Recommender can serve concurrent callers.
package recommender

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/temcen/mealrec/pkg/models"
)

var (
	ErrNilProfile    = errors.New("recommender: profile is nil")
	ErrInvalidBudget = errors.New("recommender: budget per meal must be positive")
)

// Options tunes the filter and the allocator.
type Options struct {
	// MinViableCandidates is the smallest filtered set worth scoring.
	// Smaller sets go straight to the random fallback.
	MinViableCandidates int `mapstructure:"min_viable_candidates"`
	// TargetPerSlot is the number of items a slot aims for.
	TargetPerSlot int `mapstructure:"target_per_slot"`
	// MinPerSlot is the number of items every slot must reach.
	MinPerSlot int `mapstructure:"min_per_slot"`
	// MinPoolSize triggers widening of a slot's candidate pool.
	MinPoolSize int `mapstructure:"min_pool_size"`
	// HeadMultiplier sizes the shuffled head of each pool as a multiple of
	// TargetPerSlot.
	HeadMultiplier int `mapstructure:"head_multiplier"`
	// FallbackItemsPerMeal sizes the random fallback sample.
	FallbackItemsPerMeal int `mapstructure:"fallback_items_per_meal"`
	// CalorieTolerance caps slot calories at this multiple of the slot target.
	CalorieTolerance float64 `mapstructure:"calorie_tolerance"`
	// Deterministic disables the random selection policy.
	Deterministic bool `mapstructure:"deterministic"`
}

// DefaultOptions returns the standard tuning.
func DefaultOptions() Options {
	return Options{
		MinViableCandidates:  10,
		TargetPerSlot:        3,
		MinPerSlot:           2,
		MinPoolSize:          3,
		HeadMultiplier:       2,
		FallbackItemsPerMeal: 3,
		CalorieTolerance:     1.5,
	}
}

// withDefaults replaces unset or nonsensical values with the defaults.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MinViableCandidates <= 0 {
		o.MinViableCandidates = d.MinViableCandidates
	}
	if o.TargetPerSlot <= 0 {
		o.TargetPerSlot = d.TargetPerSlot
	}
	if o.MinPerSlot <= 0 {
		o.MinPerSlot = d.MinPerSlot
	}
	if o.MinPerSlot > o.TargetPerSlot {
		o.MinPerSlot = o.TargetPerSlot
	}
	if o.MinPoolSize <= 0 {
		o.MinPoolSize = d.MinPoolSize
	}
	if o.HeadMultiplier <= 0 {
		o.HeadMultiplier = d.HeadMultiplier
	}
	if o.FallbackItemsPerMeal <= 0 {
		o.FallbackItemsPerMeal = d.FallbackItemsPerMeal
	}
	if o.CalorieTolerance <= 0 {
		o.CalorieTolerance = d.CalorieTolerance
	}
	return o
}

// Option configures a Recommender.
type Option func(*Recommender)

// WithOptions replaces the tuning options.
func WithOptions(opts Options) Option {
	return func(r *Recommender) {
		r.opts = opts.withDefaults()
	}
}

// WithRandSource sets the factory for the random source used by each run.
// The factory is called once per Recommend call.
func WithRandSource(newSource func() rand.Source) Option {
	return func(r *Recommender) {
		r.newSource = newSource
	}
}

// WithSeed makes every run draw from a source seeded with seed, so equal
// inputs give equal output.
func WithSeed(seed int64) Option {
	return WithRandSource(func() rand.Source { return rand.NewSource(seed) })
}

// WithDeterministic always takes the best items in score order.
func WithDeterministic() Option {
	return func(r *Recommender) {
		r.opts.Deterministic = true
	}
}

// Recommender runs the recommendation pipeline.
type Recommender struct {
	opts      Options
	newSource func() rand.Source
	logger    *logrus.Logger
}

// New creates a recommender with default options.
func New(logger *logrus.Logger, options ...Option) *Recommender {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	r := &Recommender{
		opts: DefaultOptions(),
		newSource: func() rand.Source {
			return rand.NewSource(time.Now().UnixNano())
		},
		logger: logger,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// Options returns the effective options.
func (r *Recommender) Options() Options {
	return r.opts
}

// Recommend builds a recommendation for the profile from the catalog. The
// catalog is only read.
//
// Data problems never produce an error: an empty or over-constrained catalog
// yields a result with Fallback set. Allergies are honoured in every case.
func (r *Recommender) Recommend(profile *models.UserProfile, catalog []models.FoodRecord) (*models.Recommendation, error) {
	if profile == nil {
		return nil, ErrNilProfile
	}
	if !(profile.BudgetPerMeal > 0) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidBudget, profile.BudgetPerMeal)
	}

	p := ClampProfile(*profile)
	daily := DailyTargets(p)
	perMeal := PerMealTargets(p)
	plan := Plan(p, daily)

	var rng *rand.Rand
	if !r.opts.Deterministic {
		rng = rand.New(r.newSource())
	}

	filtered := r.Filter(catalog, p)
	rec := &models.Recommendation{
		Targets:  RoundTargets(daily),
		Relaxed:  filtered.Relaxed,
		Fallback: len(filtered.Relaxed) > 0,
	}

	var meals []models.MealSlot
	if !filtered.NeedsFallback {
		items := Boost(Score(filtered.Candidates, perMeal, p.Goal), p.Preferences)
		if alloc := r.Allocate(items, plan, rng); alloc.Complete {
			meals = alloc.Meals
		}
	}
	if meals == nil {
		r.logger.WithFields(logrus.Fields{
			"candidates":   len(filtered.Candidates),
			"allergy_safe": len(filtered.AllergySafe),
			"meal_count":   p.MealCount,
		}).Info("Not enough candidates for complete meals, using random fallback")
		meals = r.fallback(filtered.AllergySafe, plan, p, perMeal, rng)
		rec.Fallback = true
	}

	rec.Meals = meals
	rec.Summary = Summarize(meals, daily, p.BudgetPerMeal, p.MealCount, len(p.Allergies) > 0)
	return rec, nil
}

// RoundTargets rounds every target to one decimal.
func RoundTargets(t models.NutritionTargets) models.NutritionTargets {
	return models.NutritionTargets{
		Calories: round1(t.Calories),
		ProteinG: round1(t.ProteinG),
		FatG:     round1(t.FatG),
		CarbsG:   round1(t.CarbsG),
	}
}
