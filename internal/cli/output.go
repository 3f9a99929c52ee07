package cli

import (
	"io"
	"strings"
	"text/tabwriter"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/temcen/mealrec/pkg/models"
)

// Prices are in won; group digits the Korean way.
var printer = message.NewPrinter(language.Korean)

func renderRecommendation(w io.Writer, rec *models.Recommendation) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	if rec.Fallback {
		printer.Fprintf(tw, "fallback result")
		if len(rec.Relaxed) > 0 {
			printer.Fprintf(tw, " (relaxed: %s)", strings.Join(rec.Relaxed, ", "))
		}
		printer.Fprintln(tw)
	}

	for _, slot := range rec.Meals {
		printer.Fprintf(tw, "\n%s\ttarget %.0f kcal\tbudget %.0f원\n", slot.Name, slot.CalorieTarget, slot.Budget)
		for _, item := range slot.Items {
			printer.Fprintf(tw, "  %s\t%.0f kcal\t%.0f원\tscore %.2f\n", item.Name, item.Calories, item.Price, item.FinalScore)
		}
	}

	s := rec.Summary
	printer.Fprintf(tw, "\ncalories\t%.1f / %.1f kcal\n", s.Calories.Actual, s.Calories.Target)
	printer.Fprintf(tw, "protein\t%.1f / %.1f g\n", s.Protein.Actual, s.Protein.Target)
	printer.Fprintf(tw, "fat\t%.1f / %.1f g\n", s.Fat.Actual, s.Fat.Target)
	printer.Fprintf(tw, "carbs\t%.1f / %.1f g\n", s.Carbs.Actual, s.Carbs.Target)
	printer.Fprintf(tw, "price\t%.0f / %.0f원\n", s.Budget.Actual, s.Budget.Target)
	printer.Fprintf(tw, "items\t%d\tavg score %.2f\n", s.ItemCount, s.AverageScore)

	return tw.Flush()
}

func renderTargets(w io.Writer, t *models.TargetsResponse) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	printer.Fprintf(tw, "\tcalories\tprotein\tfat\tcarbs\n")
	printer.Fprintf(tw, "daily\t%.1f\t%.1f\t%.1f\t%.1f\n", t.Daily.Calories, t.Daily.ProteinG, t.Daily.FatG, t.Daily.CarbsG)
	printer.Fprintf(tw, "per meal\t%.1f\t%.1f\t%.1f\t%.1f\n", t.PerMeal.Calories, t.PerMeal.ProteinG, t.PerMeal.FatG, t.PerMeal.CarbsG)
	for _, slot := range t.Slots {
		printer.Fprintf(tw, "%s\t%.1f\t\t\t\n", slot.Name, slot.Calories)
	}

	return tw.Flush()
}
