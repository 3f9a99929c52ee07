package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/temcen/mealrec/internal/catalog"
	"github.com/temcen/mealrec/internal/validation"
)

// catalogReport is the output of catalog validate.
type catalogReport struct {
	Path    string              `json:"path"`
	Entries int                 `json:"entries"`
	Valid   int                 `json:"valid"`
	Invalid []catalogEntryError `json:"invalid,omitempty"`
}

type catalogEntryError struct {
	Index int    `json:"index"`
	ID    string `json:"id,omitempty"`
	Error string `json:"error"`
}

func newCatalogCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect catalog files",
	}
	cmd.AddCommand(newCatalogValidateCmd(root))
	return cmd
}

func newCatalogValidateCmd(root *rootOptions) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check every catalog entry against the food-record schema",
		Long: `Reports entries that would be dropped when the catalog is loaded. Exits
non-zero when any entry is invalid.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			validator, err := validation.NewSchemaValidator()
			if err != nil {
				return err
			}

			raw, err := readInput(cmd, path)
			if err != nil {
				return fmt.Errorf("read catalog: %w", err)
			}

			report, err := validateCatalog(cmd.Context(), validator, path, raw)
			if err != nil {
				return err
			}
			if err := writeJSON(cmd.OutOrStdout(), report); err != nil {
				return err
			}
			if len(report.Invalid) > 0 {
				return fmt.Errorf("%d of %d catalog entries are invalid", len(report.Invalid), report.Entries)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "catalog", "", "Catalog JSON file, or - for stdin")
	_ = cmd.MarkFlagRequired("catalog")

	return cmd
}

func validateCatalog(ctx context.Context, validator *validation.SchemaValidator, path string, raw []byte) (*catalogReport, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	entries, err := catalog.SplitEntries(raw)
	if err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	report := &catalogReport{Path: path, Entries: len(entries)}
	seen := make(map[string]bool, len(entries))
	for i, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var head struct {
			ID string `json:"id"`
		}
		_ = json.Unmarshal(entry, &head)

		if result := validator.ValidateFoodRecord(entry); !result.Valid {
			report.Invalid = append(report.Invalid, catalogEntryError{Index: i, ID: head.ID, Error: result.Err().Error()})
			continue
		}
		if seen[head.ID] {
			report.Invalid = append(report.Invalid, catalogEntryError{Index: i, ID: head.ID, Error: "duplicate id"})
			continue
		}
		seen[head.ID] = true
		report.Valid++
	}
	return report, nil
}
