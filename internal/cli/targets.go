package cli

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"

	"github.com/temcen/mealrec/internal/recommender"
	"github.com/temcen/mealrec/pkg/models"
)

func newTargetsCmd(root *rootOptions) *cobra.Command {
	var profilePath, format string

	cmd := &cobra.Command{
		Use:   "targets",
		Short: "Print the nutrition targets of a profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}

			raw, err := readInput(cmd, profilePath)
			if err != nil {
				return fmt.Errorf("read profile: %w", err)
			}

			var req models.TargetsRequest
			if err := json.Unmarshal(raw, &req); err != nil {
				return fmt.Errorf("decode profile: %w", err)
			}
			if err := validator.New().Struct(&req); err != nil {
				return fmt.Errorf("invalid profile: %w", err)
			}

			targets := recommender.TargetsFor(*req.Profile())
			if format == formatText {
				return renderTargets(cmd.OutOrStdout(), targets)
			}
			return writeJSON(cmd.OutOrStdout(), targets)
		},
	}

	cmd.Flags().StringVarP(&profilePath, "profile", "p", "", "Profile JSON file, or - for stdin")
	cmd.Flags().StringVarP(&format, "format", "f", formatJSON, "Output format: json or text")
	_ = cmd.MarkFlagRequired("profile")

	return cmd
}
