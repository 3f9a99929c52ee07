// Package cli implements the mealrec command line tool.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/temcen/mealrec/internal/app"
	"github.com/temcen/mealrec/internal/config"
)

const (
	formatJSON = "json"
	formatText = "text"
)

type rootOptions struct {
	configPath string
	logLevel   string
}

// NewRootCmd builds the top-level command with every subcommand attached.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "mealrec",
		Short:         "Meal recommendations from a food catalog",
		Long:          "Builds goal-aware meal plans from a food catalog and a user profile, and checks catalog files.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Config file (default: ./config/app.yaml if present)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level written to stderr")

	root.AddCommand(
		newRecommendCmd(opts),
		newTargetsCmd(opts),
		newCatalogCmd(opts),
	)
	return root
}

func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadFile(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func (o *rootOptions) logger(stderr io.Writer) *logrus.Logger {
	logger := app.SetupLogger(config.LoggingConfig{Level: o.logLevel})
	logger.SetOutput(stderr)
	return logger
}

// readInput reads a file, or stdin when path is "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func checkFormat(format string) error {
	if format != formatJSON && format != formatText {
		return fmt.Errorf("unknown format %q, want json or text", format)
	}
	return nil
}
