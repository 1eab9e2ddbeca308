package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cognicore/langid/pkg/langid/config"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot <out>",
	Short: "Compile the profiles into a model snapshot",
	Long: `Snapshot builds the model from the configured profile directory or
database and writes it to <out>, ready to be loaded with --snapshot.`,
	Args: cobra.ExactArgs(1),
	RunE: runSnapshot,
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cfg.Profiles.Snapshot = args[0]

	comp, err := (&config.Loader{Config: cfg, Logger: logger, Rebuild: true}).Load(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote model %s (%d languages, %d n-grams) to %s\n",
		comp.Model.ID(), comp.Model.Len(), comp.Model.NumNGrams(), args[0])
	return nil
}
