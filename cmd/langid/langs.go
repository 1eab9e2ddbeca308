package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/cognicore/langid/pkg/langid/config"
	"github.com/cognicore/langid/pkg/langid/store/sqlite"
)

var langsCmd = &cobra.Command{
	Use:   "langs",
	Short: "List the loaded languages",
	Long: `Langs prints the languages of the model in index order. With --store
it summarizes the profiles kept in the profile database instead.`,
	Args: cobra.NoArgs,
	RunE: runLangs,
}

func init() {
	langsCmd.Flags().Bool("store", false, "list the profile database instead of the model")
}

func runLangs(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	out := &printer{w: cmd.OutOrStdout(), color: useColor(cmd)}
	ctx := cmd.Context()

	if fromStore, _ := cmd.Flags().GetBool("store"); fromStore {
		if cfg.Profiles.Database == "" {
			return fmt.Errorf("--store needs a profile database (--db or profiles.database)")
		}
		st, err := sqlite.OpenSQLite(ctx, cfg.Profiles.Database)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer st.Close()

		infos, err := st.Languages(ctx)
		if err != nil {
			return err
		}
		name := out.paint(color.FgGreen, color.Bold)
		for _, info := range infos {
			fmt.Fprintf(out.w, "%s %8d n-grams  n_words=%v  updated %s\n",
				name.Sprintf("%-6s", info.Name), info.NGrams, info.NWords,
				info.UpdatedAt.Local().Format(time.DateTime))
		}
		return nil
	}

	comp, err := (&config.Loader{Config: cfg, Logger: logger}).Load(ctx)
	if err != nil {
		return err
	}
	m := comp.Model
	fmt.Fprintf(out.w, "model %s from %s: %d languages, %d n-grams\n", m.ID(), comp.Source, m.Len(), m.NumNGrams())
	idx := out.paint(color.Faint)
	for i, lang := range m.Languages() {
		fmt.Fprintf(out.w, "%s %s\n", idx.Sprintf("%3d", i), lang)
	}
	return nil
}
