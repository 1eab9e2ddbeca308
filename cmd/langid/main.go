package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/cognicore/langid/internal/logging"
	"github.com/cognicore/langid/pkg/langid/config"
)

var rootCmd = &cobra.Command{
	Use:   "langid",
	Short: "Identify the natural language of a text",
	Long: `langid compares the character n-gram statistics of a text against
per-language profiles and reports the most probable language.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(langsCmd)
	rootCmd.AddCommand(snapshotCmd)

	rootCmd.PersistentFlags().String("config", "", "config file (default $LANGID_CONFIG or ./langid.yaml)")
	rootCmd.PersistentFlags().String("profiles", "", "profile directory")
	rootCmd.PersistentFlags().String("mode", "", "profile directory layout (classic|timestamped)")
	rootCmd.PersistentFlags().String("db", "", "SQLite profile database")
	rootCmd.PersistentFlags().String("snapshot", "", "compiled model snapshot")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config file and environment, then applies the
// persistent flags on top.
func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	flags := cmd.Root().PersistentFlags()
	path, _ := flags.GetString("config")

	cfg, err := config.Read(path)
	if err != nil {
		return nil, nil, err
	}

	overrides := []struct {
		flag string
		dst  *string
	}{
		{"profiles", &cfg.Profiles.Dir},
		{"mode", &cfg.Profiles.Mode},
		{"db", &cfg.Profiles.Database},
		{"snapshot", &cfg.Profiles.Snapshot},
		{"log-level", &cfg.Log.Level},
	}
	for _, o := range overrides {
		if flags.Changed(o.flag) {
			*o.dst, _ = flags.GetString(o.flag)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("config: validate: %w", err)
	}
	return cfg, logging.New(cfg.Log, cmd.ErrOrStderr()), nil
}

func useColor(cmd *cobra.Command) bool {
	mode, _ := cmd.Root().PersistentFlags().GetString("color")
	switch mode {
	case "on":
		return true
	case "off":
		return false
	}
	f, ok := cmd.OutOrStdout().(*os.File)
	return ok && isTerminal(f)
}

// isTerminal reports whether f is attached to a terminal
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
