package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cognicore/langid/pkg/langid"
	"github.com/cognicore/langid/pkg/langid/profile"
)

var detectCmd = &cobra.Command{
	Use:   "detect [flags] [text...]",
	Short: "Detect the language of a text",
	Long: `Detect reports the most probable language of the text given as
arguments. Without arguments the text is read from stdin; when stdin is a
terminal an interactive prompt is started instead.`,
	RunE: runDetect,
}

func init() {
	detectCmd.Flags().Bool("all", false, "print every candidate above the ranking threshold")
	detectCmd.Flags().Bool("html", false, "strip HTML markup before detection")
	detectCmd.Flags().Uint64("seed", 0, "seed the classifier for reproducible output")
	detectCmd.Flags().Duration("timeout", 0, "per-text time budget (0 for none)")
	detectCmd.Flags().String("format", "text", "output format (text|json)")
}

func runDetect(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("html") {
		cfg.Detector.HTML, _ = flags.GetBool("html")
	}
	if flags.Changed("seed") {
		cfg.Detector.Seed, _ = flags.GetUint64("seed")
		cfg.Detector.Seeded = true
	}
	if flags.Changed("timeout") {
		cfg.Detector.Timeout, _ = flags.GetDuration("timeout")
	}
	all, _ := flags.GetBool("all")
	format, _ := flags.GetString("format")
	if format != "text" && format != "json" {
		return fmt.Errorf("unknown format: %s", format)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	d, err := langid.NewFromConfig(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("load detector: %w", err)
	}

	out := &printer{w: cmd.OutOrStdout(), json: format == "json", color: useColor(cmd)}

	if len(args) > 0 {
		return detectOne(ctx, d, out, strings.Join(args, " "), all)
	}
	if f, ok := cmd.InOrStdin().(*os.File); ok && isTerminal(f) {
		if cfg.Profiles.ReloadInterval > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithCancel(ctx)
			defer cancel()
			src := profile.DirSource{Dir: cfg.Profiles.Dir, Mode: profile.ModeTimestamped, Logger: logger}
			r, err := langid.NewReloader(d, src, cfg.Profiles.ReloadInterval, logger)
			if err != nil {
				return fmt.Errorf("start reloader: %w", err)
			}
			go r.Run(ctx)
		}
		return interactive(ctx, d, out, f, all)
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}
	return detectOne(ctx, d, out, string(data), all)
}

func detectOne(ctx context.Context, d *langid.Detector, out *printer, text string, all bool) error {
	if all {
		langs, err := d.DetectLangs(ctx, text)
		if err != nil {
			return err
		}
		return out.ranked(langs)
	}
	lang, err := d.Detect(ctx, text)
	if err != nil {
		return err
	}
	return out.best(lang)
}

func interactive(ctx context.Context, d *langid.Detector, out *printer, in io.Reader, all bool) error {
	fmt.Fprintf(out.w, "langid: %d languages loaded (model %s)\n", len(d.Languages()), d.ModelID())
	fmt.Fprintln(out.w, "Type a text and press Enter (Ctrl+D to exit).")
	fmt.Fprintln(out.w)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out.w, "> ")
		if !scanner.Scan() {
			break
		}

		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		if err := detectOne(ctx, d, out, text, all); err != nil {
			out.failure(err)
		}
	}
	fmt.Fprintln(out.w)
	return scanner.Err()
}
