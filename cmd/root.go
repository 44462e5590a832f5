package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rkhozinov/php-config-transofrmer/internal/batch"
	"github.com/rkhozinov/php-config-transofrmer/internal/config"
	"github.com/rkhozinov/php-config-transofrmer/internal/history"
	"github.com/rkhozinov/php-config-transofrmer/internal/tui"
)

var rootCmd = &cobra.Command{
	Use:           "phpenvx [src_dir] [result_dir]",
	Short:         "Rewrite PHP define() constants to read from environment variables",
	Args:          cobra.MaximumNArgs(2),
	SilenceUsage:  true,
	SilenceErrors: true,
	Long: `phpenvx rewrites PHP config files so that each define() constant reads its
value from an environment variable, keeping the original literal as the
fallback:

  define('DB_HOST', 'localhost');
  define('DB_HOST', getenv('DB_HOST', 'localhost'));

Files are copied from the source directory into the result directory and the
copies are rewritten in place; originals are never modified. Lines already
using getenv() are left alone, so the transform is safe to run repeatedly.

Defaults (src, result, .inc extension) can be overridden per project with a
.phpenvx.yaml file in the working directory.

EXAMPLES:

  phpenvx src/
  phpenvx src/ result/
  phpenvx --preview src/
  phpenvx --stats src/
  phpenvx watch src/ result/`,
	RunE: runRoot,
}

var (
	rootPreview bool
	rootStats   bool
	rootYes     bool
)

func init() {
	rootCmd.Flags().BoolVar(&rootPreview, "preview", false, "Preview changes without writing files")
	rootCmd.Flags().BoolVar(&rootStats, "stats", false, "Show statistics about defines instead of transforming")
	rootCmd.Flags().BoolVarP(&rootYes, "yes", "y", false, "Overwrite existing result files without asking")

	rootCmd.SetVersionTemplate("phpenvx version {{.Version}}\n")
}

// SetVersion sets the version string shown by --version (e.g. from ldflags).
func SetVersion(v string) { rootCmd.Version = v }

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runRoot(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(".")
	if err != nil {
		return err
	}
	src, dst := resolveDirs(cfg, args)

	driver := batch.NewDriver(cmd.OutOrStdout(), cmd.ErrOrStderr())

	// Stats wins over preview when both are given.
	switch {
	case rootStats:
		sum, err := driver.Stats(src, cfg.Extension, cfg.Exclude)
		if err != nil {
			return err
		}
		_ = history.Log("", history.OpStats,
			history.WithDirs(src, ""),
			history.WithCounts(sum.FilesProcessed, 0))
		return nil

	case rootPreview:
		sum, err := driver.Preview(src, cfg.Extension, cfg.Exclude)
		if err != nil {
			return err
		}
		_ = history.Log("", history.OpPreview,
			history.WithDirs(src, ""),
			history.WithCounts(sum.FilesProcessed, sum.TotalChanges))
		return nil

	default:
		if !rootYes && shouldConfirmOverwrite(dst, cfg) {
			ok, err := tui.Confirm(fmt.Sprintf("Result directory %s already contains %s files. Overwrite?", dst, cfg.Extension))
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), tui.Muted("Aborted."))
				return nil
			}
		}

		sum, err := driver.Transform(src, dst, cfg.Extension, cfg.Exclude)
		if err != nil {
			return err
		}
		_ = history.Log("", history.OpTransform,
			history.WithDirs(src, dst),
			history.WithCounts(sum.FilesProcessed, sum.TotalChanges))
		return nil
	}
}

func resolveDirs(cfg config.Config, args []string) (src, dst string) {
	src, dst = cfg.SrcDir, cfg.ResultDir
	if len(args) > 0 {
		src = args[0]
	}
	if len(args) > 1 {
		dst = args[1]
	}
	return src, dst
}

// shouldConfirmOverwrite reports whether the result directory already holds
// config files and an interactive prompt is possible.
func shouldConfirmOverwrite(dst string, cfg config.Config) bool {
	fi, err := os.Stdin.Stat()
	if err != nil || fi.Mode()&os.ModeCharDevice == 0 {
		return false
	}
	existing, err := batch.ListConfigFiles(dst, cfg.Extension, cfg.Exclude)
	return err == nil && len(existing) > 0
}
