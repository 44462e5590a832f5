package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rkhozinov/php-config-transofrmer/internal/batch"
	"github.com/rkhozinov/php-config-transofrmer/internal/config"
	"github.com/rkhozinov/php-config-transofrmer/internal/history"
	"github.com/rkhozinov/php-config-transofrmer/internal/tui"
	"github.com/rkhozinov/php-config-transofrmer/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch [src_dir] [result_dir]",
	Short: "Rerun the transform whenever source files change",
	Long: `Run the transform once, then keep watching the source directory and rerun
it each time a config file is created or written. Stop with Ctrl+C.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(".")
	if err != nil {
		return err
	}
	src, dst := resolveDirs(cfg, args)

	driver := batch.NewDriver(cmd.OutOrStdout(), cmd.ErrOrStderr())

	sum, err := driver.Transform(src, dst, cfg.Extension, cfg.Exclude)
	if err != nil {
		return err
	}
	_ = history.Log("", history.OpWatch,
		history.WithDirs(src, dst),
		history.WithCounts(sum.FilesProcessed, sum.TotalChanges))

	w, err := watch.NewDirWatcher(src, cfg.Extension)
	if err != nil {
		return fmt.Errorf("watch source directory: %w", err)
	}
	defer w.Close()

	changes := w.Start()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	fmt.Fprintf(cmd.OutOrStdout(), "\n%s Watching %s for changes (Ctrl+C to stop)\n", tui.Header("phpenvx"), src)

	for {
		select {
		case <-sigCh:
			fmt.Fprintln(cmd.OutOrStdout(), tui.Muted("Stopped."))
			return nil

		case <-changes:
			fmt.Fprintf(cmd.OutOrStdout(), "\n%s source changed, rerunning...\n", tui.Warning("⚡"))

			sum, err := driver.Transform(src, dst, cfg.Extension, cfg.Exclude)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s %v\n", tui.Error("Error:"), err)
				continue
			}
			_ = history.Log("", history.OpWatch,
				history.WithDirs(src, dst),
				history.WithCounts(sum.FilesProcessed, sum.TotalChanges))
		}
	}
}
