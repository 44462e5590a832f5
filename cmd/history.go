package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rkhozinov/php-config-transofrmer/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View and verify the run history log",
	Long: `View past phpenvx runs and verify log integrity.

Every run appends an entry to .phpenvx/history.logl. Each entry links to the
previous one by hash, forming a tamper-evident chain.`,
}

var historyShowCmd = &cobra.Command{
	Use:   "show [--last=N]",
	Short: "Show recent runs",
	RunE:  runHistoryShow,
}

var historyVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify run history chain integrity",
	RunE:  runHistoryVerify,
}

var (
	historyLastN   int
	historyWorkdir string
)

func init() {
	historyShowCmd.Flags().IntVarP(&historyLastN, "last", "n", 10, "Number of entries to show")
	historyShowCmd.Flags().StringVarP(&historyWorkdir, "workdir", "w", "", "Working directory (default: current)")

	historyVerifyCmd.Flags().StringVarP(&historyWorkdir, "workdir", "w", "", "Working directory (default: current)")

	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyVerifyCmd)

	rootCmd.AddCommand(historyCmd)
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	entries, err := history.Show(historyWorkdir, historyLastN)
	if err != nil {
		if err == history.ErrNoHistory {
			fmt.Fprintln(cmd.OutOrStdout(), "No run history found. Runs are logged once you transform, preview, or inspect a directory.")
			return nil
		}
		return fmt.Errorf("read run history: %w", err)
	}

	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No entries in run history.")
		return nil
	}

	b, _ := json.MarshalIndent(entries, "", "  ")
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return nil
}

func runHistoryVerify(cmd *cobra.Command, args []string) error {
	result, err := history.Verify(historyWorkdir)
	if err != nil {
		if err == history.ErrNoHistory {
			fmt.Fprintln(cmd.OutOrStdout(), "No run history found.")
			return nil
		}
		return fmt.Errorf("verify run history: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Run history verified: %d entries\n", result.TotalEntries)

	if len(result.Breaks) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Chain integrity: OK")
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Chain breaks detected at lines: %v\n", result.Breaks)
	fmt.Fprintln(cmd.OutOrStdout(), "Warning: log may have been modified.")
	return nil
}
