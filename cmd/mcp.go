package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/rkhozinov/php-config-transofrmer/internal/mcpserver"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the MCP server (stdio) for editor/agent integration",
	Long:  `Run the Model Context Protocol server on stdio. Exposes preview_file, file_stats, transform_file, and list_config_files so editors and agents can inspect and apply define() rewrites.`,
	RunE:  runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	return mcpserver.Run(context.Background())
}
