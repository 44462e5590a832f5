// Package mcpserver exposes the define() transformer over the Model Context
// Protocol so editors and agents can preview, inspect, and apply rewrites.
package mcpserver

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rkhozinov/php-config-transofrmer/internal/batch"
	"github.com/rkhozinov/php-config-transofrmer/internal/history"
	"github.com/rkhozinov/php-config-transofrmer/internal/transformer"
)

func Run(ctx context.Context) error {
	server := mcpsdk.NewServer(&mcpsdk.Implementation{
		Name:    "phpenvx",
		Version: "0.1.0",
	}, nil)

	tr := transformer.New()

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "preview_file",
		Description: "Preview the define() to getenv() rewrites for one PHP config file. Returns the full change list (line number, original line, transformed line) without modifying the file.",
	}, func(ctx context.Context, req *mcpsdk.CallToolRequest, args struct {
		Path string `json:"path" jsonschema:"path of the config file to preview"`
	}) (*mcpsdk.CallToolResult, any, error) {
		if args.Path == "" {
			return errorResult("path is required"), nil, nil
		}
		changes, err := tr.ScanFile(args.Path)
		if err != nil {
			return errorResult(err.Error()), nil, nil
		}
		return successResult(map[string]any{
			"path":    args.Path,
			"changes": changeList(changes),
		}), nil, nil
	})

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "file_stats",
		Description: "Count define() statements in one PHP config file: total, already using getenv(), plain, and transformable. Read-only.",
	}, func(ctx context.Context, req *mcpsdk.CallToolRequest, args struct {
		Path string `json:"path" jsonschema:"path of the config file to inspect"`
	}) (*mcpsdk.CallToolResult, any, error) {
		if args.Path == "" {
			return errorResult("path is required"), nil, nil
		}
		stats, err := tr.FileStats(args.Path)
		if err != nil {
			return errorResult(err.Error()), nil, nil
		}
		return successResult(map[string]any{
			"path":                  args.Path,
			"total_defines":         stats.TotalDefines,
			"getenv_defines":        stats.GetenvDefines,
			"plain_defines":         stats.PlainDefines,
			"transformable_defines": stats.TransformableDefines,
		}), nil, nil
	})

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "transform_file",
		Description: "Rewrite define() statements in one PHP config file in place so constants read from environment variables with the original literal as fallback. Returns the applied changes. Warning: modifies the file.",
	}, func(ctx context.Context, req *mcpsdk.CallToolRequest, args struct {
		Path string `json:"path" jsonschema:"path of the config file to rewrite in place"`
	}) (*mcpsdk.CallToolResult, any, error) {
		if args.Path == "" {
			return errorResult("path is required"), nil, nil
		}
		changes, err := tr.RewriteFile(args.Path)
		if err != nil {
			return errorResult(err.Error()), nil, nil
		}
		_ = history.Log("", history.OpTransform, history.WithCounts(1, len(changes)))
		return successResult(map[string]any{
			"path":    args.Path,
			"changes": changeList(changes),
		}), nil, nil
	})

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "list_config_files",
		Description: "List config files with the given extension in a directory (non-recursive). Use to discover what a batch transform would process.",
	}, func(ctx context.Context, req *mcpsdk.CallToolRequest, args struct {
		Dir       string `json:"dir" jsonschema:"directory to list"`
		Extension string `json:"extension" jsonschema:"file extension to match (default: .inc)"`
	}) (*mcpsdk.CallToolResult, any, error) {
		if args.Dir == "" {
			return errorResult("dir is required"), nil, nil
		}
		ext := args.Extension
		if ext == "" {
			ext = ".inc"
		}
		files, err := batch.ListConfigFiles(args.Dir, ext, nil)
		if err != nil {
			return errorResult(err.Error()), nil, nil
		}
		if files == nil {
			files = []string{}
		}
		return successResult(map[string]any{"files": files, "count": len(files)}), nil, nil
	})

	return server.Run(ctx, &mcpsdk.StdioTransport{})
}

func changeList(changes []transformer.Change) []map[string]any {
	list := make([]map[string]any, 0, len(changes))
	for _, c := range changes {
		list = append(list, map[string]any{
			"line":        c.LineNumber,
			"original":    c.Original,
			"transformed": c.Transformed,
		})
	}
	return list
}
