package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yurisalesc/poc-legal-llm/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can consult the
ingested laws.

Tools:
  consultar_lei    answer a question with sources
  buscar_trechos   list the passages retrieved for a question

Resources:
  legal://stats            collection statistics
  legal://tasks/{taskId}   ingestion task state (with --tasks)

By default the server speaks JSON-RPC over stdio. Use --port to serve the
streamable HTTP transport instead.

Examples:
  # Stdio mode (default, for desktop assistants)
  legal-llm mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  legal-llm mcp serve --port 8080

Assistant configuration:
  {
    "mcpServers": {
      "legal-llm": {
        "command": "/path/to/legal-llm",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpServeCmd.Flags().Bool("tasks", false, "expose ingestion task state (the task store cannot be shared with a running 'serve')")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}
	withTasks, _ := cmd.Flags().GetBool("tasks")

	app, err := openApp(cmd, appOptions{Tasks: withTasks})
	if err != nil {
		return err
	}
	defer app.Close()

	ports := &mcp.Ports{
		Query: app.Query,
		Stats: app.Stats,
		Tasks: app.Tasks,
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
