package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yurisalesc/poc-legal-llm/internal/adapters/driving/httpapi"
	"github.com/yurisalesc/poc-legal-llm/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the HTTP API.

Endpoints:
  POST /api/upload-lei/     upload a PDF (multipart field "file"), ingested in the background
  POST /api/consultar-lei/  {"question": "..."} -> {"result": "...", "sources": [...]}
  GET  /api/tasks/{id}      state of a background ingestion
  GET  /api/stats           chunks and sources in the collection
  GET  /api/health          liveness
  GET  /metrics             Prometheus metrics

Uploaded files are stored in the upload directory and removed once they are
ingested, unless server.keep_files is set.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default :8000)")
	serveCmd.Flags().Int("workers", 0, "concurrent ingestion workers (default 2)")
	serveCmd.Flags().String("upload-dir", "", "directory for uploaded files (default temp_uploads)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	app, err := openApp(cmd, appOptions{Tasks: true})
	if err != nil {
		return err
	}
	defer app.Close()

	if app.Tasks == nil {
		return fmt.Errorf("task service not available")
	}
	if err := app.Tasks.Start(ctx); err != nil {
		return fmt.Errorf("starting workers: %w", err)
	}
	defer app.Tasks.Stop()

	ports := httpapi.Ports{
		Query:     app.Query,
		Tasks:     app.Tasks,
		Stats:     app.Stats,
		UploadDir: cfg.Server.UploadDir,
	}
	if app.Metrics != nil {
		ports.Metrics = app.Metrics
	}

	server, err := httpapi.NewServer(ports)
	if err != nil {
		return err
	}

	logger.Info("Upload directory: %s", cfg.Server.UploadDir)
	cmd.Printf("legal-llm API listening on %s\n", cfg.Server.Addr)
	return server.Run(ctx, cfg.Server.Addr)
}
