package cli

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/yurisalesc/poc-legal-llm/internal/core/domain"
	"github.com/yurisalesc/poc-legal-llm/internal/core/services"
	"github.com/yurisalesc/poc-legal-llm/internal/logger"
)

// SampleListFile records which files an ingest-dir --sample run picked.
const SampleListFile = "processed_files_sample.txt"

var ingestCmd = &cobra.Command{
	Use:   "ingest <file.pdf>...",
	Short: "Ingest PDF files into the vector store",
	Long: `Ingest one or more PDFs: extract the text, detect the law number and
publication date, split it into chunks and store their embeddings.

Files are processed one at a time. A failing file is reported and the
remaining files are still ingested.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

var ingestDirCmd = &cobra.Command{
	Use:   "ingest-dir <dir>",
	Short: "Ingest every PDF in a directory",
	Long: `Ingest every PDF found directly in a directory.

Use --sample to ingest a random subset; the chosen file names are written
to processed_files_sample.txt in the working directory.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngestDir,
}

func init() {
	ingestDirCmd.Flags().IntP("sample", "s", 0, "ingest a random sample of N files (0 = all)")
	ingestDirCmd.Flags().Int64("seed", 0, "random seed for --sample (0 = time based)")
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(ingestDirCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	for _, path := range args {
		if !services.IsPDF(path) {
			return fmt.Errorf("%w: %s is not a PDF", domain.ErrUnsupportedType, path)
		}
	}
	return ingestFiles(cmd, args)
}

func runIngestDir(cmd *cobra.Command, args []string) error {
	sample, _ := cmd.Flags().GetInt("sample")
	seed, _ := cmd.Flags().GetInt64("seed")

	files, err := services.ListPDFs(args[0])
	if errors.Is(err, domain.ErrNotFound) {
		cmd.Printf("No PDF files found in %s\n", args[0])
		return nil
	}
	if err != nil {
		return err
	}

	if sample > 0 {
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
		files = services.SampleFiles(files, sample, rng)
		if err := writeSampleList(SampleListFile, files); err != nil {
			return err
		}
		cmd.Printf("Sampled %d file(s), list written to %s\n", len(files), SampleListFile)
	}

	return ingestFiles(cmd, files)
}

func ingestFiles(cmd *cobra.Command, files []string) error {
	app, err := openApp(cmd, appOptions{})
	if err != nil {
		return err
	}
	defer app.Close()

	logger.Section("Ingest")
	results := app.Ingest.IngestBatch(cmd.Context(), files, func(done, total int, r *domain.IngestResult) {
		status := success(r.Status)
		if !r.Succeeded() {
			status = failure(r.Status)
		}
		cmd.Printf("[%d/%d] %s %s: %s\n", done, total, status, r.Source, r.Message)
	})

	failed := 0
	chunks := 0
	for _, r := range results {
		if r.Succeeded() {
			chunks += r.Chunks
		} else {
			failed++
		}
	}
	cmd.Printf("\n%s %d file(s), %d chunk(s) stored, %d failed\n",
		heading("Done:"), len(results)-failed, chunks, failed)

	if err := cmd.Context().Err(); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d file(s) failed", failed, len(results))
	}
	return nil
}

func writeSampleList(path string, files []string) error {
	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, filepath.Base(f))
	}
	content := strings.Join(names, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing sample list: %w", err)
	}
	return nil
}
