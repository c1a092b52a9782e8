package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/yurisalesc/poc-legal-llm/internal/adapters/driven/ai"
	"github.com/yurisalesc/poc-legal-llm/internal/adapters/driven/config/file"
	"github.com/yurisalesc/poc-legal-llm/internal/adapters/driven/storage/badger"
	"github.com/yurisalesc/poc-legal-llm/internal/adapters/driven/storage/memory"
	"github.com/yurisalesc/poc-legal-llm/internal/adapters/driven/storage/sqlite"
	"github.com/yurisalesc/poc-legal-llm/internal/config"
	"github.com/yurisalesc/poc-legal-llm/internal/core/domain"
	"github.com/yurisalesc/poc-legal-llm/internal/core/ports/driven"
	"github.com/yurisalesc/poc-legal-llm/internal/core/ports/driving"
	"github.com/yurisalesc/poc-legal-llm/internal/core/services"
	"github.com/yurisalesc/poc-legal-llm/internal/extractors/legal"
	"github.com/yurisalesc/poc-legal-llm/internal/logger"
	"github.com/yurisalesc/poc-legal-llm/internal/metrics"
	"github.com/yurisalesc/poc-legal-llm/internal/normalisers/pdf"
	"github.com/yurisalesc/poc-legal-llm/internal/postprocessors"
)

// App holds the services wired for one command run.
type App struct {
	Ingest  driving.IngestService
	Query   driving.QueryService
	Stats   driving.StatsService
	Tasks   driving.TaskService
	Metrics *metrics.Metrics

	closers []func() error
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) onClose(fn func() error) {
	a.closers = append(a.closers, fn)
}

// appOptions selects optional parts of the App.
type appOptions struct {
	// Tasks opens the task store and creates the background dispatcher.
	Tasks bool

	// KeepFiles stops the dispatcher from deleting ingested files.
	KeepFiles bool

	// Ephemeral keeps chunks and tasks in memory for the life of the process.
	Ephemeral bool
}

// newApp builds the App. Tests replace it to inject fakes.
var newApp = buildApp

func buildApp(ctx context.Context, c *config.Config, opts appOptions) (_ *App, err error) {
	settings := c.Settings()
	app := &App{}
	defer func() {
		if err != nil {
			app.Close() //nolint:errcheck
		}
	}()

	var (
		vectors driven.VectorStore
		lister  driven.CollectionLister
	)
	if opts.Ephemeral {
		vectors = memory.NewVectorStore()
		logger.Info("Using an in-memory vector store, nothing is persisted")
	} else {
		store, err := sqlite.NewStore(c.VectorDir())
		if err != nil {
			return nil, fmt.Errorf("opening vector store: %w", err)
		}
		vectors = store.VectorStore(settings.Collection)
		lister = store
	}
	app.onClose(vectors.Close)

	aiServices, err := ai.Init(ctx, settings)
	if err != nil {
		return nil, err
	}
	app.onClose(func() error {
		aiServices.Close()
		return nil
	})
	for _, w := range aiServices.Warnings {
		logger.Warn("%s", w)
	}

	prompts, err := file.NewPromptStore(c.PromptDir())
	if err != nil {
		return nil, err
	}

	app.Metrics = metrics.New(prometheus.NewRegistry())

	registry := postprocessors.NewRegistry()
	extractor := legal.New()
	postprocessors.RegisterDefaults(registry, extractor)
	pipeline, err := postprocessors.BuildPipeline(registry, domain.NewPipelineConfig(settings.Chunker))
	if err != nil {
		return nil, fmt.Errorf("building pipeline: %w", err)
	}
	logger.Debug("ingestion stages: %v", pipeline.Stages())

	ingest := services.NewIngestService(pdf.New(), extractor, pipeline, aiServices.EmbeddingService, vectors)
	ingest.SetMetrics(app.Metrics)
	app.Ingest = ingest

	retriever, err := services.NewRetriever(settings.Retriever, aiServices.EmbeddingService, vectors,
		aiServices.LLMService, prompts)
	if errors.Is(err, domain.ErrLLMUnavailable) {
		logger.Warn("Self-query retrieval needs a language model, using semantic retrieval")
		settings.Retriever.Strategy = domain.StrategySemantic
		retriever, err = services.NewRetriever(settings.Retriever, aiServices.EmbeddingService, vectors, nil, nil)
	}
	if err != nil {
		return nil, err
	}

	query := services.NewQueryService(retriever, services.NewSynthesizer(aiServices.LLMService, prompts))
	query.SetMetrics(app.Metrics)
	app.Query = query
	stats := services.NewStatsService(settings.Collection, vectors)
	if lister != nil {
		stats.SetCollectionLister(lister)
	}
	app.Stats = stats

	if opts.Tasks {
		var taskStore driven.TaskStore = memory.NewTaskStore()
		if !opts.Ephemeral {
			taskStore, err = badger.NewTaskStore(c.TaskDir())
			if err != nil {
				return nil, fmt.Errorf("opening task store: %w", err)
			}
		}
		app.onClose(taskStore.Close)

		tasks := services.NewTaskService(ingest, taskStore, c.Server.Workers)
		tasks.SetQueueSize(c.Server.QueueSize)
		if opts.KeepFiles || c.Server.KeepFiles {
			tasks.KeepFiles()
		}
		app.Tasks = tasks
	}

	return app, nil
}

// openApp builds the App for cmd using the loaded configuration.
func openApp(cmd *cobra.Command, opts appOptions) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: configuration not loaded", domain.ErrInvalidInput)
	}
	opts.Ephemeral, _ = cmd.Flags().GetBool("ephemeral")
	return newApp(cmd.Context(), cfg, opts)
}
