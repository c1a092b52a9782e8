package cli

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/yurisalesc/poc-legal-llm/internal/config"
	"github.com/yurisalesc/poc-legal-llm/internal/core/domain"
)

type fakeIngest struct {
	mu    sync.Mutex
	paths []string
	fail  map[string]bool
}

func (f *fakeIngest) Ingest(_ context.Context, path string) (*domain.IngestResult, error) {
	f.mu.Lock()
	f.paths = append(f.paths, path)
	f.mu.Unlock()

	name := filepath.Base(path)
	if f.fail[name] {
		return &domain.IngestResult{Source: name, Status: domain.IngestStatusError, Message: "PDF sem texto"},
			domain.ErrEmptyDocument
	}
	return &domain.IngestResult{Source: name, Status: domain.IngestStatusSuccess, Message: "Arquivo processado", Chunks: 3}, nil
}

func (f *fakeIngest) IngestBatch(ctx context.Context, paths []string,
	progress func(done, total int, r *domain.IngestResult)) []domain.IngestResult {
	results := make([]domain.IngestResult, 0, len(paths))
	for i, p := range paths {
		r, _ := f.Ingest(ctx, p)
		results = append(results, *r)
		if progress != nil {
			progress(i+1, len(paths), r)
		}
	}
	return results
}

type fakeQuery struct {
	answer   *domain.Answer
	chunks   []domain.Chunk
	err      error
	question string
}

func (f *fakeQuery) Ask(_ context.Context, question string) (*domain.Answer, error) {
	f.question = question
	if f.err != nil {
		return nil, f.err
	}
	return f.answer, nil
}

func (f *fakeQuery) Retrieve(_ context.Context, question string) ([]domain.Chunk, error) {
	f.question = question
	if f.err != nil {
		return nil, f.err
	}
	return f.chunks, nil
}

type fakeStats struct {
	stats *domain.CollectionStats
}

func (f *fakeStats) Stats(context.Context) (*domain.CollectionStats, error) {
	s := *f.stats
	return &s, nil
}

type fakeTasks struct {
	mu      sync.Mutex
	started int
	stopped int
	submits []string
}

func (f *fakeTasks) Submit(_ context.Context, path string) (*domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submits = append(f.submits, path)
	return &domain.Task{ID: "t1", FilePath: path, State: domain.TaskPending}, nil
}

func (f *fakeTasks) Get(_ context.Context, id string) (*domain.Task, error) {
	return nil, domain.ErrNotFound
}

func (f *fakeTasks) Start(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started++
	return nil
}

func (f *fakeTasks) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped++
}

// testServices holds the fakes injected by setupTestServices.
type testServices struct {
	ingest *fakeIngest
	query  *fakeQuery
	stats  *fakeStats
	tasks  *fakeTasks

	opts    appOptions
	config  *config.Config
	builds  int
	buildFn func() error
}

func lawChunk(source, law, content string) domain.Chunk {
	return domain.Chunk{
		Content: content,
		Metadata: domain.Metadata{
			domain.MetaSource:    source,
			domain.MetaLawNumber: law,
		},
	}
}

// setupTestServices isolates the configuration and replaces the service
// factory with fakes.
func setupTestServices(t *testing.T) *testServices {
	t.Helper()
	color.NoColor = true
	t.Setenv("LEGAL_LLM_DATA_DIR", t.TempDir())
	for _, env := range []string{"GOOGLE_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY"} {
		t.Setenv(env, "")
	}

	ts := &testServices{
		ingest: &fakeIngest{fail: map[string]bool{}},
		query: &fakeQuery{answer: &domain.Answer{
			Text:     "A Lei 8.666 institui normas para licitações.",
			Sources:  []string{"lei_8666.pdf"},
			Strategy: domain.StrategySelfQuery,
		}},
		stats: &fakeStats{stats: &domain.CollectionStats{
			Collection: domain.DefaultCollection,
			Chunks:     42,
			Sources:    []string{"lei_8666.pdf", "lei_14133.pdf"},
		}},
		tasks: &fakeTasks{},
	}

	original := newApp
	newApp = func(_ context.Context, c *config.Config, opts appOptions) (*App, error) {
		ts.builds++
		ts.opts = opts
		ts.config = c
		if ts.buildFn != nil {
			if err := ts.buildFn(); err != nil {
				return nil, err
			}
		}
		app := &App{Ingest: ts.ingest, Query: ts.query, Stats: ts.stats}
		if opts.Tasks {
			app.Tasks = ts.tasks
		}
		return app, nil
	}
	t.Cleanup(func() {
		newApp = original
		cfg = nil
	})
	return ts
}

// resetCommands restores every flag of cmd and its subcommands to its
// default and gives them ctx. Cobra only hands the execution context to
// subcommands that have none yet.
func resetCommands(cmd *cobra.Command, ctx context.Context) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	cmd.SetContext(ctx)
	for _, c := range cmd.Commands() {
		resetCommands(c, ctx)
	}
}

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return run(t, context.Background(), "", args...)
}

// run executes the root command with ctx, feeding stdin to the command.
func run(t *testing.T, ctx context.Context, stdin string, args ...string) (string, error) {
	t.Helper()
	resetCommands(rootCmd, ctx)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	})

	err := rootCmd.ExecuteContext(ctx)
	return buf.String(), err
}

var errBoom = errors.New("boom")
