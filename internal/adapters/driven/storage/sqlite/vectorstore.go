package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yurisalesc/poc-legal-llm/internal/core/domain"
	"github.com/yurisalesc/poc-legal-llm/internal/core/ports/driven"
)

// vectorStore implements driven.VectorStore for one collection.
type vectorStore struct {
	store      *Store
	collection string
}

var _ driven.VectorStore = (*vectorStore)(nil)

// Add appends chunks in a single transaction.
func (s *vectorStore) Add(ctx context.Context, chunks []domain.Chunk) error {
	for i, c := range chunks {
		if len(c.Embedding) == 0 {
			return fmt.Errorf("%w: chunk %d has no embedding", domain.ErrInvalidInput, i)
		}
	}
	if s.store.closed.Load() {
		return domain.ErrVectorStoreUnavailable
	}
	if len(chunks) == 0 {
		return nil
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, collection, document_id, content, position, start_offset, embedding, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, chunk := range chunks {
		metadataJSON, err := json.Marshal(chunk.Metadata.Clone())
		if err != nil {
			return fmt.Errorf("marshalling chunk metadata: %w", err)
		}

		id := chunk.ID
		if id == "" {
			id = uuid.New().String()
		}
		created := chunk.CreatedAt
		if created.IsZero() {
			created = now
		}

		if _, err := stmt.ExecContext(ctx, id, s.collection, chunk.DocumentID, chunk.Content,
			chunk.Position, chunk.Start, float32SliceToBytes(chunk.Embedding),
			string(metadataJSON), created); err != nil {
			return fmt.Errorf("saving chunk: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Query loads the chunks matching the filter and ranks them by cosine similarity.
// Ties keep insertion order.
func (s *vectorStore) Query(ctx context.Context, q domain.VectorQuery) ([]domain.ScoredChunk, error) {
	if q.K <= 0 {
		return nil, fmt.Errorf("%w: k must be positive", domain.ErrInvalidInput)
	}
	if s.store.closed.Load() {
		return nil, domain.ErrVectorStoreUnavailable
	}

	where, args, err := filterSQL(q.Filter)
	if err != nil {
		return nil, err
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, document_id, content, position, start_offset, embedding, metadata, created_at
		FROM chunks
		WHERE collection = ? AND `+where+`
		ORDER BY rowid
	`, append([]any{s.collection}, args...)...)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var hits []domain.ScoredChunk //nolint:prealloc // size unknown from query
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		hits = append(hits, domain.ScoredChunk{
			Chunk: *chunk,
			Score: domain.CosineSimilarity(q.Embedding, chunk.Embedding),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	if len(hits) > q.K {
		hits = hits[:q.K]
	}
	return hits, nil
}

// Count returns the number of chunks matching filter.
func (s *vectorStore) Count(ctx context.Context, filter domain.Filter) (int, error) {
	if s.store.closed.Load() {
		return 0, domain.ErrVectorStoreUnavailable
	}
	where, args, err := filterSQL(filter)
	if err != nil {
		return 0, err
	}

	var n int
	row := s.store.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM chunks WHERE collection = ? AND `+where,
		append([]any{s.collection}, args...)...)
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return n, nil
}

// Sources returns the distinct source filenames, sorted.
func (s *vectorStore) Sources(ctx context.Context) ([]string, error) {
	if s.store.closed.Load() {
		return nil, domain.ErrVectorStoreUnavailable
	}
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT DISTINCT json_extract(metadata, '$.source') AS src
		FROM chunks
		WHERE collection = ? AND json_extract(metadata, '$.source') IS NOT NULL
		ORDER BY src
	`, s.collection)
	if err != nil {
		return nil, fmt.Errorf("querying sources: %w", err)
	}
	defer rows.Close()

	var sources []string
	for rows.Next() {
		var src string
		if err := rows.Scan(&src); err != nil {
			return nil, fmt.Errorf("scanning source: %w", err)
		}
		sources = append(sources, src)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sources: %w", err)
	}
	return sources, nil
}

// Persist checkpoints the write-ahead log into the database file.
func (s *vectorStore) Persist(ctx context.Context) error {
	if s.store.closed.Load() {
		return domain.ErrVectorStoreUnavailable
	}
	if _, err := s.store.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return fmt.Errorf("checkpointing: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *vectorStore) Close() error {
	return s.store.Close()
}

// scanChunk scans a chunk from *sql.Rows.
func scanChunk(rows *sql.Rows) (*domain.Chunk, error) {
	var chunk domain.Chunk
	var embeddingBlob []byte
	var metadataJSON string

	if err := rows.Scan(&chunk.ID, &chunk.DocumentID, &chunk.Content, &chunk.Position,
		&chunk.Start, &embeddingBlob, &metadataJSON, &chunk.CreatedAt); err != nil {
		return nil, fmt.Errorf("scanning chunk: %w", err)
	}

	chunk.Embedding = bytesToFloat32Slice(embeddingBlob)

	chunk.Metadata = domain.Metadata{}
	if metadataJSON != "" {
		if err := json.Unmarshal([]byte(metadataJSON), &chunk.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshaling chunk metadata: %w", err)
		}
	}

	return &chunk, nil
}

var sqlComparators = map[domain.Comparator]string{
	domain.ComparatorEq:  "=",
	domain.ComparatorNe:  "!=",
	domain.ComparatorGt:  ">",
	domain.ComparatorGte: ">=",
	domain.ComparatorLt:  "<",
	domain.ComparatorLte: "<=",
}

// filterSQL translates a filter into a WHERE fragment with positional args.
// The fragment agrees with domain.Filter.Match: a missing field never
// matches, and integers on both sides compare numerically.
func filterSQL(f domain.Filter) (string, []any, error) {
	if f.IsEmpty() {
		return "1 = 1", nil, nil
	}

	if f.IsComposite() {
		var joiner, empty string
		switch f.Operator {
		case domain.OperatorAnd:
			joiner, empty = " AND ", "1 = 1"
		case domain.OperatorOr:
			joiner, empty = " OR ", "1 = 0"
		default:
			return "", nil, fmt.Errorf("%w: unknown operator %q", domain.ErrInvalidFilter, f.Operator)
		}
		if len(f.Filters) == 0 {
			return empty, nil, nil
		}

		parts := make([]string, 0, len(f.Filters))
		var args []any
		for _, child := range f.Filters {
			clause, childArgs, err := filterSQL(child)
			if err != nil {
				return "", nil, err
			}
			parts = append(parts, clause)
			args = append(args, childArgs...)
		}
		return "(" + strings.Join(parts, joiner) + ")", args, nil
	}

	op, ok := sqlComparators[f.Comparator]
	if !ok {
		return "", nil, fmt.Errorf("%w: unknown comparator %q", domain.ErrInvalidFilter, f.Comparator)
	}
	path := fmt.Sprintf("$.%q", f.Field)

	if domain.IsInteger(f.Value) {
		if n, err := strconv.ParseInt(f.Value, 10, 64); err == nil {
			clause := fmt.Sprintf(
				"(CASE WHEN json_extract(metadata, ?) GLOB '[0-9]*' AND json_extract(metadata, ?) NOT GLOB '*[^0-9]*'"+
					" THEN CAST(json_extract(metadata, ?) AS INTEGER) %s ? ELSE json_extract(metadata, ?) %s ? END)",
				op, op)
			return clause, []any{path, path, path, n, path, f.Value}, nil
		}
	}

	return fmt.Sprintf("json_extract(metadata, ?) %s ?", op), []any{path, f.Value}, nil
}
