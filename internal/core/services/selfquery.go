package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/yurisalesc/poc-legal-llm/internal/core/domain"
	"github.com/yurisalesc/poc-legal-llm/internal/core/ports/driven"
	"github.com/yurisalesc/poc-legal-llm/internal/logger"
)

// ContentDescription tells the self-query model what the stored passages are.
const ContentDescription = "Um trecho (chunk) de um documento legislativo brasileiro."

// noFilter is the literal some models emit instead of a null filter.
const noFilter = "NO_FILTER"

// structuredQuerySchema constrains the model's translation output.
var structuredQuerySchema = map[string]any{
	"type":     "object",
	"required": []any{"query"},
	"properties": map[string]any{
		"query": map[string]any{"type": "string"},
		"filter": map[string]any{
			"oneOf": []any{
				map[string]any{"type": "null"},
				map[string]any{"enum": []any{noFilter, ""}},
				map[string]any{"$ref": "#/definitions/filter"},
			},
		},
	},
	"definitions": map[string]any{
		"filter": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"operator":   map[string]any{"enum": []any{"and", "or"}},
				"filters":    map[string]any{"type": "array", "items": map[string]any{"$ref": "#/definitions/filter"}},
				"field":      map[string]any{"type": "string"},
				"comparator": map[string]any{"enum": []any{"eq", "ne", "gt", "gte", "lt", "lte"}},
				"value":      map[string]any{"type": []any{"string", "number"}},
			},
			"additionalProperties": false,
		},
	},
}

var compiledSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewGoLoader(structuredQuerySchema))
})

// SelfQueryRetriever asks the LLM to turn a question into a residual query
// and a metadata filter, then ranks only the chunks that pass the filter.
// Any translation failure degrades to plain semantic retrieval.
type SelfQueryRetriever struct {
	semantic *SemanticRetriever
	llm      driven.LLMService
	prompts  driven.PromptStore
	metrics  driven.Metrics
}

// NewSelfQueryRetriever creates a self-query retriever on top of semantic.
func NewSelfQueryRetriever(semantic *SemanticRetriever, llm driven.LLMService, prompts driven.PromptStore) *SelfQueryRetriever {
	return &SelfQueryRetriever{
		semantic: semantic,
		llm:      llm,
		prompts:  prompts,
		metrics:  nopMetrics{},
	}
}

// SetMetrics sets the metrics recorder.
func (r *SelfQueryRetriever) SetMetrics(m driven.Metrics) {
	r.metrics = metricsOrNop(m)
}

// Strategy returns domain.StrategySelfQuery.
func (r *SelfQueryRetriever) Strategy() domain.RetrievalStrategy {
	return domain.StrategySelfQuery
}

// Retrieve translates the question and runs the filtered search.
func (r *SelfQueryRetriever) Retrieve(ctx context.Context, question string) ([]domain.Chunk, error) {
	sq, err := r.Translate(ctx, question)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrRetrievalFailed, ctx.Err())
		}
		logger.Warn("self-query translation failed, using semantic retrieval: %v", err)
		r.metrics.SelfQueryFallback()
		return r.semantic.Retrieve(ctx, question)
	}

	query := strings.TrimSpace(sq.Query)
	if query == "" {
		query = question
	}
	var filter domain.Filter
	if sq.Filter != nil {
		filter = *sq.Filter
	}
	logger.Debug("Self-query: query=%q filter=%s", query, filter)
	return r.semantic.search(ctx, query, filter)
}

// Translate asks the LLM for the structured form of question.
func (r *SelfQueryRetriever) Translate(ctx context.Context, question string) (*domain.StructuredQuery, error) {
	prompt, err := r.renderPrompt(question)
	if err != nil {
		return nil, err
	}
	out, err := r.llm.Generate(ctx, prompt, driven.GenerateOptions{Temperature: 0, JSON: true})
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	return ParseStructuredQuery(out)
}

func (r *SelfQueryRetriever) renderPrompt(question string) (string, error) {
	if r.prompts == nil {
		return "", fmt.Errorf("%w: no prompt store", domain.ErrTemplatePlaceholder)
	}
	text, err := r.prompts.Load(driven.PromptSelfQuery)
	if err != nil {
		return "", fmt.Errorf("load prompt: %w", err)
	}
	attributes, err := json.MarshalIndent(domain.FilterableFields(), "", "  ")
	if err != nil {
		return "", err
	}
	return domain.NewPromptTemplate(driven.PromptSelfQuery, text).Render(map[string]string{
		"content_description": ContentDescription,
		"attributes":          string(attributes),
		"question":            question,
	})
}

// rawFilter mirrors domain.Filter but accepts numeric values.
type rawFilter struct {
	Operator   string      `json:"operator"`
	Filters    []rawFilter `json:"filters"`
	Field      string      `json:"field"`
	Comparator string      `json:"comparator"`
	Value      any         `json:"value"`
}

func (f rawFilter) toDomain() domain.Filter {
	out := domain.Filter{
		Operator:   domain.Operator(f.Operator),
		Field:      f.Field,
		Comparator: domain.Comparator(f.Comparator),
	}
	switch v := f.Value.(type) {
	case string:
		out.Value = v
	case json.Number:
		out.Value = v.String()
	}
	if out.Field == domain.MetaLawNumber {
		out.Value = strings.ReplaceAll(out.Value, ".", "")
	}
	for _, child := range f.Filters {
		out.Filters = append(out.Filters, child.toDomain())
	}
	return out
}

// ParseStructuredQuery decodes and validates model output of the form
// {"query": "...", "filter": {...} | null}. Markdown code fences and text
// around the JSON object are tolerated.
func ParseStructuredQuery(output string) (*domain.StructuredQuery, error) {
	payload := extractJSONObject(output)
	if payload == "" {
		return nil, fmt.Errorf("%w: no JSON object in model output", domain.ErrInvalidFilter)
	}

	schema, err := compiledSchema()
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	result, err := schema.Validate(gojsonschema.NewStringLoader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidFilter, err)
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidFilter, strings.Join(details, "; "))
	}

	var raw struct {
		Query  string          `json:"query"`
		Filter json.RawMessage `json:"filter"`
	}
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidFilter, err)
	}

	sq := &domain.StructuredQuery{Query: raw.Query}
	if isNoFilter(raw.Filter) {
		return sq, nil
	}

	var rf rawFilter
	dec := json.NewDecoder(bytes.NewReader(raw.Filter))
	dec.UseNumber()
	if err := dec.Decode(&rf); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidFilter, err)
	}
	filter := rf.toDomain()
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	if !filter.IsEmpty() {
		sq.Filter = &filter
	}
	return sq, nil
}

func isNoFilter(raw json.RawMessage) bool {
	if len(raw) == 0 || string(raw) == "null" {
		return true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s == "" || s == noFilter
	}
	return false
}

// extractJSONObject returns the outermost {...} span of s.
func extractJSONObject(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return ""
	}
	return s[start : end+1]
}
