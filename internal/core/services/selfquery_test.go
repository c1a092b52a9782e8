package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yurisalesc/poc-legal-llm/internal/core/domain"
	"github.com/yurisalesc/poc-legal-llm/internal/core/ports/driven"
)

func newSelfQuery(t *testing.T, store driven.VectorStore, llm *mockLLM) (*SelfQueryRetriever, *recordingMetrics) {
	t.Helper()
	r := NewSelfQueryRetriever(NewSemanticRetriever(newHashEmbedder(), store, semanticSettings()), llm, &mockPrompts{})
	metrics := &recordingMetrics{}
	r.SetMetrics(metrics)
	return r, metrics
}

func TestSelfQuery_FilterRestrictsToOneSource(t *testing.T) {
	store := seedTwoLaws(t)
	question := "O que diz a lei 14133 sobre licitações?"
	ctx := context.Background()

	semantic, err := NewSemanticRetriever(newHashEmbedder(), store, semanticSettings()).Retrieve(ctx, question)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"lei_8666_1993.pdf", "lei_14133_2021.pdf"}, sourcesOf(semantic))

	llm := &mockLLM{selfQuery: `{"query": "licitações", "filter": {"field": "lei_numero", "comparator": "eq", "value": "14133"}}`}
	r, metrics := newSelfQuery(t, store, llm)

	chunks, err := r.Retrieve(ctx, question)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.Equal(t, "lei_14133_2021.pdf", c.Source())
	}
	assert.Zero(t, metrics.fallbacks)

	require.Len(t, llm.prompts, 1)
	assert.True(t, llm.options[0].JSON)
	assert.Contains(t, llm.prompts[0], question)
	assert.Contains(t, llm.prompts[0], ContentDescription)
	assert.Contains(t, llm.prompts[0], `"name": "lei_numero"`)
}

func TestSelfQuery_SourceFilter(t *testing.T) {
	store := seedTwoLaws(t)
	llm := &mockLLM{selfQuery: `{"query": "normas", "filter": {"operator": "and", "filters": [{"field": "source", "comparator": "eq", "value": "lei_8666_1993.pdf"}]}}`}
	r, _ := newSelfQuery(t, store, llm)

	chunks, err := r.Retrieve(context.Background(), "normas do arquivo lei_8666_1993.pdf")
	require.NoError(t, err)
	assert.Equal(t, []string{"lei_8666_1993.pdf"}, sourcesOf(chunks))
}

func TestSelfQuery_FallsBackToSemantic(t *testing.T) {
	tests := []struct {
		name   string
		output string
		err    error
	}{
		{name: "not json", output: "Desculpe, não entendi."},
		{name: "unknown field", output: `{"query": "q", "filter": {"field": "autor", "comparator": "eq", "value": "x"}}`},
		{name: "unknown comparator", output: `{"query": "q", "filter": {"field": "source", "comparator": "like", "value": "x"}}`},
		{name: "query not a string", output: `{"query": 5}`},
		{name: "extra keys in filter", output: `{"query": "q", "filter": {"field": "source", "comparator": "eq", "value": "x", "peso": 1}}`},
		{name: "llm error", err: errors.New("503 overloaded")},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := seedTwoLaws(t)
			r, metrics := newSelfQuery(t, store, &mockLLM{selfQuery: tc.output, err: tc.err})

			chunks, err := r.Retrieve(context.Background(), "licitações")
			require.NoError(t, err)
			assert.ElementsMatch(t, []string{"lei_8666_1993.pdf", "lei_14133_2021.pdf"}, sourcesOf(chunks))
			assert.Equal(t, 1, metrics.fallbacks)
		})
	}
}

func TestSelfQuery_MissingPromptFallsBack(t *testing.T) {
	store := seedTwoLaws(t)
	r := NewSelfQueryRetriever(NewSemanticRetriever(newHashEmbedder(), store, semanticSettings()), &mockLLM{}, &mockPrompts{missing: true})

	chunks, err := r.Retrieve(context.Background(), "licitações")
	require.NoError(t, err)
	assert.Len(t, chunks, 2)
}

func TestSelfQuery_CancelledContextFails(t *testing.T) {
	store := seedTwoLaws(t)
	r, _ := newSelfQuery(t, store, &mockLLM{err: context.Canceled})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Retrieve(ctx, "licitações")
	assert.ErrorIs(t, err, domain.ErrRetrievalFailed)
}

func TestParseStructuredQuery(t *testing.T) {
	tests := []struct {
		name       string
		output     string
		wantQuery  string
		wantFilter string
	}{
		{
			name:       "plain",
			output:     `{"query": "licitação", "filter": {"field": "lei_numero", "comparator": "eq", "value": "8666"}}`,
			wantQuery:  "licitação",
			wantFilter: `eq(lei_numero, "8666")`,
		},
		{
			name:       "code fence",
			output:     "```json\n{\"query\": \"licitação\", \"filter\": null}\n```",
			wantQuery:  "licitação",
			wantFilter: "NO_FILTER",
		},
		{
			name:       "NO_FILTER literal",
			output:     `{"query": "licitação", "filter": "NO_FILTER"}`,
			wantQuery:  "licitação",
			wantFilter: "NO_FILTER",
		},
		{
			name:       "missing filter",
			output:     `{"query": "licitação"}`,
			wantQuery:  "licitação",
			wantFilter: "NO_FILTER",
		},
		{
			name:       "empty filter object",
			output:     `{"query": "licitação", "filter": {}}`,
			wantQuery:  "licitação",
			wantFilter: "NO_FILTER",
		},
		{
			name:       "numeric value",
			output:     `{"query": "", "filter": {"field": "lei_numero", "comparator": "gte", "value": 10520}}`,
			wantQuery:  "",
			wantFilter: `gte(lei_numero, "10520")`,
		},
		{
			name:       "law number with separators",
			output:     `{"query": "q", "filter": {"field": "lei_numero", "comparator": "eq", "value": "8.666"}}`,
			wantQuery:  "q",
			wantFilter: `eq(lei_numero, "8666")`,
		},
		{
			name: "composite",
			output: `Aqui está: {"query": "pregão", "filter": {"operator": "or", "filters": [
				{"field": "lei_numero", "comparator": "eq", "value": "10520"},
				{"field": "data_publicacao", "comparator": "eq", "value": "17 DE JULHO DE 2002"}]}}`,
			wantQuery:  "pregão",
			wantFilter: `or(eq(lei_numero, "10520"), eq(data_publicacao, "17 DE JULHO DE 2002"))`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sq, err := ParseStructuredQuery(tc.output)
			require.NoError(t, err)
			assert.Equal(t, tc.wantQuery, sq.Query)
			got := "NO_FILTER"
			if sq.Filter != nil {
				got = sq.Filter.String()
			}
			assert.Equal(t, tc.wantFilter, got)
		})
	}
}

func TestParseStructuredQuery_Invalid(t *testing.T) {
	outputs := []string{
		"",
		"sem json",
		`{"filter": null}`,
		`{"query": "q", "filter": {"field": "artigo", "comparator": "eq", "value": "5"}}`,
		`{"query": "q", "filter": {"operator": "xor", "filters": []}}`,
		`{"query": "q", "filter": {"operator": "and", "filters": []}}`,
		`{"query": "q", "filter": 42}`,
	}
	for _, out := range outputs {
		_, err := ParseStructuredQuery(out)
		assert.ErrorIs(t, err, domain.ErrInvalidFilter, "output %q", out)
	}
}
