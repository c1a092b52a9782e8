package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yurisalesc/poc-legal-llm/internal/core/domain"
)

func TestQueryCmd_RequiresQuestion(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "query")

	assert.Error(t, err)
}

func TestQueryCmd_PrintsAnswerAndSources(t *testing.T) {
	ts := setupTestServices(t)

	out, err := execute(t, "query", "O que diz a Lei 8.666?")

	require.NoError(t, err)
	assert.Equal(t, "O que diz a Lei 8.666?", ts.query.question)
	assert.Contains(t, out, "A Lei 8.666 institui normas para licitações.")
	assert.Contains(t, out, "Fontes:")
	assert.Contains(t, out, "- lei_8666.pdf")
	assert.Contains(t, out, "self_query")
}

func TestQueryCmd_JoinsWords(t *testing.T) {
	ts := setupTestServices(t)

	_, err := execute(t, "query", "prazo", "de", "vigência")

	require.NoError(t, err)
	assert.Equal(t, "prazo de vigência", ts.query.question)
}

func TestQueryCmd_JSON(t *testing.T) {
	ts := setupTestServices(t)
	ts.query.answer = &domain.Answer{Text: "Não encontrei.", Strategy: domain.StrategySemantic}

	out, err := execute(t, "query", "--json", "pergunta")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "Não encontrei.", got["result"])
	assert.Equal(t, []any{}, got["sources"])
	assert.Equal(t, "semantic", got["strategy"])
}

func TestQueryCmd_StrategyFlagOverridesConfig(t *testing.T) {
	ts := setupTestServices(t)

	_, err := execute(t, "query", "--strategy", "semantic", "pergunta")

	require.NoError(t, err)
	assert.Equal(t, "semantic", ts.config.Retriever.Strategy)
}

func TestQueryCmd_InvalidStrategy(t *testing.T) {
	ts := setupTestServices(t)

	_, err := execute(t, "query", "--strategy", "keyword", "pergunta")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Zero(t, ts.builds)
}

func TestQueryCmd_ServiceError(t *testing.T) {
	ts := setupTestServices(t)
	ts.query.err = domain.ErrLLMUnavailable

	_, err := execute(t, "query", "pergunta")

	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestRetrieveCmd_ListsPassages(t *testing.T) {
	ts := setupTestServices(t)
	c := lawChunk("lei_8666.pdf", "8666", "Art. 1º Esta Lei estabelece normas gerais sobre licitações.")
	c.Metadata[domain.MetaArticle] = "1"
	ts.query.chunks = []domain.Chunk{c, lawChunk("lei_10520.pdf", "10520", "Modalidade pregão.")}

	out, err := execute(t, "retrieve", "licitações")

	require.NoError(t, err)
	assert.Contains(t, out, "Passages (2)")
	assert.Contains(t, out, "1. lei_8666.pdf · Lei 8666 · Art. 1")
	assert.Contains(t, out, "2. lei_10520.pdf · Lei 10520")
	assert.Contains(t, out, "Modalidade pregão.")
}

func TestRetrieveCmd_NoPassages(t *testing.T) {
	setupTestServices(t)

	out, err := execute(t, "retrieve", "nada")

	require.NoError(t, err)
	assert.Contains(t, out, "No passages found.")
}

func TestRetrieveCmd_JSON(t *testing.T) {
	ts := setupTestServices(t)
	ts.query.chunks = []domain.Chunk{lawChunk("lei_8666.pdf", "8666", "texto")}

	out, err := execute(t, "retrieve", "--json", "licitações")
	require.NoError(t, err)

	var got []passageJSON
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "lei_8666.pdf", got[0].Source)
	assert.Equal(t, "8666", got[0].LawNumber)
	assert.Equal(t, "texto", got[0].Content)
}

func TestPreview(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"short", "Art. 1º", 20, "Art. 1º"},
		{"collapses whitespace", "Art.\n\n1º   texto", 20, "Art. 1º texto"},
		{"truncates runes", "licitação pública", 9, "licitação..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, preview(tt.in, tt.n))
		})
	}
}
