package articles

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yurisalesc/poc-legal-llm/internal/core/domain"
	"github.com/yurisalesc/poc-legal-llm/internal/extractors/legal"
)

func TestProcessor_Name(t *testing.T) {
	assert.Equal(t, "articles", New(legal.New()).Name())
}

func TestProcessor_Process(t *testing.T) {
	chunks := []domain.Chunk{
		{Content: "Art. 5 estabelece...", Metadata: domain.Metadata{domain.MetaSource: "d.pdf"}},
		{Content: "sem marcador de artigo"},
		{Content: "ART. 12. Revoga-se", Metadata: domain.Metadata{}},
	}

	out, err := New(legal.New()).Process(context.Background(), &domain.Document{}, chunks)
	require.NoError(t, err)
	require.Len(t, out, 3)

	assert.Equal(t, domain.Metadata{domain.MetaSource: "d.pdf", domain.MetaArticle: "5"}, out[0].Metadata)
	assert.Equal(t, domain.ArticleNotFound, out[1].Metadata[domain.MetaArticle])
	assert.Equal(t, "12", out[2].Metadata[domain.MetaArticle])
}

func TestProcessor_Process_NoChunks(t *testing.T) {
	out, err := New(legal.New()).Process(context.Background(), &domain.Document{}, nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}
