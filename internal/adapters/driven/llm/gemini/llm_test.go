package gemini

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/yurisalesc/poc-legal-llm/internal/core/ports/driven"
)

func TestNewLLMService(t *testing.T) {
	_, err := NewLLMService(context.Background(), Config{})
	assert.Error(t, err)

	svc, err := NewLLMService(context.Background(), Config{APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, svc.ModelName())
	assert.NoError(t, svc.Close())
}

func TestGenerateConfig(t *testing.T) {
	cfg := generateConfig(driven.GenerateOptions{})
	require.NotNil(t, cfg.Temperature)
	assert.Equal(t, float32(0), *cfg.Temperature)
	assert.Nil(t, cfg.SystemInstruction)
	assert.Empty(t, cfg.ResponseMIMEType)

	cfg = generateConfig(driven.GenerateOptions{
		Temperature: 0.5,
		System:      "Responda em português.",
		StopWords:   []string{"FIM"},
		JSON:        true,
	})
	assert.Equal(t, float32(0.5), *cfg.Temperature)
	require.NotNil(t, cfg.SystemInstruction)
	assert.Equal(t, "Responda em português.", cfg.SystemInstruction.Parts[0].Text)
	assert.Equal(t, []string{"FIM"}, cfg.StopSequences)
	assert.Equal(t, "application/json", cfg.ResponseMIMEType)
}

func TestResponseText(t *testing.T) {
	tests := []struct {
		name string
		resp *genai.GenerateContentResponse
		want string
	}{
		{"nil", nil, ""},
		{"no candidates", &genai.GenerateContentResponse{}, ""},
		{
			name: "joins parts and skips thoughts",
			resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []*genai.Part{
					{Text: "pensando", Thought: true},
					{Text: "A Lei 8.666 "},
					{Text: "institui normas."},
				}},
			}}},
			want: "A Lei 8.666 institui normas.",
		},
		{
			name: "falls through empty candidate",
			resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{
				{Content: &genai.Content{}},
				{Content: &genai.Content{Parts: []*genai.Part{{Text: "ok"}}}},
			}},
			want: "ok",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, responseText(tt.resp))
		})
	}
}
