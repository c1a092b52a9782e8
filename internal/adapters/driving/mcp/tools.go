package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/yurisalesc/poc-legal-llm/internal/core/domain"
)

const defaultPassageLimit = 10

// AskInput is the input schema for the consultar_lei tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question about Brazilian legislation, in Portuguese"`
}

// AskOutput is the output schema for the consultar_lei tool.
type AskOutput struct {
	Answer   string   `json:"answer"`
	Sources  []string `json:"sources"`
	Strategy string   `json:"strategy"`
}

// PassagesInput is the input schema for the buscar_trechos tool.
type PassagesInput struct {
	Question string `json:"question" jsonschema:"the text to search for"`
	Source   string `json:"source,omitempty" jsonschema:"only return passages from this PDF file name"`
	Limit    int    `json:"limit,omitempty" jsonschema:"maximum number of passages to return (default 10)"`
}

// PassagesOutput is the output schema for the buscar_trechos tool.
type PassagesOutput struct {
	Passages []PassageOutput `json:"passages"`
	Count    int             `json:"count"`
}

// PassageOutput is one retrieved passage.
type PassageOutput struct {
	Source          string `json:"source"`
	LawNumber       string `json:"lei_numero,omitempty"`
	PublicationDate string `json:"data_publicacao,omitempty"`
	Position        int    `json:"position"`
	Content         string `json:"content"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "consultar_lei",
		Description: "Answer a question using only the ingested laws and decrees, citing the source files",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "buscar_trechos",
		Description: "Return the law passages most relevant to a question, without generating an answer",
	}, s.handlePassages)
}

func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	answer, err := s.ports.Query.Ask(ctx, input.Question)
	if err != nil {
		return nil, AskOutput{}, err
	}

	sources := answer.Sources
	if sources == nil {
		sources = []string{}
	}
	return nil, AskOutput{
		Answer:   answer.Text,
		Sources:  sources,
		Strategy: string(answer.Strategy),
	}, nil
}

func (s *Server) handlePassages(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input PassagesInput,
) (*mcp.CallToolResult, PassagesOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultPassageLimit
	}

	chunks, err := s.ports.Query.Retrieve(ctx, input.Question)
	if err != nil {
		return nil, PassagesOutput{}, err
	}

	output := PassagesOutput{Passages: []PassageOutput{}}
	for i := range chunks {
		if input.Source != "" && chunks[i].Source() != input.Source {
			continue
		}
		if len(output.Passages) == limit {
			break
		}
		output.Passages = append(output.Passages, PassageOutput{
			Source:          chunks[i].Source(),
			LawNumber:       chunks[i].Metadata[domain.MetaLawNumber],
			PublicationDate: chunks[i].Metadata[domain.MetaPublicationDate],
			Position:        chunks[i].Position,
			Content:         chunks[i].Content,
		})
	}
	output.Count = len(output.Passages)

	return nil, output, nil
}
