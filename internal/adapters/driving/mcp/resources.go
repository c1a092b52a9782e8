package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/yurisalesc/poc-legal-llm/internal/core/domain"
)

const uriScheme = "legal://"

func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "stats",
		Name:        "stats",
		Description: "Chunk count and source files of the active collection",
		MIMEType:    "application/json",
	}, s.handleStatsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "tasks/{taskId}",
		Name:        "ingestion-task",
		Description: "State of a background PDF ingestion task",
		MIMEType:    "application/json",
	}, s.handleTaskResource)
}

func (s *Server) handleStatsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Stats == nil {
		return jsonResult(req.Params.URI, domain.CollectionStats{Sources: []string{}})
	}

	stats, err := s.ports.Stats.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading stats: %w", err)
	}
	return jsonResult(req.Params.URI, stats)
}

func (s *Server) handleTaskResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Tasks == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	id := extractTaskID(req.Params.URI)
	if id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	task, err := s.ports.Tasks.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting task: %w", err)
	}

	type taskInfo struct {
		ID        string               `json:"id"`
		State     domain.TaskState     `json:"state"`
		File      string               `json:"file"`
		Result    *domain.IngestResult `json:"result,omitempty"`
		UpdatedAt time.Time            `json:"updated_at"`
	}
	return jsonResult(req.Params.URI, taskInfo{
		ID:        task.ID,
		State:     task.State,
		File:      filepath.Base(task.FilePath),
		Result:    task.Result,
		UpdatedAt: task.UpdatedAt,
	})
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractTaskID extracts the task ID from a URI like legal://tasks/{taskId}.
func extractTaskID(uri string) string {
	const prefix = uriScheme + "tasks/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
