package mcp

import (
	"github.com/yurisalesc/poc-legal-llm/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the MCP server.
type Ports struct {
	// Query answers questions and retrieves passages.
	Query driving.QueryService

	// Stats reports collection size. Optional.
	Stats driving.StatsService

	// Tasks reports background ingestion state. Optional.
	Tasks driving.TaskService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Query == nil {
		return ErrMissingQueryService
	}
	return nil
}
