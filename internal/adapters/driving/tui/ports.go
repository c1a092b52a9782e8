// Package tui provides an interactive terminal interface for asking
// questions about the ingested legislation.
package tui

import (
	"github.com/yurisalesc/poc-legal-llm/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the TUI.
type Ports struct {
	// Query answers questions.
	Query driving.QueryService

	// Stats reports what has been ingested. Optional.
	Stats driving.StatsService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Query == nil {
		return ErrMissingQueryService
	}
	return nil
}
