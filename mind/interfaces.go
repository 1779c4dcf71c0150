// Package mind provides interfaces and implementations for the external
// reasoning collaborators the simulation engine consumes: route planning,
// purpose interpretation, and help interpretation. Collaborators represent
// network calls and must be treated as failable; the engine always keeps a
// deterministic local fallback.
package mind

import "context"

// PlanRequest asks a planner to choose a delivery path for a message.
type PlanRequest struct {
	// Content is the message being routed.
	Content string `json:"content"`

	// SourceID is the originating cell.
	SourceID string `json:"source_id"`

	// TargetID is the destination cell.
	TargetID string `json:"target_id"`

	// Expertise maps cell id to expertise, for preference-aware planning.
	Expertise map[string]string `json:"expertise,omitempty"`

	// Connectivity is the alive-cell adjacency map, the structural ground
	// truth the plan must respect.
	Connectivity map[string][]string `json:"connectivity"`

	// Condition is an optional free-text routing constraint.
	Condition string `json:"condition,omitempty"`
}

// PlanResult is a planner's chosen path with its reasoning. The engine trusts
// the path for preference only and post-validates its structure.
type PlanResult struct {
	Path      []string `json:"path"`
	Rationale string   `json:"rationale"`
}

// HelpRequest asks an interpreter which neighbor expertise is relevant to a
// cell's request for help.
type HelpRequest struct {
	CellID            string   `json:"cell_id"`
	Request           string   `json:"request"`
	NeighborExpertise []string `json:"neighbor_expertise"`
}

// HelpResult names the expertise worth targeting. An empty set means the
// caller should fall back to broadcast.
type HelpResult struct {
	RelevantExpertise []string `json:"relevant_expertise"`
	Rationale         string   `json:"rationale"`
}

// RoutePlanner chooses a delivery path through the connectivity graph.
type RoutePlanner interface {
	// PlanRoute returns a preferred path from source to target
	PlanRoute(ctx context.Context, req PlanRequest) (*PlanResult, error)
}

// PurposeInterpreter maps a free-text network purpose to initialization
// guidance. Advisory only; the engine logs the guidance but does not
// structurally depend on it.
type PurposeInterpreter interface {
	// InterpretPurpose returns initialization guidance for a purpose
	InterpretPurpose(ctx context.Context, purpose string) (string, error)
}

// HelpInterpreter decides which neighbors should receive a targeted help
// message.
type HelpInterpreter interface {
	// InterpretHelp returns the expertise relevant to a help request
	InterpretHelp(ctx context.Context, req HelpRequest) (*HelpResult, error)
}

// Provider bundles all three collaborator roles behind one backend.
type Provider interface {
	// Name returns the name of this provider
	Name() string

	// IsConfigured returns true if the provider is ready to serve calls
	IsConfigured() bool

	RoutePlanner
	PurposeInterpreter
	HelpInterpreter
}

// Common provider names.
const (
	ProviderLocal  = "local"
	ProviderRemote = "remote"
)
