package types

import "context"

// ContextView is the read-only slice of session context the readiness engine
// may consult during evaluation. Implementations must return copies.
type ContextView interface {
	RecentSourceURLs() []string
	RecentActionObjects() []string
	RecentIntents() []string
	LastReadyMission() (MissionFields, bool)
}

// ExtractionStatus reports how an external extraction attempt ended.
type ExtractionStatus string

const (
	ExtractionOK          ExtractionStatus = "ok"
	ExtractionUnavailable ExtractionStatus = "unavailable"
	ExtractionMalformed   ExtractionStatus = "malformed"
)

// Extraction is the best-effort output of the external field extractor.
// Either field may be empty even on OK; the engine fills gaps with local
// heuristics.
type Extraction struct {
	Status       ExtractionStatus `json:"status"`
	ActionObject string           `json:"action_object,omitempty"`
	SourceURL    string           `json:"source_url,omitempty"`
}

// FieldExtractor is the external best-effort extractor. It may be slow,
// unavailable, or return malformed output; callers must degrade to local
// heuristics rather than fail the evaluation.
type FieldExtractor interface {
	Extract(ctx context.Context, message string) Extraction
}

// ApprovalOutcome is the approval service's answer.
type ApprovalOutcome struct {
	Success bool
	Message string
}

// ApprovalService authorizes a proposed mission for execution.
type ApprovalService interface {
	Approve(ctx context.Context, missionID string) (ApprovalOutcome, error)
}

// ExecutionOutcome is the execution service's answer. Artifact is only
// meaningful when Success is true.
type ExecutionOutcome struct {
	Success  bool
	Summary  string
	Artifact ExecutionArtifact
	Err      string
}

// ExecutionService runs an approved mission. The coordinator enforces that
// this is invoked at most once per successful approval sequence.
type ExecutionService interface {
	Execute(ctx context.Context, mission Mission) (ExecutionOutcome, error)
}

// MissionEventSink is an append-only event log for mission state.
type MissionEventSink interface {
	Append(ctx context.Context, event MissionEvent) error
}
