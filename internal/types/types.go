// Package types provides shared type definitions used across missiongate packages.
// This package exists to break import cycles between gate, session, and mission.
// Types in this package should be foundational data structures with no complex dependencies.
package types

import (
	"time"
)

// =============================================================================
// READINESS DECISION
// =============================================================================

// Decision is the five-way classification of a message's actionability.
type Decision string

const (
	DecisionReady      Decision = "READY"
	DecisionIncomplete Decision = "INCOMPLETE"
	DecisionQuestion   Decision = "QUESTION"
	DecisionMeta       Decision = "META"
	DecisionAmbiguous  Decision = "AMBIGUOUS"
)

// ConfidenceTier buckets the top candidate's confidence for routing and logging.
type ConfidenceTier string

const (
	TierCertain ConfidenceTier = "CERTAIN" // >= 0.85
	TierHigh    ConfidenceTier = "HIGH"    // >= 0.70
	TierMedium  ConfidenceTier = "MEDIUM"  // >= 0.50
	TierLow     ConfidenceTier = "LOW"     // >= 0.20
	TierUnknown ConfidenceTier = "UNKNOWN"
)

// TierFor maps a confidence score to its tier. Thresholds are inclusive.
func TierFor(confidence float64) ConfidenceTier {
	switch {
	case confidence >= 0.85:
		return TierCertain
	case confidence >= 0.70:
		return TierHigh
	case confidence >= 0.50:
		return TierMedium
	case confidence >= 0.20:
		return TierLow
	default:
		return TierUnknown
	}
}

// ClarificationType selects which clarification template is rendered.
// Set only when the decision is not READY.
type ClarificationType string

const (
	ClarifyMissingObject         ClarificationType = "MISSING_OBJECT"
	ClarifyMissingTarget         ClarificationType = "MISSING_TARGET"
	ClarifyMissingTargetNoContext ClarificationType = "MISSING_TARGET_NO_CONTEXT"
	ClarifyAmbiguousReference    ClarificationType = "AMBIGUOUS_REFERENCE"
	ClarifyMultiIntent           ClarificationType = "MULTI_INTENT"
	ClarifyTooVague              ClarificationType = "TOO_VAGUE"
	ClarifyIntentAmbiguous       ClarificationType = "INTENT_AMBIGUOUS"
	ClarifyConstraintUnclear     ClarificationType = "CONSTRAINT_UNCLEAR"
)

// =============================================================================
// INTENTS
// =============================================================================

// IntentCandidate is one externally classified intent with its confidence.
// Immutable; produced by the upstream classifier, never by this core.
type IntentCandidate struct {
	Intent     string  `json:"intent"`
	Confidence float64 `json:"confidence"`
}

// Known intent labels. Anything else is treated as unknown and gated on
// the "intent" field itself.
const (
	IntentNavigate  = "navigate"
	IntentExtract   = "extract"
	IntentSearch    = "search"
	IntentResearch  = "research"
	IntentCalculate = "calculate"
	IntentRepeat    = "repeat"
)

// KnownIntent reports whether the label is one of the enumerated intents.
func KnownIntent(intent string) bool {
	switch intent {
	case IntentNavigate, IntentExtract, IntentSearch, IntentResearch, IntentCalculate, IntentRepeat:
		return true
	}
	return false
}

// =============================================================================
// READINESS RESULT
// =============================================================================

// Field names used in missing-field lists and clarification metadata.
const (
	FieldIntent       = "intent"
	FieldActionObject = "action_object"
	FieldSourceURL    = "source_url"
	FieldConstraints  = "constraints"
	FieldPriorMission = "prior_mission"
)

// MissionFields is the structured payload a mission is built from.
// Populated only on READY results, never from raw text.
type MissionFields struct {
	Intent       string `json:"intent"`
	ActionObject string `json:"action_object,omitempty"`
	ActionTarget string `json:"action_target,omitempty"`
	SourceURL    string `json:"source_url,omitempty"`
	Constraints  string `json:"constraints,omitempty"`
}

// ClarificationRequest describes what is being asked of the user and why.
type ClarificationRequest struct {
	Type         ClarificationType `json:"type"`
	MissingField string            `json:"missing_field"`
	Intent       string            `json:"intent"`
	Question     string            `json:"question,omitempty"`
	Options      []string          `json:"options,omitempty"`
}

// ReadinessResult is the engine's output for one message.
//
// Invariant: non-READY results never populate Fields; READY results never
// populate Clarification or MissingFields.
type ReadinessResult struct {
	Decision      Decision              `json:"decision"`
	Candidates    []IntentCandidate     `json:"candidates,omitempty"` // sorted by confidence, descending
	Tier          ConfidenceTier        `json:"tier"`
	MissingFields []string              `json:"missing_fields,omitempty"` // ordered; first is primary
	Clarification *ClarificationRequest `json:"clarification,omitempty"`
	Fields        *MissionFields        `json:"fields,omitempty"`
}

// TopIntent returns the highest-confidence candidate label, or "" if none.
func (r ReadinessResult) TopIntent() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	return r.Candidates[0].Intent
}

// =============================================================================
// MISSIONS
// =============================================================================

// MissionStatus tracks a mission through its lifecycle.
type MissionStatus string

const (
	MissionProposed MissionStatus = "proposed"
	MissionApproved MissionStatus = "approved"
	MissionExecuted MissionStatus = "executed"
	MissionFailed   MissionStatus = "failed"
)

// Mission is a unit of delegated work, created only from a READY result.
type Mission struct {
	ID        string        `json:"id"`
	SessionID string        `json:"session_id"`
	Fields    MissionFields `json:"fields"`
	Status    MissionStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
}

// MissionEvent is one record in the append-only mission log. Consumers
// reconstruct current status by replaying events, last write wins per id.
type MissionEvent struct {
	MissionID string        `json:"mission_id"`
	SessionID string        `json:"session_id"`
	Status    MissionStatus `json:"status"`
	Fields    MissionFields `json:"fields"`
	Note      string        `json:"note,omitempty"`
	At        time.Time     `json:"at"`
}

// ExecutionArtifact is the stored result of a completed execution, used to
// answer read-only follow-up questions.
type ExecutionArtifact struct {
	MissionID   string    `json:"mission_id"`
	Summary     string    `json:"summary"`
	Content     string    `json:"content,omitempty"`
	CompletedAt time.Time `json:"completed_at"`
}
