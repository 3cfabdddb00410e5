// Package mission implements the lifecycle coordinator: the top-level state
// machine that routes each message through clarification resolution, the
// readiness engine, mission creation, explicit approval, and exactly-once
// execution.
package mission

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"missiongate/internal/clarify"
	"missiongate/internal/gate"
	"missiongate/internal/logging"
	"missiongate/internal/session"
	"missiongate/internal/types"
)

// ErrMissingRequiredFields marks the internal invariant violation of a READY
// result that lacks a field its intent requires. It is a programming error,
// never a user error.
var ErrMissingRequiredFields = errors.New("ready result missing required fields")

// Classifier produces intent candidates for a message. Classification is an
// external concern; the gate only consumes its output.
type Classifier interface {
	Classify(ctx context.Context, message string) []types.IntentCandidate
}

// ResponseKind tags what a rendered response is.
type ResponseKind string

const (
	RespClarification ResponseKind = "clarification"
	RespProposal      ResponseKind = "proposal"
	RespExecution     ResponseKind = "execution"
	RespAnswer        ResponseKind = "answer"
	RespAck           ResponseKind = "ack"
	RespError         ResponseKind = "error"
)

// Response is the single rendered output of one processed message.
type Response struct {
	Kind      ResponseKind
	Text      string
	Decision  types.Decision
	MissionID string
}

// Coordinator drives the mission lifecycle. One instance serves all
// sessions; per-session ordering comes from the session turn lock.
type Coordinator struct {
	engine     *gate.Engine
	sessions   *session.Store
	classifier Classifier
	approver   types.ApprovalService
	executor   types.ExecutionService
	sink       types.MissionEventSink
}

// NewCoordinator wires the gate's collaborators together. sink may be nil
// when no event log is configured.
func NewCoordinator(engine *gate.Engine, sessions *session.Store, classifier Classifier,
	approver types.ApprovalService, executor types.ExecutionService, sink types.MissionEventSink) *Coordinator {
	return &Coordinator{
		engine:     engine,
		sessions:   sessions,
		classifier: classifier,
		approver:   approver,
		executor:   executor,
		sink:       sink,
	}
}

// ProcessMessage is the single exposed entry point. Messages within one
// session are processed in arrival order; distinct sessions run concurrently.
func (c *Coordinator) ProcessMessage(ctx context.Context, sessionID, message string) Response {
	sctx := c.sessions.GetOrCreate(sessionID)

	var resp Response
	sctx.Serialize(func() {
		resp = c.process(ctx, sctx, message)
	})
	return resp
}

func (c *Coordinator) process(ctx context.Context, sctx *session.Context, message string) Response {
	log := logging.Get(logging.CategoryMission)

	// An open clarification owns the message first.
	if pending, ok := sctx.PendingClarification(); ok {
		out := clarify.Resolve(message, pending)
		switch {
		case out.Resolved:
			sctx.ClearPendingClarification()
			message = out.Merged
		case out.Superseded:
			sctx.ClearPendingClarification()
		default:
			// Same question, asked again.
			return Response{Kind: RespClarification, Text: clarify.Render(pending.Request)}
		}
	} else if clarify.IsApprovalPhrase(message) {
		return c.handleApproval(ctx, sctx)
	}

	candidates := c.classifier.Classify(ctx, message)
	result := c.engine.Evaluate(ctx, message, candidates, sctx)

	switch result.Decision {
	case types.DecisionMeta:
		return Response{Kind: RespAnswer, Decision: result.Decision, Text: renderCapabilities()}

	case types.DecisionQuestion:
		// Questions about the last run are answered from its artifact
		// without touching mission state. The engine has already ruled
		// out META here, so capability questions keep their own answer.
		if artifact, ok := sctx.LastExecutionArtifact(); ok && IsArtifactFollowUp(message) {
			return Response{Kind: RespAnswer, Decision: result.Decision, Text: renderArtifactAnswer(artifact)}
		}
		return Response{Kind: RespAnswer, Decision: result.Decision, Text: renderQuestionFallback()}

	case types.DecisionIncomplete, types.DecisionAmbiguous:
		req := *result.Clarification
		req.Question = clarify.Render(req)
		sctx.SetPendingClarification(req, message)
		log.Debug("clarification registered: type=%s field=%s", req.Type, req.MissingField)
		return Response{Kind: RespClarification, Decision: result.Decision, Text: req.Question}

	case types.DecisionReady:
		return c.createMission(ctx, sctx, result)

	default:
		log.Error("unhandled decision %q", result.Decision)
		return Response{Kind: RespError, Text: renderInternalError()}
	}
}

// createMission builds the draft and parks it for approval. Defense in
// depth: a READY result missing a required field fails loudly instead of
// creating a partial mission.
func (c *Coordinator) createMission(ctx context.Context, sctx *session.Context, result types.ReadinessResult) Response {
	log := logging.Get(logging.CategoryMission)
	sctx.ClearPendingClarification()

	if err := assertRequiredFields(result); err != nil {
		log.Error("invariant violation: %v (intent=%s fields=%+v)", err, result.TopIntent(), result.Fields)
		return Response{Kind: RespError, Decision: result.Decision, Text: renderInternalError()}
	}

	mission := types.Mission{
		ID:        uuid.NewString(),
		SessionID: sctx.SessionID(),
		Fields:    *result.Fields,
		Status:    types.MissionProposed,
		CreatedAt: time.Now().UTC(),
	}

	c.emit(ctx, mission, types.MissionProposed, "")
	sctx.SetPendingMission(mission)
	sctx.RecordReadyMission(mission.Fields)

	log.Info("mission proposed: id=%s intent=%s", mission.ID, mission.Fields.Intent)
	return Response{
		Kind:      RespProposal,
		Decision:  result.Decision,
		MissionID: mission.ID,
		Text:      renderProposal(mission),
	}
}

// handleApproval runs the approve-then-execute sequence at most once per
// pending mission. A second approval after success finds nothing pending.
func (c *Coordinator) handleApproval(ctx context.Context, sctx *session.Context) Response {
	log := logging.Get(logging.CategoryMission)

	mission, ok := sctx.PendingMission()
	if !ok {
		return Response{Kind: RespAck, Text: renderNothingToApprove()}
	}

	// Approval is not re-run for a mission that already passed it; a retry
	// after an execution failure goes straight back to execution.
	if mission.Status == types.MissionProposed {
		outcome, err := c.approver.Approve(ctx, mission.ID)
		if err != nil {
			log.Warn("approval call failed for %s: %v", mission.ID, err)
			return Response{Kind: RespError, MissionID: mission.ID, Text: renderApprovalFailure(err.Error())}
		}
		if !outcome.Success {
			log.Warn("approval denied for %s: %s", mission.ID, outcome.Message)
			return Response{Kind: RespError, MissionID: mission.ID, Text: renderApprovalFailure(outcome.Message)}
		}

		mission.Status = types.MissionApproved
		c.emit(ctx, mission, types.MissionApproved, "")
		sctx.SetPendingMission(mission)
	}

	result, err := c.executor.Execute(ctx, mission)
	if err != nil || !result.Success {
		reason := result.Err
		if err != nil {
			reason = err.Error()
		}
		// Pending mission stays; the user may retry with another approval.
		c.emit(ctx, mission, types.MissionFailed, reason)
		log.Warn("execution failed for %s: %s", mission.ID, reason)
		return Response{Kind: RespError, MissionID: mission.ID, Text: renderExecutionFailure(reason)}
	}

	mission.Status = types.MissionExecuted
	c.emit(ctx, mission, types.MissionExecuted, "")
	sctx.ClearPendingMission()
	sctx.SetLastExecutionArtifact(result.Artifact)

	log.Info("mission executed: id=%s", mission.ID)
	return Response{Kind: RespExecution, MissionID: mission.ID, Text: renderExecutionResult(result)}
}

func (c *Coordinator) emit(ctx context.Context, mission types.Mission, status types.MissionStatus, note string) {
	if c.sink == nil {
		return
	}
	event := types.MissionEvent{
		MissionID: mission.ID,
		SessionID: mission.SessionID,
		Status:    status,
		Fields:    mission.Fields,
		Note:      note,
		At:        time.Now().UTC(),
	}
	if err := c.sink.Append(ctx, event); err != nil {
		// The in-memory lifecycle stays authoritative; a sink outage must
		// not block the user.
		logging.Get(logging.CategoryMission).Error("event sink append failed for %s: %v", mission.ID, err)
	}
}

func assertRequiredFields(result types.ReadinessResult) error {
	if result.Fields == nil {
		return ErrMissingRequiredFields
	}
	for _, field := range gate.RequiredFields(result.Fields.Intent) {
		var value string
		switch field {
		case types.FieldSourceURL:
			value = result.Fields.SourceURL
		case types.FieldActionObject:
			value = result.Fields.ActionObject
		case types.FieldConstraints:
			value = result.Fields.Constraints
		case types.FieldIntent:
			value = result.Fields.Intent
		}
		if value == "" {
			return ErrMissingRequiredFields
		}
	}
	return nil
}
