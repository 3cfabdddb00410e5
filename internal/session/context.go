package session

import (
	"sync"

	"missiongate/internal/logging"
	"missiongate/internal/types"
)

// BufferLimit bounds each recency buffer. Oldest entries fall off first.
const BufferLimit = 3

// PendingClarification is an open question plus the message that triggered
// it, kept so a resolving reply can be spliced back into the original.
type PendingClarification struct {
	Request         types.ClarificationRequest
	OriginalMessage string
}

// pending is the session's open state, modeled as a tagged union so a
// pending mission and a pending clarification can never coexist.
type pending interface{ pendingState() }

type pendingMission struct{ mission types.Mission }
type pendingClarification struct{ clarification PendingClarification }

func (pendingMission) pendingState()       {}
func (pendingClarification) pendingState() {}

// Context is one session's bounded memory. All methods are safe for
// concurrent use; each locks the context for its own duration only.
// Turn-level ordering is the coordinator's job via Serialize.
type Context struct {
	turnMu sync.Mutex // serializes whole message turns
	mu     sync.Mutex // guards the fields below

	sessionID     string
	sourceURLs    []string
	actionObjects []string
	intents       []string
	lastReady     *types.MissionFields
	open          pending
	lastArtifact  *types.ExecutionArtifact
}

func newContext(sessionID string) *Context {
	return &Context{sessionID: sessionID}
}

// SessionID returns the owning session id.
func (c *Context) SessionID() string { return c.sessionID }

// Serialize runs fn while holding the session's turn lock. Messages within
// one session must be processed in arrival order; distinct sessions are
// unaffected.
func (c *Context) Serialize(fn func()) {
	c.turnMu.Lock()
	defer c.turnMu.Unlock()
	fn()
}

// =============================================================================
// MUTATORS
// =============================================================================

// RecordReadyMission stores the fields of a confirmed READY result and feeds
// the recency buffers. Idempotent for repeated identical fields.
func (c *Context) RecordReadyMission(fields types.MissionFields) {
	c.mu.Lock()
	defer c.mu.Unlock()

	copied := fields
	c.lastReady = &copied

	c.sourceURLs = appendBounded(c.sourceURLs, fields.SourceURL)
	c.actionObjects = appendBounded(c.actionObjects, fields.ActionObject)
	c.intents = appendBounded(c.intents, fields.Intent)

	logging.Get(logging.CategorySession).Debug("session %s: ready mission recorded intent=%s url=%q",
		c.sessionID, fields.Intent, fields.SourceURL)
}

// SetPendingMission stores an unapproved mission draft, displacing any
// pending clarification.
func (c *Context) SetPendingMission(mission types.Mission) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = pendingMission{mission: mission}
	logging.Get(logging.CategorySession).Debug("session %s: pending mission %s", c.sessionID, mission.ID)
}

// SetPendingClarification stores an open clarification, displacing any
// pending mission.
func (c *Context) SetPendingClarification(request types.ClarificationRequest, originalMessage string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = pendingClarification{clarification: PendingClarification{
		Request:         request,
		OriginalMessage: originalMessage,
	}}
	logging.Get(logging.CategorySession).Debug("session %s: pending clarification %s", c.sessionID, request.Type)
}

// ClearPendingMission clears an open mission draft. Idempotent; a pending
// clarification is left untouched.
func (c *Context) ClearPendingMission() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.open.(pendingMission); ok {
		c.open = nil
	}
}

// ClearPendingClarification clears an open clarification. Idempotent; a
// pending mission is left untouched.
func (c *Context) ClearPendingClarification() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.open.(pendingClarification); ok {
		c.open = nil
	}
}

// SetLastExecutionArtifact stores a copy of the most recent execution result.
func (c *Context) SetLastExecutionArtifact(artifact types.ExecutionArtifact) {
	c.mu.Lock()
	defer c.mu.Unlock()
	copied := artifact
	c.lastArtifact = &copied
}

// =============================================================================
// ACCESSORS (defensive copies)
// =============================================================================

// PendingMission returns the open mission draft, if any.
func (c *Context) PendingMission() (types.Mission, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.open.(pendingMission); ok {
		return p.mission, true
	}
	return types.Mission{}, false
}

// PendingClarification returns the open clarification, if any.
func (c *Context) PendingClarification() (PendingClarification, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.open.(pendingClarification); ok {
		clar := p.clarification
		clar.Request.Options = copyStrings(p.clarification.Request.Options)
		return clar, true
	}
	return PendingClarification{}, false
}

// LastExecutionArtifact returns the most recent execution result, if any.
func (c *Context) LastExecutionArtifact() (types.ExecutionArtifact, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lastArtifact == nil {
		return types.ExecutionArtifact{}, false
	}
	return *c.lastArtifact, true
}

// RecentSourceURLs returns a copy of the URL recency buffer, newest last.
func (c *Context) RecentSourceURLs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return copyStrings(c.sourceURLs)
}

// RecentActionObjects returns a copy of the object recency buffer.
func (c *Context) RecentActionObjects() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return copyStrings(c.actionObjects)
}

// RecentIntents returns a copy of the intent recency buffer.
func (c *Context) RecentIntents() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return copyStrings(c.intents)
}

// LastReadyMission returns the fields of the most recent confirmed READY
// result, used by the repeat intent.
func (c *Context) LastReadyMission() (types.MissionFields, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lastReady == nil {
		return types.MissionFields{}, false
	}
	return *c.lastReady, true
}

// ResolveSourceURL returns the remembered URL iff exactly one exists. This is
// the uniqueness rule the readiness engine applies to deictic references.
func (c *Context) ResolveSourceURL() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.sourceURLs) == 1 {
		return c.sourceURLs[0], true
	}
	return "", false
}

// ResolveActionObject returns the remembered object iff exactly one exists.
func (c *Context) ResolveActionObject() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.actionObjects) == 1 {
		return c.actionObjects[0], true
	}
	return "", false
}

// appendBounded appends v to buf unless empty or already present, dropping
// the oldest entry past BufferLimit.
func appendBounded(buf []string, v string) []string {
	if v == "" {
		return buf
	}
	for _, existing := range buf {
		if existing == v {
			return buf
		}
	}
	buf = append(buf, v)
	if len(buf) > BufferLimit {
		buf = buf[len(buf)-BufferLimit:]
	}
	return buf
}

func copyStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
