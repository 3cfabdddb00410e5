// Package gate implements the readiness engine: the pure decision function
// that classifies each inbound message as READY, INCOMPLETE, QUESTION, META,
// or AMBIGUOUS before any mission may be created.
package gate

import (
	"context"
	"sort"
	"time"

	"missiongate/internal/logging"
	"missiongate/internal/types"
)

// AmbiguityGap is the minimum confidence separation between the top two
// intent candidates. Anything closer is surfaced to the user instead of
// silently picking a winner.
const AmbiguityGap = 0.10

// Engine evaluates readiness. It is pure with respect to its inputs: the
// context view is read-only and the engine never mutates session state.
type Engine struct {
	extractor types.FieldExtractor // optional; nil means heuristics only
	timeout   time.Duration
}

// NewEngine creates an engine. extractor may be nil.
func NewEngine(extractor types.FieldExtractor, timeout time.Duration) *Engine {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Engine{extractor: extractor, timeout: timeout}
}

// Evaluate classifies one message. Checks short-circuit in order: META,
// QUESTION, multi-command, intent ambiguity, then field readiness.
// Malformed input degrades to INCOMPLETE or AMBIGUOUS, never a guessed READY.
func (e *Engine) Evaluate(ctx context.Context, message string, candidates []types.IntentCandidate, view types.ContextView) types.ReadinessResult {
	log := logging.Get(logging.CategoryGate)

	sorted := sortCandidates(candidates)
	tier := types.TierUnknown
	if len(sorted) > 0 {
		tier = types.TierFor(sorted[0].Confidence)
	}

	result := types.ReadinessResult{
		Candidates: sorted,
		Tier:       tier,
	}

	if IsMetaMessage(message) {
		result.Decision = types.DecisionMeta
		log.Debug("decision=META tier=%s msg_len=%d", tier, len(message))
		return result
	}

	if IsQuestion(message) {
		result.Decision = types.DecisionQuestion
		log.Debug("decision=QUESTION tier=%s msg_len=%d", tier, len(message))
		return result
	}

	if verbs := MultiIntentVerbs(message); verbs != nil {
		result.Decision = types.DecisionAmbiguous
		result.Clarification = &types.ClarificationRequest{
			Type:         types.ClarifyMultiIntent,
			MissingField: types.FieldIntent,
			Intent:       result.TopIntent(),
			Options:      verbs,
		}
		log.Debug("decision=AMBIGUOUS type=MULTI_INTENT verbs=%v", verbs)
		return result
	}

	if len(sorted) >= 2 && sorted[0].Confidence-sorted[1].Confidence < AmbiguityGap {
		result.Decision = types.DecisionAmbiguous
		result.Clarification = &types.ClarificationRequest{
			Type:         types.ClarifyIntentAmbiguous,
			MissingField: types.FieldIntent,
			Intent:       sorted[0].Intent,
			Options:      []string{sorted[0].Intent, sorted[1].Intent},
		}
		log.Debug("decision=AMBIGUOUS type=INTENT_AMBIGUOUS top=%s second=%s gap=%.3f",
			sorted[0].Intent, sorted[1].Intent, sorted[0].Confidence-sorted[1].Confidence)
		return result
	}

	intent := result.TopIntent()
	missing := missingFieldsFor(intent, message, view)

	// Context-safe resolution: a missing field resolves only with both a
	// linguistic cue and exactly one candidate in the matching buffer.
	resolved := map[string]string{}
	remaining := missing[:0:0]
	for _, field := range missing {
		if value, ok := resolveFromContext(field, message, view); ok {
			resolved[field] = value
			continue
		}
		remaining = append(remaining, field)
	}

	if len(remaining) > 0 {
		result.Decision = types.DecisionIncomplete
		result.MissingFields = remaining
		result.Clarification = selectClarification(intent, message, remaining, view)
		log.Debug("decision=INCOMPLETE intent=%s missing=%v type=%s", intent, remaining, result.Clarification.Type)
		return result
	}

	result.Decision = types.DecisionReady
	result.Fields = e.populateFields(ctx, message, intent, resolved, view)
	log.Debug("decision=READY intent=%s object=%q url=%q", intent, result.Fields.ActionObject, result.Fields.SourceURL)
	return result
}

// sortCandidates returns a copy sorted by confidence, descending. Stable so
// equal-confidence candidates keep classifier order.
func sortCandidates(candidates []types.IntentCandidate) []types.IntentCandidate {
	sorted := make([]types.IntentCandidate, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Confidence > sorted[j].Confidence
	})
	return sorted
}

// resolveFromContext applies the single safety rule of the engine: a cue in
// the message plus referential uniqueness in the buffer, or no resolution.
func resolveFromContext(field, message string, view types.ContextView) (string, bool) {
	switch field {
	case types.FieldSourceURL:
		if !HasURLDeictic(message) {
			return "", false
		}
		urls := view.RecentSourceURLs()
		if len(urls) != 1 {
			return "", false
		}
		return urls[0], true
	case types.FieldActionObject:
		if !HasObjectDeictic(message) {
			return "", false
		}
		objects := view.RecentActionObjects()
		if len(objects) != 1 {
			return "", false
		}
		return objects[0], true
	}
	return "", false
}

// selectClarification picks the clarification type by fixed precedence:
// vague terms, then ambiguous reference, then missing object, then missing
// target, then intent-specific fallbacks.
func selectClarification(intent, message string, remaining []string, view types.ContextView) *types.ClarificationRequest {
	urls := view.RecentSourceURLs()
	objects := view.RecentActionObjects()
	req := &types.ClarificationRequest{Intent: intent, MissingField: remaining[0]}

	switch {
	case HasVagueTerm(message):
		req.Type = types.ClarifyTooVague

	case hasField(remaining, types.FieldSourceURL) && HasURLDeictic(message) && len(urls) >= 2:
		req.Type = types.ClarifyAmbiguousReference
		req.MissingField = types.FieldSourceURL
		req.Options = urls

	case hasField(remaining, types.FieldActionObject) && HasObjectDeictic(message) && len(objects) >= 2:
		req.Type = types.ClarifyAmbiguousReference
		req.MissingField = types.FieldActionObject
		req.Options = objects

	case hasField(remaining, types.FieldActionObject) && (intent == types.IntentExtract || intent == types.IntentSearch):
		req.Type = types.ClarifyMissingObject
		req.MissingField = types.FieldActionObject

	case hasField(remaining, types.FieldSourceURL):
		req.MissingField = types.FieldSourceURL
		if len(urls) == 0 {
			req.Type = types.ClarifyMissingTargetNoContext
		} else {
			req.Type = types.ClarifyMissingTarget
			req.Options = urls
		}

	case hasField(remaining, types.FieldPriorMission):
		req.Type = types.ClarifyTooVague

	case hasField(remaining, types.FieldConstraints):
		req.Type = types.ClarifyConstraintUnclear

	case hasField(remaining, types.FieldIntent):
		req.Type = types.ClarifyTooVague

	default:
		req.Type = types.ClarifyMissingTarget
	}

	return req
}

func hasField(fields []string, field string) bool {
	for _, f := range fields {
		if f == field {
			return true
		}
	}
	return false
}

// populateFields builds the structured mission fields for a READY result,
// preferring the external extractor and falling back to local heuristics and
// context-resolved values. repeat copies the prior mission unconditionally.
func (e *Engine) populateFields(ctx context.Context, message, intent string, resolved map[string]string, view types.ContextView) *types.MissionFields {
	if intent == types.IntentRepeat {
		prior, _ := view.LastReadyMission()
		return &prior
	}

	fields := &types.MissionFields{Intent: intent}

	var ext types.Extraction
	if e.extractor != nil {
		cctx, cancel := context.WithTimeout(ctx, e.timeout)
		ext = e.extractor.Extract(cctx, message)
		cancel()
		if ext.Status != types.ExtractionOK {
			logging.Get(logging.CategoryExtract).Warn("extractor degraded: status=%s, falling back to heuristics", ext.Status)
		}
	}

	if ext.Status == types.ExtractionOK && ext.ActionObject != "" {
		fields.ActionObject = ext.ActionObject
	} else if obj := ExtractObjectHeuristic(message); obj != "" {
		fields.ActionObject = obj
	} else if value, ok := resolved[types.FieldActionObject]; ok {
		fields.ActionObject = value
	} else if intent == types.IntentResearch || intent == types.IntentSearch || intent == types.IntentExtract {
		fields.ActionObject = ObjectFallback(message)
	}

	if ext.Status == types.ExtractionOK && ext.SourceURL != "" {
		fields.SourceURL = NormalizeURL(ext.SourceURL)
	} else if url := FindURL(message); url != "" {
		fields.SourceURL = url
	} else if value, ok := resolved[types.FieldSourceURL]; ok {
		fields.SourceURL = NormalizeURL(value)
	}

	fields.Constraints = ExtractConstraintsHeuristic(message)

	if intent == types.IntentNavigate {
		fields.ActionTarget = fields.SourceURL
	}
	if intent == types.IntentCalculate {
		// The expression itself is the work item.
		fields.Constraints = message
	}

	return fields
}
