package gate

import (
	"missiongate/internal/types"
)

// intentRule carries the required-field check for one intent as a pure
// function. Unknown intents fall through to a missing "intent" field so the
// gate never guesses.
type intentRule func(message string, view types.ContextView) []string

var intentRules = map[string]intentRule{
	types.IntentNavigate: func(message string, _ types.ContextView) []string {
		if FindURL(message) != "" {
			return nil
		}
		return []string{types.FieldSourceURL}
	},

	types.IntentExtract: func(message string, _ types.ContextView) []string {
		var missing []string
		if !HasObjectSignal(message) {
			missing = append(missing, types.FieldActionObject)
		}
		if FindURL(message) == "" {
			missing = append(missing, types.FieldSourceURL)
		}
		return missing
	},

	types.IntentSearch: func(message string, _ types.ContextView) []string {
		var missing []string
		if !HasObjectSignal(message) {
			missing = append(missing, types.FieldActionObject)
		}
		if FindURL(message) == "" {
			missing = append(missing, types.FieldSourceURL)
		}
		return missing
	},

	types.IntentResearch: func(message string, _ types.ContextView) []string {
		if HasObjectSignal(message) {
			return nil
		}
		return []string{types.FieldActionObject}
	},

	types.IntentCalculate: func(message string, _ types.ContextView) []string {
		if HasMathSignal(message) {
			return nil
		}
		return []string{types.FieldConstraints}
	},

	types.IntentRepeat: func(_ string, view types.ContextView) []string {
		if _, ok := view.LastReadyMission(); ok {
			return nil
		}
		return []string{types.FieldPriorMission}
	},
}

// missingFieldsFor applies the intent's rule, treating unrecognized intents
// as missing the intent itself.
func missingFieldsFor(intent, message string, view types.ContextView) []string {
	rule, ok := intentRules[intent]
	if !ok {
		return []string{types.FieldIntent}
	}
	return rule(message, view)
}

// RequiredFields lists what a READY result must carry for an intent. Used by
// the coordinator as a defense-in-depth assertion before creating a mission.
func RequiredFields(intent string) []string {
	switch intent {
	case types.IntentNavigate:
		return []string{types.FieldSourceURL}
	case types.IntentExtract, types.IntentSearch:
		return []string{types.FieldActionObject, types.FieldSourceURL}
	case types.IntentResearch:
		return []string{types.FieldActionObject}
	case types.IntentCalculate:
		return []string{types.FieldConstraints}
	case types.IntentRepeat:
		return nil // fields are copied wholesale from the prior mission
	default:
		return []string{types.FieldIntent}
	}
}
