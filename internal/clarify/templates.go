package clarify

import (
	"fmt"
	"strings"

	"missiongate/internal/types"
)

// Render produces the user-facing question for a clarification request.
// One fixed template per type; regression batteries assert on these strings,
// so wording changes are behavior changes.
func Render(req types.ClarificationRequest) string {
	switch req.Type {
	case types.ClarifyMissingObject:
		intent := req.Intent
		if intent == "" {
			intent = "extract"
		}
		return fmt.Sprintf("What should I %s? Tell me which data you're after (emails, prices, links, ...).", intent)

	case types.ClarifyMissingTarget:
		return "Which site should I use?" + renderOptions(req.Options)

	case types.ClarifyMissingTargetNoContext:
		return "Which site should I work on? Please give me a URL or a domain."

	case types.ClarifyAmbiguousReference:
		return "I remember more than one - which one did you mean?" + renderOptions(req.Options)

	case types.ClarifyMultiIntent:
		if len(req.Options) >= 2 {
			return fmt.Sprintf("That looks like more than one task (%s and %s). Which should I do first?", req.Options[0], req.Options[1])
		}
		return "That looks like more than one task. Which should I do first?"

	case types.ClarifyTooVague:
		return "I need a bit more detail to set that up. What exactly should I do?"

	case types.ClarifyIntentAmbiguous:
		if len(req.Options) >= 2 {
			return fmt.Sprintf("Did you want me to %s or %s?", req.Options[0], req.Options[1])
		}
		return "I'm not sure what you want me to do - could you rephrase that?"

	case types.ClarifyConstraintUnclear:
		return "What exactly should I calculate? Give me the numbers or the expression."

	default:
		return "Could you give me a bit more detail?"
	}
}

func renderOptions(options []string) string {
	if len(options) == 0 {
		return ""
	}
	var b strings.Builder
	for i, opt := range options {
		fmt.Fprintf(&b, "\n  %d. %s", i+1, opt)
	}
	return b.String()
}
