package mission

import (
	"fmt"
	"strings"

	"missiongate/internal/types"
)

// renderProposal states the mission draft and asks for explicit approval.
// Nothing executes until the user says so.
func renderProposal(mission types.Mission) string {
	var b strings.Builder
	b.WriteString("Mission proposed:\n")
	fmt.Fprintf(&b, "  Intent: %s\n", mission.Fields.Intent)
	if mission.Fields.ActionObject != "" {
		fmt.Fprintf(&b, "  Object: %s\n", mission.Fields.ActionObject)
	}
	if mission.Fields.SourceURL != "" {
		fmt.Fprintf(&b, "  Source: %s\n", mission.Fields.SourceURL)
	}
	if mission.Fields.ActionTarget != "" && mission.Fields.ActionTarget != mission.Fields.SourceURL {
		fmt.Fprintf(&b, "  Target: %s\n", mission.Fields.ActionTarget)
	}
	if mission.Fields.Constraints != "" {
		fmt.Fprintf(&b, "  Constraints: %s\n", mission.Fields.Constraints)
	}
	b.WriteString("Approve to run it (\"yes\", \"go ahead\", \"do it\").")
	return b.String()
}

func renderExecutionResult(result types.ExecutionOutcome) string {
	if result.Summary != "" {
		return "Done. " + result.Summary
	}
	return "Done."
}

func renderExecutionFailure(reason string) string {
	if reason == "" {
		reason = "unknown error"
	}
	return fmt.Sprintf("Execution failed: %s. The mission is still pending; approve again to retry.", reason)
}

func renderApprovalFailure(reason string) string {
	if reason == "" {
		reason = "approval was not granted"
	}
	return fmt.Sprintf("Could not approve the mission: %s.", reason)
}

func renderNothingToApprove() string {
	return "There is no mission awaiting approval. Tell me what you'd like to do."
}

func renderArtifactAnswer(artifact types.ExecutionArtifact) string {
	var b strings.Builder
	b.WriteString("From the last run")
	if artifact.Summary != "" {
		b.WriteString(" (" + artifact.Summary + ")")
	}
	b.WriteString(":\n")
	if artifact.Content != "" {
		b.WriteString(artifact.Content)
	} else {
		b.WriteString("No detailed results were recorded.")
	}
	return b.String()
}

func renderCapabilities() string {
	return strings.Join([]string{
		"I can help with browser and research tasks:",
		"  - navigate: open a website (\"Navigate to github.com\")",
		"  - extract: pull data from a page (\"Extract emails from example.com\")",
		"  - search: find things on a site (\"Search for jobs on linkedin.com\")",
		"  - research: gather information on a topic",
		"  - calculate: evaluate an expression (\"Calculate 15 * 4\")",
		"  - repeat: run the previous mission again",
		"Each mission is proposed first and runs only after you approve it.",
	}, "\n")
}

func renderQuestionFallback() string {
	return "That reads as a general question rather than a task. I propose and run missions: try \"help\" to see what I can do."
}

func renderInternalError() string {
	return "Something went wrong preparing that mission. Please rephrase your request."
}
