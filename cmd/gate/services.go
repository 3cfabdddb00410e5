package main

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"missiongate/internal/types"
)

// consoleApprover grants approval unconditionally: in the CLI the approval
// phrase itself is the authorization, there is no second authority to ask.
type consoleApprover struct{}

func (consoleApprover) Approve(_ context.Context, _ string) (types.ApprovalOutcome, error) {
	return types.ApprovalOutcome{Success: true}, nil
}

// localExecutor carries out missions in-process. Calculations are evaluated
// for real; browser-shaped intents produce a dry-run artifact describing what
// a connected automation backend would do.
type localExecutor struct{}

func newLocalExecutor() localExecutor { return localExecutor{} }

func (e localExecutor) Execute(ctx context.Context, m types.Mission) (types.ExecutionOutcome, error) {
	if err := ctx.Err(); err != nil {
		return types.ExecutionOutcome{Err: err.Error()}, nil
	}

	var summary, content string
	switch m.Fields.Intent {
	case types.IntentCalculate:
		result, err := evalExpression(m.Fields.Constraints)
		if err != nil {
			return types.ExecutionOutcome{Err: err.Error()}, nil
		}
		summary = fmt.Sprintf("calculated %s", strings.TrimSpace(m.Fields.Constraints))
		content = result

	case types.IntentNavigate:
		summary = fmt.Sprintf("navigated to %s", m.Fields.SourceURL)
		content = fmt.Sprintf("Opened %s (dry run: no browser backend attached).", m.Fields.SourceURL)

	case types.IntentExtract, types.IntentSearch, types.IntentResearch:
		summary = fmt.Sprintf("%sed %s", strings.TrimSuffix(m.Fields.Intent, "e"), m.Fields.ActionObject)
		content = fmt.Sprintf("Would %s %q", m.Fields.Intent, m.Fields.ActionObject)
		if m.Fields.SourceURL != "" {
			content += " from " + m.Fields.SourceURL
		}
		if m.Fields.Constraints != "" {
			content += " (" + m.Fields.Constraints + ")"
		}
		content += " — dry run: no browser backend attached."

	default:
		summary = "ran " + m.Fields.Intent
	}

	return types.ExecutionOutcome{
		Success: true,
		Summary: summary,
		Artifact: types.ExecutionArtifact{
			MissionID:   m.ID,
			Summary:     summary,
			Content:     content,
			CompletedAt: time.Now().UTC(),
		},
	}, nil
}

var binaryExprPattern = regexp.MustCompile(`(-?\d+(?:\.\d+)?)\s*([-+*/%^])\s*(-?\d+(?:\.\d+)?)`)

// evalExpression finds and evaluates the single binary operation inside the
// calculate constraint, which may still carry surrounding words
// ("what is 12 + 8"). Anything richer is rejected with a usable message.
func evalExpression(expr string) (string, error) {
	m := binaryExprPattern.FindStringSubmatch(strings.TrimSpace(expr))
	if m == nil {
		return "", fmt.Errorf("cannot evaluate %q: expected a simple expression like 15 * 4", expr)
	}

	a, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return "", err
	}
	b, err := strconv.ParseFloat(m[3], 64)
	if err != nil {
		return "", err
	}

	var result float64
	switch m[2] {
	case "+":
		result = a + b
	case "-":
		result = a - b
	case "*":
		result = a * b
	case "/":
		if b == 0 {
			return "", fmt.Errorf("division by zero")
		}
		result = a / b
	case "%":
		if b == 0 {
			return "", fmt.Errorf("division by zero")
		}
		result = float64(int64(a) % int64(b))
	case "^":
		result = 1
		for i := 0; i < int(b); i++ {
			result *= a
		}
	}

	return strconv.FormatFloat(result, 'f', -1, 64), nil
}
