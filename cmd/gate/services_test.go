package main

import (
	"context"
	"strings"
	"testing"

	"missiongate/internal/types"
)

func TestEvalExpression(t *testing.T) {
	tests := []struct {
		expr    string
		want    string
		wantErr bool
	}{
		{"15 * 4", "60", false},
		{"what is 12 + 8", "20", false},
		{"10 / 4", "2.5", false},
		{"7 - 9", "-2", false},
		{"10 % 3", "1", false},
		{"2 ^ 10", "1024", false},
		{"1 / 0", "", true},
		{"no math here", "", true},
	}

	for _, tt := range tests {
		got, err := evalExpression(tt.expr)
		if tt.wantErr {
			if err == nil {
				t.Errorf("evalExpression(%q) = %q, want error", tt.expr, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("evalExpression(%q): %v", tt.expr, err)
			continue
		}
		if got != tt.want {
			t.Errorf("evalExpression(%q) = %q, want %q", tt.expr, got, tt.want)
		}
	}
}

func TestLocalExecutorCalculate(t *testing.T) {
	out, err := localExecutor{}.Execute(context.Background(), types.Mission{
		ID:     "m1",
		Fields: types.MissionFields{Intent: types.IntentCalculate, Constraints: "calculate 15 * 4"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !out.Success {
		t.Fatalf("execution failed: %s", out.Err)
	}
	if out.Artifact.Content != "60" {
		t.Errorf("Content = %q, want 60", out.Artifact.Content)
	}
}

func TestLocalExecutorNavigateDryRun(t *testing.T) {
	out, err := localExecutor{}.Execute(context.Background(), types.Mission{
		ID:     "m2",
		Fields: types.MissionFields{Intent: types.IntentNavigate, SourceURL: "https://github.com"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !out.Success {
		t.Fatalf("execution failed: %s", out.Err)
	}
	if !strings.Contains(out.Summary, "github.com") {
		t.Errorf("Summary = %q, want the target named", out.Summary)
	}
	if out.Artifact.MissionID != "m2" {
		t.Errorf("Artifact.MissionID = %q", out.Artifact.MissionID)
	}
}

func TestLocalExecutorCalculateBadExpression(t *testing.T) {
	out, err := localExecutor{}.Execute(context.Background(), types.Mission{
		ID:     "m3",
		Fields: types.MissionFields{Intent: types.IntentCalculate, Constraints: "the meaning of life"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if out.Success {
		t.Error("nonsense expression executed successfully")
	}
	if out.Err == "" {
		t.Error("failure carries no reason")
	}
}
