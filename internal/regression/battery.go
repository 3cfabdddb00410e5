// Package regression provides a YAML-defined conversation battery: scripted
// multi-turn scenarios replayed against the readiness gate to catch behavior
// drift. Each scenario runs in its own session; scenarios run concurrently,
// steps within a scenario stay ordered.
package regression

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"missiongate/internal/logging"
	"missiongate/internal/mission"
)

// Processor replays one message into one session. *mission.Coordinator
// satisfies this.
type Processor interface {
	ProcessMessage(ctx context.Context, sessionID, message string) mission.Response
}

// Battery is a versioned collection of conversation scenarios.
type Battery struct {
	Version   int        `yaml:"version"`
	Scenarios []Scenario `yaml:"scenarios"`
}

// Scenario is one scripted conversation. Steps run in order against a fresh
// session.
type Scenario struct {
	ID          string `yaml:"id"`
	Description string `yaml:"description,omitempty"`
	Steps       []Step `yaml:"steps"`
}

// Step is one user message plus the expectations on the gate's response.
type Step struct {
	Message string      `yaml:"message"`
	Expect  Expectation `yaml:"expect"`
}

// Expectation constrains a response. Empty fields are not checked.
type Expectation struct {
	Decision    string   `yaml:"decision,omitempty"` // READY, INCOMPLETE, ...
	Kind        string   `yaml:"kind,omitempty"`     // proposal, clarification, ...
	Contains    []string `yaml:"contains,omitempty"`
	NotContains []string `yaml:"not_contains,omitempty"`
}

// Result captures one scenario's outcome.
type Result struct {
	ScenarioID string
	Success    bool
	Failures   []string // one entry per violated expectation
	DurationMs int64
}

// LoadBattery reads a YAML battery file from disk.
func LoadBattery(path string) (*Battery, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var b Battery
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to parse battery YAML: %w", err)
	}
	for i, s := range b.Scenarios {
		if s.ID == "" {
			return nil, fmt.Errorf("scenario %d has no id", i)
		}
		if len(s.Steps) == 0 {
			return nil, fmt.Errorf("scenario %q has no steps", s.ID)
		}
	}
	return &b, nil
}

// RunBattery replays every scenario against the processor. Scenarios run
// concurrently, which also exercises cross-session isolation; each gets a
// unique session id so reruns never inherit state.
func RunBattery(ctx context.Context, b *Battery, proc Processor) ([]Result, error) {
	if b == nil || len(b.Scenarios) == 0 {
		return nil, nil
	}

	results := make([]Result, len(b.Scenarios))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)

	for i, scenario := range b.Scenarios {
		i, scenario := i, scenario
		g.Go(func() error {
			res := runScenario(gctx, scenario, proc)
			mu.Lock()
			results[i] = res
			mu.Unlock()
			return gctx.Err()
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func runScenario(ctx context.Context, scenario Scenario, proc Processor) Result {
	log := logging.Get(logging.CategoryRegression)
	start := time.Now()

	sessionID := fmt.Sprintf("regress-%s-%d", scenario.ID, start.UnixNano())
	res := Result{ScenarioID: scenario.ID, Success: true}

	for stepIdx, step := range scenario.Steps {
		if ctx.Err() != nil {
			res.Success = false
			res.Failures = append(res.Failures, fmt.Sprintf("step %d: %v", stepIdx+1, ctx.Err()))
			break
		}

		resp := proc.ProcessMessage(ctx, sessionID, step.Message)
		for _, failure := range checkStep(step, resp) {
			res.Success = false
			res.Failures = append(res.Failures, fmt.Sprintf("step %d (%q): %s", stepIdx+1, step.Message, failure))
		}
	}

	res.DurationMs = time.Since(start).Milliseconds()
	if res.Success {
		log.Debug("scenario %s passed in %dms", scenario.ID, res.DurationMs)
	} else {
		log.Warn("scenario %s failed: %s", scenario.ID, strings.Join(res.Failures, "; "))
	}
	return res
}

func checkStep(step Step, resp mission.Response) []string {
	var failures []string
	expect := step.Expect

	if expect.Decision != "" && string(resp.Decision) != expect.Decision {
		failures = append(failures, fmt.Sprintf("decision = %s, want %s", resp.Decision, expect.Decision))
	}
	if expect.Kind != "" && string(resp.Kind) != expect.Kind {
		failures = append(failures, fmt.Sprintf("kind = %s, want %s", resp.Kind, expect.Kind))
	}
	lower := strings.ToLower(resp.Text)
	for _, want := range expect.Contains {
		if !strings.Contains(lower, strings.ToLower(want)) {
			failures = append(failures, fmt.Sprintf("response missing %q", want))
		}
	}
	for _, unwanted := range expect.NotContains {
		if strings.Contains(lower, strings.ToLower(unwanted)) {
			failures = append(failures, fmt.Sprintf("response must not contain %q", unwanted))
		}
	}
	return failures
}

// Summarize renders battery results as a short report.
func Summarize(results []Result) string {
	var b strings.Builder
	passed := 0
	for _, r := range results {
		if r.Success {
			passed++
			fmt.Fprintf(&b, "PASS %s (%dms)\n", r.ScenarioID, r.DurationMs)
			continue
		}
		fmt.Fprintf(&b, "FAIL %s (%dms)\n", r.ScenarioID, r.DurationMs)
		for _, f := range r.Failures {
			fmt.Fprintf(&b, "     %s\n", f)
		}
	}
	fmt.Fprintf(&b, "%d/%d scenarios passed\n", passed, len(results))
	return b.String()
}

// DefaultBatteryPath returns the canonical battery path for a workspace.
func DefaultBatteryPath(workspace string) string {
	return filepath.Join(workspace, ".gate", "regression", "battery.yaml")
}
