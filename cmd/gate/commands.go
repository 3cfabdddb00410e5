package main

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"missiongate/cmd/gate/ui"
	"missiongate/internal/regression"
	"missiongate/internal/store"
	"missiongate/internal/types"
)

// runSingle gates one message in a throwaway session.
func runSingle(cmd *cobra.Command, args []string) error {
	a, err := buildApp(true)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	message := strings.Join(args, " ")
	resp := a.coordinator.ProcessMessage(ctx, uuid.NewString(), message)

	styles := ui.DefaultStyles()
	fmt.Println(styles.Badge.Render(string(resp.Kind)))
	printResponse(styles, resp)
	return nil
}

// showMissions replays the event log and prints every mission's current state.
func showMissions(cmd *cobra.Command, args []string) error {
	a, err := buildApp(false)
	if err != nil {
		return err
	}
	defer a.close()

	log, err := store.NewMissionLog(a.databasePath())
	if err != nil {
		return fmt.Errorf("failed to open mission log under %s: %w", a.workspace, err)
	}
	defer log.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	missions, err := log.Replay(ctx)
	if err != nil {
		return err
	}
	if len(missions) == 0 {
		fmt.Println("No missions recorded.")
		return nil
	}

	// Oldest first for a stable, readable listing.
	ordered := make([]types.Mission, 0, len(missions))
	for _, m := range missions {
		ordered = append(ordered, m)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].ID < ordered[j].ID
		}
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})

	styles := ui.DefaultStyles()
	for _, m := range ordered {
		status := styles.Muted.Render(string(m.Status))
		switch m.Status {
		case types.MissionExecuted:
			status = styles.Success.Render(string(m.Status))
		case types.MissionFailed:
			status = styles.Error.Render(string(m.Status))
		}
		fmt.Printf("%s  %s  %s", m.CreatedAt.Format("2006-01-02 15:04:05"), status, m.Fields.Intent)
		if m.Fields.ActionObject != "" {
			fmt.Printf("  %s", m.Fields.ActionObject)
		}
		if m.Fields.SourceURL != "" {
			fmt.Printf("  %s", m.Fields.SourceURL)
		}
		fmt.Printf("  (%s)\n", m.ID)
	}
	return nil
}

// runRegression replays the YAML battery against a fresh gate.
func runRegression(cmd *cobra.Command, args []string) error {
	a, err := buildApp(false)
	if err != nil {
		return err
	}
	defer a.close()

	path := regression.DefaultBatteryPath(a.workspace)
	if len(args) == 1 {
		path = args[0]
	}

	battery, err := regression.LoadBattery(path)
	if err != nil {
		return fmt.Errorf("failed to load battery %s: %w", path, err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	results, err := regression.RunBattery(ctx, battery, a.coordinator)
	if err != nil {
		return err
	}

	fmt.Print(regression.Summarize(results))
	for _, r := range results {
		if !r.Success {
			return fmt.Errorf("regression battery failed")
		}
	}
	return nil
}
