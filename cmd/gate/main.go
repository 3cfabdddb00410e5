package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose   bool
	workspace string
	timeout   time.Duration

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "gate",
	Short: "missiongate - readiness-gated mission assistant",
	Long: `missiongate turns conversational requests into approved, executed missions.

Every message is gated for readiness before anything runs: incomplete or
ambiguous requests get a targeted clarifying question, complete ones become
a mission draft that executes only after explicit approval.

Run without arguments to start the interactive chat interface.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// The interactive REPL owns its own output; keep zap out of its way.
		if cmd.Use == "gate" && cmd.CalledAs() == "gate" {
			return nil
		}

		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractiveChat()
	},
}

// runCmd processes a single message and exits
var runCmd = &cobra.Command{
	Use:   "run [message]",
	Short: "Gate a single message and print the response",
	Long: `Processes one message through the readiness gate and prints the
response. Useful for scripting; approval phrases work the same way, so

  gate run "Navigate to github.com" && gate run "yes"

will not execute anything because each invocation is a fresh session.
Use the interactive mode for the full lifecycle.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSingle,
}

// missionsCmd dumps the persisted mission log
var missionsCmd = &cobra.Command{
	Use:   "missions",
	Short: "List missions reconstructed from the event log",
	Long: `Replays the append-only mission event log and prints the current
state of every mission, last write wins per mission id.`,
	RunE: showMissions,
}

// regressCmd replays the YAML regression battery
var regressCmd = &cobra.Command{
	Use:   "regress [battery.yaml]",
	Short: "Run the conversation regression battery",
	Long: `Replays scripted conversation scenarios against the gate and checks
decisions, response kinds, and response text. Defaults to
.gate/regression/battery.yaml under the workspace.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRegression,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the missiongate version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("missiongate 0.3.0")
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "Workspace directory (default: current)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "Operation timeout")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(missionsCmd)
	rootCmd.AddCommand(regressCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func resolveWorkspace() (string, error) {
	if workspace != "" {
		return workspace, nil
	}
	return os.Getwd()
}
