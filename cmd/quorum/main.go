// Command quorum runs multi-agent deliberation sessions: a configured
// council of LLM members elects a leader, works through a phase graph of
// discussion rounds and formal motions, and leaves a complete artifact
// trail on disk.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"quorum/internal/config"
	"quorum/internal/council"
	"quorum/internal/logging"
	"quorum/internal/memory"
	"quorum/internal/perception"
	"quorum/internal/session"
)

var (
	flagConfig           string
	flagPrompt           string
	flagApproveExecution bool
	flagOutputType       string
	flagDebug            bool
	flagCredentials      bool
)

func main() {
	root := &cobra.Command{
		Use:           "quorum",
		Short:         "Council deliberation engine",
		Long:          "quorum runs structured multi-agent deliberation sessions over a configured council of LLM members.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&flagConfig, "config", "c", "council.yaml", "path to the council config (YAML or JSON)")
	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable categorized debug logs under <rootDir>/logs/")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run one deliberation session",
		RunE:  runSession,
	}
	runCmd.Flags().StringVarP(&flagPrompt, "prompt", "p", "", "the question or task for the council (required)")
	runCmd.Flags().BoolVar(&flagApproveExecution, "approve-execution", false, "pre-approve the execution handoff")
	runCmd.Flags().StringVar(&flagOutputType, "output-type", "", "override the configured output type (none|documentation)")
	_ = runCmd.MarkFlagRequired("prompt")

	onboardCmd := &cobra.Command{
		Use:   "onboard",
		Short: "Validate the config and seed member memory directories",
		RunE:  runOnboard,
	}
	onboardCmd.Flags().BoolVar(&flagCredentials, "credentials", false, "also check provider API keys in the environment")

	root.AddCommand(runCmd, onboardCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", flagConfig, err)
	}
	return cfg, nil
}

func runSession(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if flagOutputType != "" {
		if flagOutputType != config.OutputNone && flagOutputType != config.OutputDocumentation {
			return fmt.Errorf("invalid --output-type %q", flagOutputType)
		}
		cfg.Output.Type = flagOutputType
	}

	if err := logging.Initialize(cfg.Storage.RootDir, flagDebug); err != nil {
		return err
	}
	defer logging.Shutdown()

	ctx := context.Background()
	orch, err := session.New(ctx, cfg)
	if err != nil {
		return err
	}
	res, err := orch.Run(ctx, flagPrompt, flagApproveExecution)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Session %s complete (ended by %s).\n", res.SessionID, res.EndedBy)
	fmt.Fprintf(out, "Leader: %s\n", res.LeaderID)
	if res.StopReason != "" {
		fmt.Fprintf(out, "Stop reason: %s\n", res.StopReason)
	}
	fmt.Fprintf(out, "Resolution: %s\n", res.FinalResolution)
	fmt.Fprintf(out, "Artifacts: %s\n", res.SessionDir)
	if res.DocumentationApproved != nil {
		fmt.Fprintf(out, "Documentation approved: %v (%s)\n", *res.DocumentationApproved, res.DocumentationPath)
	}
	if res.HandoffPath != "" {
		fmt.Fprintf(out, "Execution handoff: %s\n", res.HandoffPath)
	}
	return nil
}

func runOnboard(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := logging.Initialize(cfg.Storage.RootDir, flagDebug); err != nil {
		return err
	}
	defer logging.Shutdown()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Config OK: council %q with %d members and %d phases.\n",
		cfg.CouncilName, len(cfg.Members), len(cfg.Phases))

	store := memory.NewStore(cfg.Storage.MemoryDir, council.SystemClock{})
	for _, m := range cfg.Members {
		if err := store.EnsureMember(m); err != nil {
			return fmt.Errorf("seed memory for %s: %w", m.ID, err)
		}
	}
	fmt.Fprintf(out, "Memory seeded under %s.\n", cfg.Storage.MemoryDir)

	if flagCredentials {
		missing := 0
		for _, m := range cfg.Members {
			if !perception.CredentialsPresent(m.Model) {
				fmt.Fprintf(out, "MISSING credentials for member %s (provider %s)\n", m.ID, m.Model.Provider)
				missing++
			}
		}
		if missing > 0 {
			return fmt.Errorf("%d member(s) lack provider credentials", missing)
		}
		fmt.Fprintln(out, "Provider credentials present for all members.")
	}
	return nil
}
