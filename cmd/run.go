// File: cmd/run.go
package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/krishna-dhulipalla/Autonomous-Web-UI-Multi-Agent/internal/actions"
	"github.com/krishna-dhulipalla/Autonomous-Web-UI-Multi-Agent/internal/agent"
	"github.com/krishna-dhulipalla/Autonomous-Web-UI-Multi-Agent/internal/artifacts"
	"github.com/krishna-dhulipalla/Autonomous-Web-UI-Multi-Agent/internal/browser"
	"github.com/krishna-dhulipalla/Autonomous-Web-UI-Multi-Agent/internal/config"
	"github.com/krishna-dhulipalla/Autonomous-Web-UI-Multi-Agent/internal/executor"
	"github.com/krishna-dhulipalla/Autonomous-Web-UI-Multi-Agent/internal/llmclient"
	"github.com/krishna-dhulipalla/Autonomous-Web-UI-Multi-Agent/internal/observability"
	"github.com/krishna-dhulipalla/Autonomous-Web-UI-Multi-Agent/internal/rank"
	"github.com/krishna-dhulipalla/Autonomous-Web-UI-Multi-Agent/internal/vision"
)

// newRunCmd creates and configures the `run` command.
func newRunCmd() *cobra.Command {
	var startURL string

	runCmd := &cobra.Command{
		Use:   "run \"goal\"",
		Short: "Runs the agent loop against a page until the goal is reached",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			// Bind flags to their viper keys so command-line values override
			// the config file and environment with the right precedence.
			if err := viper.BindPFlag("agent.max_steps", cmd.Flags().Lookup("max-steps")); err != nil {
				return err
			}
			if err := viper.BindPFlag("browser.headless", cmd.Flags().Lookup("headless")); err != nil {
				return err
			}
			if err := viper.BindPFlag("run.output_dir", cmd.Flags().Lookup("output")); err != nil {
				return err
			}
			if err := viper.BindPFlag("run.annotate", cmd.Flags().Lookup("annotate")); err != nil {
				return err
			}
			return viper.BindPFlag("run.export_dataset", cmd.Flags().Lookup("export-dataset"))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()
			goal := args[0]

			// Re-resolve the config now that run flags are bound.
			cfg, err := config.NewConfigFromViper(viper.GetViper())
			if err != nil {
				return err
			}
			appCfg = cfg

			if !strings.HasPrefix(startURL, "http://") && !strings.HasPrefix(startURL, "https://") {
				startURL = "https://" + startURL
			}

			logger.Info("Starting run",
				zap.String("goal", goal),
				zap.String("url", startURL),
				zap.Int("max_steps", cfg.Agent.MaxSteps),
			)

			session, err := browser.NewSession(ctx, cfg, logger)
			if err != nil {
				return fmt.Errorf("failed to start browser: %w", err)
			}
			defer session.Close()

			client, err := llmclient.NewClient(ctx, cfg.LLM, logger)
			if err != nil {
				return err
			}

			store, err := artifacts.NewStore(cfg.Run, goal, logger)
			if err != nil {
				return fmt.Errorf("failed to prepare run artifacts: %w", err)
			}

			catalog := browser.NewCatalog(cfg.Agent.Catalog, logger)
			exec := executor.New(cfg.Agent, logger)
			scorer := rank.NewScorer(cfg.Agent.Scoring)
			ranker := rank.NewRanker(cfg.Agent.Ranker, scorer, store, logger)

			ag, err := agent.New(cfg, agent.Options{
				Browser:   agent.NewSessionBrowser(session, catalog),
				Runner:    agent.NewSessionRunner(session, exec),
				Planner:   llmclient.NewNavigator(client, logger),
				Proposer:  llmclient.NewOperator(client, logger),
				Ranker:    ranker,
				Validator: actions.NewValidator(logger),
				Detector:  vision.NewChangeDetector(logger),
				Recorder:  store,
				RunID:     store.RunID(),
			}, logger)
			if err != nil {
				return err
			}

			summary, err := ag.Run(ctx, goal, startURL)
			if err != nil {
				return err
			}

			printSummary(cmd, summary, store.RunDir())
			return nil
		},
	}

	runCmd.Flags().StringVarP(&startURL, "url", "u", "", "start URL for the run (required)")
	runCmd.Flags().Int("max-steps", 15, "maximum number of loop steps before giving up")
	runCmd.Flags().Bool("headless", true, "run the browser headless")
	runCmd.Flags().StringP("output", "o", "out", "directory for run artifacts")
	runCmd.Flags().Bool("annotate", true, "save screenshots annotated with candidate boxes")
	runCmd.Flags().Bool("export-dataset", true, "mirror step artifacts into the dataset directory")
	_ = runCmd.MarkFlagRequired("url")

	return runCmd
}

func printSummary(cmd *cobra.Command, summary *agent.RunSummary, runDir string) {
	out := cmd.OutOrStdout()
	status := "gave up"
	if summary.Completed {
		status = "completed"
	}
	fmt.Fprintf(out, "\nRun %s: %s after %d step(s) (%s)\n",
		summary.RunID, status, summary.Steps, summary.Reason)
	if summary.FinalURL != "" {
		fmt.Fprintf(out, "Final URL: %s\n", summary.FinalURL)
	}
	for _, line := range summary.History {
		fmt.Fprintf(out, "  %s\n", line)
	}
	fmt.Fprintf(out, "Artifacts: %s\n", runDir)
}
