package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"google.golang.org/genai"

	"github.com/owl-cli/owl/internal/config"
	"github.com/owl-cli/owl/internal/executor"
	"github.com/owl-cli/owl/internal/orchestrator"
	"github.com/owl-cli/owl/internal/profile"
	"github.com/owl-cli/owl/internal/provider/gemini"
	"github.com/owl-cli/owl/internal/service"
	"github.com/owl-cli/owl/internal/tools"
	"github.com/owl-cli/owl/internal/ui"
)

var (
	// Global flags
	verbose     bool
	autoApprove bool
	modelName   string

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "owl",
	Short: "owl - natural language agent for your command line",
	Long: `owl translates natural language instructions into vetted local actions.

Every proposed shell command or tool call is checked against your security
policy and confirmed with you before it runs. Failed actions are
self-corrected within a bounded number of retries.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional; environment variables win either way.
		_ = godotenv.Load()

		var err error
		cfg, err = config.NewLoader().Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if modelName != "" {
			cfg.Agent.Model = modelName
		}

		logConfig := zap.NewProductionConfig()
		if verbose {
			logConfig.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		// Keep the terminal clean: logs go to a file, not the console the
		// agent is conversing on.
		if dir := config.NewLoader().Dir(); dir != "" {
			if mkErr := os.MkdirAll(dir, 0o755); mkErr == nil {
				logConfig.OutputPaths = []string{filepath.Join(dir, "owl.log")}
				logConfig.ErrorOutputPaths = []string{filepath.Join(dir, "owl.log")}
			}
		}
		logger, err = logConfig.Build()
		if err != nil {
			return fmt.Errorf("initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// runCmd executes a single instruction and exits.
var runCmd = &cobra.Command{
	Use:   "run <instruction>",
	Short: "Execute a single natural language instruction",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := signalContext()

		agent, err := buildAgent(ctx)
		if err != nil {
			return err
		}

		instruction := strings.Join(args, " ")

		outcome, err := agent.ExecuteStep(ctx, instruction)
		if err != nil {
			return ignoreInterrupt(ctx, err)
		}
		if outcome == orchestrator.StepFailed {
			return fmt.Errorf("instruction failed")
		}
		return nil
	},
}

// agentCmd starts the interactive session.
var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Start an interactive agent session",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := signalContext()

		agent, err := buildAgent(ctx)
		if err != nil {
			return err
		}
		return ignoreInterrupt(ctx, agent.RunSession(ctx))
	},
}

// auditCmd runs the automated security audit.
var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Run an automated security audit and generate a report",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := signalContext()

		agent, err := buildAgent(ctx)
		if err != nil {
			return err
		}
		return ignoreInterrupt(ctx, agent.RunAudit(ctx))
	},
}

// serviceCmd runs the unattended background policy checker.
var serviceCmd = &cobra.Command{
	Use:   "service",
	Short: "Run the background policy check service",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := signalContext()

		registry, _, err := buildTools()
		if err != nil {
			return err
		}
		runner := service.New(registry, logger,
			time.Duration(cfg.Service.CheckIntervalSeconds)*time.Second)
		return ignoreInterrupt(ctx, runner.Run(ctx))
	},
}

// buildTools assembles the profile store and the default tool registry.
func buildTools() (*tools.Registry, *profile.Store, error) {
	store := profile.NewStore(config.NewLoader().Dir())

	exc := executor.New(executor.Options{
		MaxOutputSize:  int(cfg.Executor.MaxOutputSize),
		CommandTimeout: time.Duration(cfg.Executor.CommandTimeoutSeconds) * time.Second,
	}, logger)

	registry, err := tools.NewDefaultRegistry(tools.Deps{
		Runner:         exc,
		Profile:        store,
		SearchAPIKey:   os.Getenv("GOOGLE_API_KEY"),
		SearchEngineID: os.Getenv("PROGRAMMABLE_SEARCH_ENGINE_ID"),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("build tool registry: %w", err)
	}
	return registry, store, nil
}

// buildAgent wires the full orchestrator stack.
func buildAgent(ctx context.Context) (*orchestrator.Orchestrator, error) {
	registry, store, err := buildTools()
	if err != nil {
		return nil, err
	}

	policy, err := store.Policy()
	if err != nil {
		return nil, fmt.Errorf("load security policy: %w", err)
	}

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is not set")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("create generation client: %w", err)
	}

	exc := executor.New(executor.Options{
		MaxOutputSize:  int(cfg.Executor.MaxOutputSize),
		CommandTimeout: time.Duration(cfg.Executor.CommandTimeoutSeconds) * time.Second,
	}, logger)

	return orchestrator.New(orchestrator.Params{
		Provider:    gemini.New(gemini.NewRealGeminiClient(client), cfg.Agent.Model),
		Policy:      orchestrator.NewPolicyService(policy, registry.Scope),
		Runner:      exc,
		Tools:       registry,
		UI:          ui.NewConsole(os.Stdin, os.Stdout),
		Logger:      logger,
		AutoApprove: autoApprove,
		MaxRetries:  cfg.Agent.MaxRetries,
	}), nil
}

// ignoreInterrupt swallows the error a command returns because its context
// was cancelled by a signal, so Ctrl-C exits cleanly instead of printing
// "context canceled".
func ignoreInterrupt(ctx context.Context, err error) error {
	if err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func signalContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigs
		cancel()
	}()
	return ctx
}

func main() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&modelName, "model", "", "override the generation model")
	runCmd.Flags().BoolVarP(&autoApprove, "auto-approve", "y", false, "execute proposed actions without confirmation")
	agentCmd.Flags().BoolVarP(&autoApprove, "auto-approve", "y", false, "execute proposed actions without confirmation")

	rootCmd.AddCommand(runCmd, agentCmd, auditCmd, serviceCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
