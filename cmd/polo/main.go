package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeanpaul/polo/internal/config"
	"github.com/jeanpaul/polo/internal/logging"
	"github.com/jeanpaul/polo/pkg/version"
)

var (
	// Global flags
	debug      bool
	configPath string
	modelName  string

	cfg    *config.Config
	logger *zap.Logger
)

// errReported marks a failure whose message was already printed.
var errReported = errors.New("command failed")

var rootCmd = &cobra.Command{
	Use:   "polo",
	Short: "polo - an AI assistant shell for the command line",
	Long: `polo is a command-line AI assistant.

It chats with OpenAI, Anthropic or Gemini models, runs shell commands and
file operations, and remembers past conversations in a JSON file that is
fed back to the model as context.

Run without arguments to start the interactive shell.`,
	Version:       version.String(),
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadDotEnv(); err != nil {
			return fmt.Errorf("load .env: %w", err)
		}
		c, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if modelName != "" {
			c.Model = modelName
		}
		if debug {
			c.Debug = true
		}
		cfg = c

		logger, err = logging.New(cfg.Debug)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger.Debug("configuration loaded",
			zap.String("model", cfg.Model),
			zap.Bool("memory", cfg.Memory.Enabled),
			zap.String("memory_file", cfg.Memory.File))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintf(cmd.OutOrStdout(), "🤖 polo %s\n", version.Version)
		fmt.Fprintln(cmd.OutOrStdout(), "Starting the interactive shell, use --help to see all commands")
		return runChat(cmd, args)
	},
}

func init() {
	rootCmd.SetVersionTemplate("polo {{.Version}}\n")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: ./config.yaml or ~/.config/polo/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&modelName, "model", "m", "", "Model or provider name (e.g. gpt-4o, claude, gemini-2.5-pro)")

	rootCmd.AddCommand(askCmd, chatCmd, shellCmd, fileCmd, memoryCmd, doctorCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		}
		os.Exit(1)
	}
}
