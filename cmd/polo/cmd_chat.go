package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeanpaul/polo/internal/agent"
	"github.com/jeanpaul/polo/internal/memory"
	"github.com/jeanpaul/polo/internal/repl"
	"github.com/jeanpaul/polo/internal/tools"
	"github.com/jeanpaul/polo/internal/tui"
	"github.com/jeanpaul/polo/pkg/version"
)

var (
	noMemory       bool
	chatMemoryFile string
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start the interactive shell",
	Long: `Starts the interactive shell.

  message          chat with the model
  !tool args       run a tool (!sh, !cat, !ls, !cp, !mv, !rm, !find, !info, ...)
  /command args    run a builtin (/help, /memory, /history, /exit, ...)`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().BoolVar(&noMemory, "no-memory", false, "Do not read or record conversation memory")
	chatCmd.Flags().StringVar(&chatMemoryFile, "memory-file", "", "Memory file path (default from config)")
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM)
	defer stop()

	// Ctrl+C must never end the shell.
	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt)
	defer signal.Stop(interrupts)

	exec := newExecutor()
	registry := tools.NewRegistry()
	tools.RegisterDefaults(registry, exec, shellTimeout())

	var mem *memory.Store
	if cfg.Memory.Enabled && !noMemory {
		mem = openMemory(chatMemoryFile)
	}

	gw, err := newGateway(ctx, false)
	if err != nil {
		return err
	}
	ag := agent.New(gw, agent.Options{
		Memory:       mem,
		ContextTurns: cfg.Memory.ContextTurns,
		Logger:       logger,
	})

	history, err := tui.LoadHistory(afero.NewOsFs(), cfg.History.File, cfg.History.MaxSize)
	if err != nil {
		logger.Warn("failed to read input history", zap.String("path", cfg.History.File), zap.Error(err))
	}

	out := cmd.OutOrStdout()
	opts := repl.Options{
		Agent:    ag,
		Tools:    registry,
		Executor: exec,
		Memory:   mem,
		History:  history,
		Out:      out,
		Signals:  interrupts,
		Version:  version.Version,
		Logger:   logger,
	}

	if tui.IsTerminal(os.Stdin) && tui.IsTerminal(os.Stdout) {
		opts.Reader = tui.NewEditorReader(os.Stdin, os.Stdout, history)
		if r, err := tui.NewRenderer(80); err == nil {
			opts.Renderer = r
		}
	} else {
		pr := tui.NewPipeReader(cmd.InOrStdin(), out, interrupts)
		defer pr.Close()
		opts.Reader = pr
	}

	logger.Debug("starting shell",
		zap.String("session", ag.Session()),
		zap.Bool("memory", mem != nil),
		zap.String("provider", ag.Provider()))
	repl.New(opts).Run(ctx)
	return nil
}
