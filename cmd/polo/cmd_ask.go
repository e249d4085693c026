package main

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeanpaul/polo/internal/agent"
	"github.com/jeanpaul/polo/internal/headless"
	"github.com/jeanpaul/polo/internal/memory"
)

var useContext bool

var askCmd = &cobra.Command{
	Use:   "ask [message...]",
	Short: "Ask the model a single question",
	Long: `Sends one message to the configured model and prints the reply.

With --context the most recent stored conversations are sent along and the
exchange is added to memory.`,
	Example: `  polo ask "how do I list open ports on linux?"
  polo ask --context what did we talk about last time`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVarP(&useContext, "context", "c", false, "Use and record conversation memory")
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	gw, err := newGateway(ctx, true)
	if err != nil {
		return err
	}

	var mem *memory.Store
	if useContext {
		mem = openMemory("")
	}
	ag := agent.New(gw, agent.Options{
		Memory:       mem,
		ContextTurns: cfg.Memory.ContextTurns,
		Logger:       logger,
	})

	err = headless.Run(ctx, ag, strings.Join(args, " "), headless.Options{
		Out:    cmd.OutOrStdout(),
		Render: replyRenderer(cmd.OutOrStdout()),
	})
	if errors.Is(err, headless.ErrChatFailed) {
		return errReported
	}
	return err
}
