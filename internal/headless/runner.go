// Package headless runs a single exchange without the interactive shell.
package headless

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrChatFailed is returned when the backend answered with an error.
var ErrChatFailed = errors.New("chat failed")

// Chatter is satisfied by *agent.Agent.
type Chatter interface {
	Chat(ctx context.Context, input string) string
}

type Options struct {
	Out io.Writer
	// Render post-processes the reply for display, e.g. markdown styling.
	Render func(string) string
}

// Run sends prompt once and prints the reply to opts.Out.
func Run(ctx context.Context, c Chatter, prompt string, opts Options) error {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return fmt.Errorf("empty message")
	}

	reply := c.Chat(ctx, prompt)
	if err := ctx.Err(); err != nil {
		return err
	}

	if strings.HasPrefix(reply, "❌") {
		fmt.Fprintln(opts.Out, reply)
		return ErrChatFailed
	}
	if opts.Render != nil {
		reply = opts.Render(reply)
	}
	fmt.Fprintf(opts.Out, "🤖 Assistant: %s\n", reply)
	return nil
}
