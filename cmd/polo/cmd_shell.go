package main

import (
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var shellTimeoutSecs int

var shellCmd = &cobra.Command{
	Use:   "shell [command...]",
	Short: "Run a shell command",
	Long: `Runs a command through the system shell and reports its output,
exit code and duration. Flags after the command are passed to it.`,
	Example: `  polo shell ls -la
  polo shell -t 5 sleep 10`,
	Args: cobra.MinimumNArgs(1),
	RunE: runShell,
}

func init() {
	shellCmd.Flags().IntVarP(&shellTimeoutSecs, "timeout", "t", 0, "Timeout in seconds (default from config)")
	shellCmd.Flags().SetInterspersed(false)
}

func runShell(cmd *cobra.Command, args []string) error {
	timeout := shellTimeout()
	if shellTimeoutSecs > 0 {
		timeout = time.Duration(shellTimeoutSecs) * time.Second
	}
	res := newExecutor().ExecuteShell(cmd.Context(), strings.Join(args, " "), timeout, "")
	return printResult(cmd.OutOrStdout(), res)
}
