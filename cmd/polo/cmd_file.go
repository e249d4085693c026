package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeanpaul/polo/internal/tui"
)

var (
	readLines    int
	readEncoding string
	writeAppend  bool
	listAll      bool
	listLong     bool
)

var fileCmd = &cobra.Command{
	Use:   "file",
	Short: "File operations",
}

var fileReadCmd = &cobra.Command{
	Use:   "read <path>",
	Short: "Print a file (text, PDF or XLSX)",
	Args:  cobra.ExactArgs(1),
	RunE:  runFileRead,
}

var fileWriteCmd = &cobra.Command{
	Use:   "write <path> [content...]",
	Short: "Write text to a file, from stdin when no content is given",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runFileWrite,
}

var fileListCmd = &cobra.Command{
	Use:   "list [path]",
	Short: "List a directory",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runFileList,
}

func init() {
	fileReadCmd.Flags().IntVarP(&readLines, "lines", "n", 0, "Show at most this many lines")
	fileReadCmd.Flags().StringVarP(&readEncoding, "encoding", "e", "utf-8", "Text encoding")
	fileWriteCmd.Flags().BoolVarP(&writeAppend, "append", "a", false, "Append instead of overwrite")
	fileListCmd.Flags().BoolVarP(&listAll, "all", "a", false, "Show hidden entries")
	fileListCmd.Flags().BoolVarP(&listLong, "long", "l", false, "Show permissions")

	fileCmd.AddCommand(fileReadCmd, fileWriteCmd, fileListCmd)
}

func runFileRead(cmd *cobra.Command, args []string) error {
	res := newExecutor().ReadFile(args[0], readLines, readEncoding)
	return printResult(cmd.OutOrStdout(), res)
}

func runFileWrite(cmd *cobra.Command, args []string) error {
	content := strings.Join(args[1:], " ")
	if content == "" {
		in := cmd.InOrStdin()
		if f, ok := in.(*os.File); ok && tui.IsTerminal(f) {
			fmt.Fprintln(cmd.ErrOrStderr(), "Enter the content, finish with Ctrl+D:")
		}
		data, err := io.ReadAll(in)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		content = string(data)
	}
	res := newExecutor().WriteFile(args[0], content, writeAppend, "utf-8")
	return printResult(cmd.OutOrStdout(), res)
}

func runFileList(cmd *cobra.Command, args []string) error {
	path := "."
	if len(args) == 1 {
		path = args[0]
	}
	res := newExecutor().ListDirectory(path, listAll, listLong)
	return printResult(cmd.OutOrStdout(), res)
}
