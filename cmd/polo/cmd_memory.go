package main

import (
	"bufio"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/jeanpaul/polo/internal/memory"
)

var (
	memoryFile   string
	showRecent   int
	clearConfirm bool
	searchLimit  int
)

var memoryCmd = &cobra.Command{
	Use:   "memory",
	Short: "Inspect and manage conversation memory",
}

var memoryShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the most recent conversations",
	Args:  cobra.NoArgs,
	RunE:  runMemoryShow,
}

var memoryClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every stored conversation",
	Args:  cobra.NoArgs,
	RunE:  runMemoryClear,
}

var memoryExportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Export memory to a .json or .yaml file",
	Args:  cobra.ExactArgs(1),
	RunE:  runMemoryExport,
}

var memoryImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Merge conversations from a .json or .yaml file",
	Args:  cobra.ExactArgs(1),
	RunE:  runMemoryImport,
}

var memorySearchCmd = &cobra.Command{
	Use:   "search <keyword>",
	Short: "Search stored conversations",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runMemorySearch,
}

func init() {
	memoryCmd.PersistentFlags().StringVarP(&memoryFile, "file", "f", "", "Memory file path (default from config)")
	memoryShowCmd.Flags().IntVarP(&showRecent, "recent", "r", 10, "Number of conversations to show")
	memoryClearCmd.Flags().BoolVar(&clearConfirm, "confirm", false, "Do not ask for confirmation")
	memorySearchCmd.Flags().IntVarP(&searchLimit, "limit", "l", 10, "Maximum results")

	memoryCmd.AddCommand(memoryShowCmd, memoryClearCmd, memoryExportCmd, memoryImportCmd, memorySearchCmd)
}

func truncateText(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}

func printConversations(cmd *cobra.Command, convs []memory.Conversation) {
	w := cmd.OutOrStdout()
	for i, c := range convs {
		ts := c.Timestamp
		if len(ts) > 19 {
			ts = ts[:19]
		}
		fmt.Fprintf(w, "%d. [%s]\n", i+1, strings.Replace(ts, "T", " ", 1))
		fmt.Fprintf(w, "   User: %s\n", truncateText(c.User, 100))
		fmt.Fprintf(w, "   Assistant: %s\n\n", truncateText(c.Assistant, 100))
	}
}

func runMemoryShow(cmd *cobra.Command, args []string) error {
	convs := openMemory(memoryFile).RecentConversations(showRecent)
	if len(convs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No conversations stored yet")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "📚 Last %d conversation(s):\n%s\n", len(convs), strings.Repeat("-", 50))
	printConversations(cmd, convs)
	return nil
}

func runMemoryClear(cmd *cobra.Command, args []string) error {
	if !clearConfirm {
		fmt.Fprint(cmd.OutOrStdout(), "⚠️  Delete all stored conversations? (y/N): ")
		answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
		default:
			fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
			return nil
		}
	}
	if err := openMemory(memoryFile).Clear(); err != nil {
		return fmt.Errorf("clear memory: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "✅ Memory cleared")
	return nil
}

func runMemoryExport(cmd *cobra.Command, args []string) error {
	if err := openMemory(memoryFile).Export(args[0]); err != nil {
		return fmt.Errorf("export memory: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✅ Memory exported to: %s\n", args[0])
	return nil
}

func runMemoryImport(cmd *cobra.Command, args []string) error {
	n, err := openMemory(memoryFile).Import(args[0])
	if err != nil {
		return fmt.Errorf("import memory: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✅ Imported %d new conversation(s) from %s\n", n, args[0])
	return nil
}

func runMemorySearch(cmd *cobra.Command, args []string) error {
	keyword := strings.Join(args, " ")
	found := openMemory(memoryFile).Search(keyword, searchLimit)
	if len(found) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "🔍 No conversations match %q\n", keyword)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "🔍 %d conversation(s) match %q:\n", len(found), keyword)
	printConversations(cmd, found)
	return nil
}
