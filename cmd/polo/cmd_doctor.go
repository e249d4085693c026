package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeanpaul/polo/internal/health"
	"github.com/jeanpaul/polo/internal/provider"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check provider connectivity and the memory file",
	Long: `Lists the models of every language model backend to verify that the
configured API keys and base URLs work, then reports on the memory file.

Exits with status 1 when the backend of the selected model is not usable.`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

// doctorClient is replaced in tests.
var doctorClient = &http.Client{Timeout: 15 * time.Second}

var doctorProviders = []string{provider.ProviderOpenAI, provider.ProviderClaude, provider.ProviderGemini}

func runDoctor(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	model, err := modelFor(cfg.Model)
	if err != nil {
		return err
	}
	active, _, _ := provider.Resolve(model)
	fmt.Fprintf(out, "🩺 Model: %s (%s)\n\n", model, active)

	checker := health.NewChecker(doctorClient)
	healthy := true
	for _, prov := range doctorProviders {
		s := checker.Check(cmd.Context(), prov, credentialsFor(prov))
		logger.Debug("provider checked",
			zap.String("provider", prov),
			zap.Bool("reachable", s.Reachable),
			zap.Duration("latency", s.Latency))

		marker := "  "
		if prov == active {
			marker = "▶ "
		}
		switch {
		case s.Reachable:
			fmt.Fprintf(out, "%s✅ %-7s %s (%dms, %d models)\n", marker, prov, s.BaseURL, s.Latency.Milliseconds(), len(s.Models))
			if prov == active && !s.HasModel(model) {
				fmt.Fprintf(out, "   ⚠️  %s is not listed by this endpoint\n", model)
			}
		case !s.Configured:
			fmt.Fprintf(out, "%s➖ %-7s %s\n", marker, prov, s.Error)
		default:
			fmt.Fprintf(out, "%s❌ %-7s %s\n", marker, prov, s.Error)
		}
		if prov == active && !s.Reachable {
			healthy = false
		}
	}

	fmt.Fprintln(out)
	if cfg.Memory.Enabled {
		store := openMemory("")
		st := store.Stats()
		fmt.Fprintf(out, "🧠 Memory: %s (%d conversations, %d bytes)\n", store.Path(), st.Total, st.FileSize)
	} else {
		fmt.Fprintln(out, "🧠 Memory: disabled")
	}

	if !healthy {
		return errReported
	}
	return nil
}
