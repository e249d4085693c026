package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/jeanpaul/polo/internal/memory"
	"github.com/jeanpaul/polo/internal/provider"
	"github.com/jeanpaul/polo/internal/tools"
	"github.com/jeanpaul/polo/internal/tui"
)

const maxProviderRetries = 2

// Config keys of the providers section, by provider name.
var providerKeys = map[string]string{
	provider.ProviderOpenAI: "openai",
	provider.ProviderClaude: "anthropic",
	provider.ProviderGemini: "google",
}

func newExecutor() *tools.Executor {
	return tools.NewExecutor(tools.Options{Logger: logger})
}

func shellTimeout() time.Duration {
	return time.Duration(cfg.Shell.Timeout) * time.Second
}

func openMemory(path string) *memory.Store {
	if path == "" {
		path = cfg.Memory.File
	}
	return memory.Open(afero.NewOsFs(), path, logger)
}

// modelFor returns the model to use. A bare provider name picks up the
// model configured for that provider, if any.
func modelFor(name string) (string, error) {
	prov, model, err := provider.Resolve(name)
	if err != nil {
		return "", err
	}
	if _, explicit := provider.ModelProviders[strings.ToLower(strings.TrimSpace(name))]; !explicit {
		if pc, ok := cfg.ProviderFor(providerKeys[prov]); ok && pc.Model != "" {
			return pc.Model, nil
		}
	}
	return model, nil
}

// credentialsFor returns the configured credentials of a provider.
func credentialsFor(prov string) provider.Credentials {
	pc, _ := cfg.ProviderFor(providerKeys[prov])
	return provider.Credentials{APIKey: pc.APIKey, BaseURL: pc.BaseURL}
}

func providerOptions() provider.Options {
	return provider.Options{
		OpenAI:     credentialsFor(provider.ProviderOpenAI),
		Anthropic:  credentialsFor(provider.ProviderClaude),
		Google:     credentialsFor(provider.ProviderGemini),
		MaxRetries: maxProviderRetries,
	}
}

// newGateway builds the chat gateway. An unknown model is always an error.
// A backend that cannot be built is an error when strict is set, otherwise
// it is logged and chat replies with the reason.
func newGateway(ctx context.Context, strict bool) (*provider.Gateway, error) {
	name, err := modelFor(cfg.Model)
	if err != nil {
		return nil, err
	}
	p, err := provider.New(ctx, name, providerOptions())
	if err != nil {
		if strict || !errors.Is(err, provider.ErrBackendUnavailable) {
			return nil, err
		}
		logger.Warn("language model unavailable, chat is disabled", zap.String("model", name), zap.Error(err))
		return provider.Unavailable(err, logger), nil
	}
	logger.Debug("language model ready", zap.String("provider", p.Name()), zap.String("model", p.Model()))
	return provider.NewGateway(p, logger), nil
}

// replyRenderer returns a markdown renderer when w is a terminal.
func replyRenderer(w io.Writer) func(string) string {
	f, ok := w.(*os.File)
	if !ok || !tui.IsTerminal(f) {
		return nil
	}
	r, err := tui.NewRenderer(80)
	if err != nil {
		logger.Debug("markdown rendering disabled", zap.Error(err))
		return nil
	}
	return r.Render
}

// printResult writes a tool report and turns a failure into errReported.
func printResult(w io.Writer, res tools.Result) error {
	fmt.Fprintln(w, res.String())
	if res.Failed() {
		return errReported
	}
	return nil
}
