package provider

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

const (
	ProviderOpenAI = "openai"
	ProviderClaude = "claude"
	ProviderGemini = "gemini"
)

// ModelProviders maps every supported model name to its provider.
var ModelProviders = map[string]string{
	"gpt-3.5-turbo": ProviderOpenAI,
	"gpt-4":         ProviderOpenAI,
	"gpt-4o":        ProviderOpenAI,

	"claude-2.1":        ProviderClaude,
	"claude-3-sonnet":   ProviderClaude,
	"claude-3.5-sonnet": ProviderClaude,

	"gemini-pro":       ProviderGemini,
	"gemini-1.5-flash": ProviderGemini,
	"gemini-2.0-flash": ProviderGemini,
	"gemini-2.5-flash": ProviderGemini,
	"gemini-2.5-pro":   ProviderGemini,
}

// DefaultModels is used when only a provider name is given.
var DefaultModels = map[string]string{
	ProviderOpenAI: "gpt-3.5-turbo",
	ProviderClaude: "claude-3.5-sonnet",
	ProviderGemini: "gemini-2.5-flash",
}

var providerAliases = map[string]string{
	"anthropic": ProviderClaude,
	"google":    ProviderGemini,
}

// Anthropic's API wants dated or "-latest" identifiers.
var anthropicModelIDs = map[string]string{
	"claude-3-sonnet":   "claude-3-sonnet-20240229",
	"claude-3.5-sonnet": "claude-3-5-sonnet-latest",
}

// KnownModels lists the model table in sorted order.
func KnownModels() []string {
	out := make([]string, 0, len(ModelProviders))
	for m := range ModelProviders {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// Resolve maps a model or provider name to (provider, model).
func Resolve(name string) (string, string, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if p, ok := ModelProviders[n]; ok {
		return p, n, nil
	}
	if alias, ok := providerAliases[n]; ok {
		n = alias
	}
	if m, ok := DefaultModels[n]; ok {
		return n, m, nil
	}
	return "", "", fmt.Errorf("%w %q (models: %s; providers: openai, claude, gemini)",
		ErrUnknownModel, name, strings.Join(KnownModels(), ", "))
}

type Credentials struct {
	APIKey  string
	BaseURL string
}

type Options struct {
	OpenAI    Credentials
	Anthropic Credentials
	Google    Credentials
	// MaxRetries > 0 wraps the backend with WithRetry.
	MaxRetries int
}

// New builds the backend for a model or provider name. Unknown names yield
// ErrUnknownModel; a missing API key yields ErrBackendUnavailable.
func New(ctx context.Context, name string, opts Options) (Provider, error) {
	prov, model, err := Resolve(name)
	if err != nil {
		return nil, err
	}

	var p Provider
	switch prov {
	case ProviderOpenAI:
		c := opts.OpenAI
		custom := c.BaseURL != "" && strings.TrimRight(c.BaseURL, "/") != DefaultOpenAIBaseURL
		if c.APIKey == "" && !custom {
			return nil, fmt.Errorf("%w: openai: OPENAI_API_KEY is not set", ErrBackendUnavailable)
		}
		p = NewOpenAI(c.BaseURL, c.APIKey, model)
	case ProviderClaude:
		c := opts.Anthropic
		if c.APIKey == "" {
			return nil, fmt.Errorf("%w: claude: ANTHROPIC_API_KEY is not set", ErrBackendUnavailable)
		}
		id := model
		if mapped, ok := anthropicModelIDs[model]; ok {
			id = mapped
		}
		p = NewAnthropic(c.APIKey, c.BaseURL, id)
	case ProviderGemini:
		c := opts.Google
		if c.APIKey == "" {
			return nil, fmt.Errorf("%w: gemini: GOOGLE_API_KEY is not set", ErrBackendUnavailable)
		}
		g, err := NewGemini(ctx, c.APIKey, c.BaseURL, model)
		if err != nil {
			return nil, fmt.Errorf("%w: gemini: %v", ErrBackendUnavailable, err)
		}
		p = g
	}

	if opts.MaxRetries > 0 {
		p = WithRetry(p, opts.MaxRetries)
	}
	return p, nil
}
