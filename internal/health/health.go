// Package health checks the configured chat backends without sending a
// chat request.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/jeanpaul/polo/internal/provider"
)

const (
	DefaultAnthropicBaseURL = "https://api.anthropic.com"
	DefaultGoogleBaseURL    = "https://generativelanguage.googleapis.com"
	anthropicVersion        = "2023-06-01"
	defaultTimeout          = 10 * time.Second
)

type Status struct {
	Provider   string
	BaseURL    string
	Configured bool
	Reachable  bool
	Models     []string
	Error      string
	Latency    time.Duration
}

// HasModel reports whether model is listed. An endpoint that lists nothing
// is assumed to serve it.
func (s Status) HasModel(model string) bool {
	return len(s.Models) == 0 || slices.Contains(s.Models, model)
}

type Checker struct {
	client  *http.Client
	timeout time.Duration
}

func NewChecker(client *http.Client) *Checker {
	if client == nil {
		client = http.DefaultClient
	}
	return &Checker{client: client, timeout: defaultTimeout}
}

// Check lists the models of one backend. prov is a provider name as
// returned by provider.Resolve.
func (c *Checker) Check(ctx context.Context, prov string, creds provider.Credentials) Status {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	var s Status
	switch prov {
	case provider.ProviderOpenAI:
		s = c.checkOpenAI(ctx, creds)
	case provider.ProviderClaude:
		s = c.checkAnthropic(ctx, creds)
	case provider.ProviderGemini:
		s = c.checkGoogle(ctx, creds)
	default:
		s.Error = fmt.Sprintf("unknown provider: %s", prov)
	}
	s.Provider = prov
	s.Latency = time.Since(start)
	return s
}

func baseOr(url, def string) string {
	if url == "" {
		url = def
	}
	return strings.TrimRight(url, "/")
}

func (c *Checker) checkOpenAI(ctx context.Context, creds provider.Credentials) Status {
	s := Status{BaseURL: baseOr(creds.BaseURL, provider.DefaultOpenAIBaseURL)}
	s.Configured = creds.APIKey != "" || s.BaseURL != provider.DefaultOpenAIBaseURL
	if !s.Configured {
		s.Error = "no API key configured (set OPENAI_API_KEY)"
		return s
	}
	headers := map[string]string{}
	if creds.APIKey != "" {
		headers["Authorization"] = "Bearer " + creds.APIKey
	}

	var body struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := c.get(ctx, s.BaseURL+"/models", headers, &body); err != nil {
		s.Error = err.Error()
		return s
	}
	s.Reachable = true
	for _, m := range body.Data {
		s.Models = append(s.Models, m.ID)
	}
	return s
}

func (c *Checker) checkAnthropic(ctx context.Context, creds provider.Credentials) Status {
	s := Status{BaseURL: baseOr(creds.BaseURL, DefaultAnthropicBaseURL)}
	if creds.APIKey == "" {
		s.Error = "no API key configured (set ANTHROPIC_API_KEY)"
		return s
	}
	s.Configured = true

	var body struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	err := c.get(ctx, s.BaseURL+"/v1/models", map[string]string{
		"x-api-key":         creds.APIKey,
		"anthropic-version": anthropicVersion,
	}, &body)
	if err != nil {
		s.Error = err.Error()
		return s
	}
	s.Reachable = true
	for _, m := range body.Data {
		s.Models = append(s.Models, m.ID)
	}
	return s
}

func (c *Checker) checkGoogle(ctx context.Context, creds provider.Credentials) Status {
	s := Status{BaseURL: baseOr(creds.BaseURL, DefaultGoogleBaseURL)}
	if creds.APIKey == "" {
		s.Error = "no API key configured (set GOOGLE_API_KEY)"
		return s
	}
	s.Configured = true

	var body struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	err := c.get(ctx, s.BaseURL+"/v1beta/models?pageSize=100", map[string]string{
		"x-goog-api-key": creds.APIKey,
	}, &body)
	if err != nil {
		s.Error = err.Error()
		return s
	}
	s.Reachable = true
	for _, m := range body.Models {
		s.Models = append(s.Models, strings.TrimPrefix(m.Name, "models/"))
	}
	return s
}

func (c *Checker) get(ctx context.Context, url string, headers map[string]string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("cannot reach %s: %s", req.URL.Host, friendlyError(err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("authentication failed, check your API key")
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("endpoint returned HTTP %d", resp.StatusCode)
	}
	// Some compatible servers answer with a non-standard body; being
	// reachable is enough.
	_ = json.NewDecoder(resp.Body).Decode(out)
	return nil
}

func friendlyError(err error) string {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "connection refused"):
		return "connection refused (is the service running?)"
	case strings.Contains(msg, "no such host"):
		return "host not found (check the URL)"
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded"):
		return "connection timed out"
	}
	return msg
}
