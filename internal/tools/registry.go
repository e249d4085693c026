package tools

import (
	"context"
	"strings"
	"time"
)

// Registry maps tool names and their aliases to tools, keeping
// registration order for help output.
type Registry struct {
	tools   map[string]Tool
	order   []string
	aliases map[string]string
}

func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool), aliases: make(map[string]string)}
}

func (r *Registry) Register(t Tool) {
	name := strings.ToLower(t.Name())
	if _, exists := r.tools[name]; !exists {
		r.order = append(r.order, name)
	}
	r.tools[name] = t
	r.aliases[name] = name
	for _, a := range t.Aliases() {
		r.aliases[strings.ToLower(a)] = name
	}
}

// Resolve maps a name or alias to the canonical tool name.
func (r *Registry) Resolve(alias string) (string, bool) {
	name, ok := r.aliases[strings.ToLower(alias)]
	return name, ok
}

func (r *Registry) Get(alias string) (Tool, bool) {
	name, ok := r.Resolve(alias)
	if !ok {
		return nil, false
	}
	return r.tools[name], true
}

// Aliases returns a copy of the alias table, canonical names included.
func (r *Registry) Aliases() map[string]string {
	out := make(map[string]string, len(r.aliases))
	for k, v := range r.aliases {
		out[k] = v
	}
	return out
}

// Tools returns the registered tools in registration order.
func (r *Registry) Tools() []Tool {
	out := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}
	return out
}

func (r *Registry) Execute(ctx context.Context, alias, args string) Result {
	t, ok := r.Get(alias)
	if !ok {
		return failure(KindInvalidArgument, "unknown tool: %s", alias)
	}
	return t.Execute(ctx, args)
}

// RegisterDefaults registers every built-in tool against e.
func RegisterDefaults(r *Registry, e *Executor, shellTimeout time.Duration) {
	r.Register(&ShellTool{Exec: e, Timeout: shellTimeout})
	r.Register(&ReadTool{Exec: e})
	r.Register(&WriteTool{Exec: e})
	r.Register(&ListTool{Exec: e})
	r.Register(&FindTool{Exec: e})
	r.Register(&CopyTool{Exec: e})
	r.Register(&MoveTool{Exec: e})
	r.Register(&DeleteTool{Exec: e})
	r.Register(&InfoTool{Exec: e})
}
