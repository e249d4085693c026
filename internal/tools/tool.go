package tools

import (
	"context"
	"fmt"
)

// ErrorKind classifies a failed tool call.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindNotFound
	KindNotAFile
	KindNotADirectory
	KindPermissionDenied
	KindEncoding
	KindTimeout
	KindIsDirectory
	KindInvalidArgument
	KindMetricsUnavailable
	KindIO
)

var kindNames = [...]string{
	KindNone:               "none",
	KindNotFound:           "not_found",
	KindNotAFile:           "not_a_file",
	KindNotADirectory:      "not_a_directory",
	KindPermissionDenied:   "permission_denied",
	KindEncoding:           "encoding_error",
	KindTimeout:            "timeout",
	KindIsDirectory:        "is_directory",
	KindInvalidArgument:    "invalid_argument",
	KindMetricsUnavailable: "metrics_unavailable",
	KindIO:                 "io_error",
}

func (k ErrorKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Result is the report of one tool call. Tools never return Go errors to
// the caller; failures are described by Error and Kind.
type Result struct {
	Output string
	Error  string
	Kind   ErrorKind
}

func (r Result) Failed() bool { return r.Error != "" }

// String renders the report for the terminal.
func (r Result) String() string {
	if r.Error == "" {
		return r.Output
	}
	if r.Output == "" {
		return "❌ " + r.Error
	}
	return r.Output + "\n❌ " + r.Error
}

func failure(kind ErrorKind, format string, args ...any) Result {
	return Result{Error: fmt.Sprintf(format, args...), Kind: kind}
}

// Tool is a command reachable from the "!" prefix in the REPL.
type Tool interface {
	Name() string
	Aliases() []string
	Usage() string
	Description() string
	Execute(ctx context.Context, args string) Result
}
