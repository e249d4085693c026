package tools

import (
	"io"
	"strings"
	"unicode"

	"github.com/mattn/go-shellwords"
	"github.com/spf13/pflag"
)

// splitArgs splits s into words with shell quoting rules. Environment
// variables and backticks are left alone. Unbalanced quotes are an error.
func splitArgs(s string) ([]string, error) {
	return shellwords.Parse(s)
}

func newFlagSet(name string, define func(*pflag.FlagSet)) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SetInterspersed(false)
	define(fs)
	return fs
}

// parseFlags parses leading flags in args and returns the positional rest.
func parseFlags(name, args string, define func(*pflag.FlagSet)) ([]string, error) {
	words, err := splitArgs(args)
	if err != nil {
		return nil, err
	}
	fs := newFlagSet(name, define)
	if err := fs.Parse(words); err != nil {
		return nil, err
	}
	return fs.Args(), nil
}

// cutFlags parses leading flags in args and returns the remainder of args
// exactly as written. Lines that do not start with a dash are returned
// untouched.
func cutFlags(name, args string, define func(*pflag.FlagSet)) (string, error) {
	rest := strings.TrimSpace(args)
	if !strings.HasPrefix(rest, "-") {
		return rest, nil
	}
	words, err := splitArgs(rest)
	if err != nil {
		return "", err
	}
	fs := newFlagSet(name, define)
	if err := fs.Parse(words); err != nil {
		return "", err
	}
	for range len(words) - len(fs.Args()) {
		if i := strings.IndexFunc(rest, unicode.IsSpace); i >= 0 {
			rest = strings.TrimLeftFunc(rest[i:], unicode.IsSpace)
		} else {
			rest = ""
		}
	}
	return rest, nil
}

// splitPair splits "a b..." on the first space.
func splitPair(args string) (string, string, bool) {
	first, rest, ok := strings.Cut(strings.TrimSpace(args), " ")
	rest = strings.TrimSpace(rest)
	if !ok || first == "" || rest == "" {
		return "", "", false
	}
	return first, rest, true
}
