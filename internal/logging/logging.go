// Package logging configures log/slog for the binaries.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// ParseLevel accepts debug, info, warn or error in any case.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("invalid -log-level %q: %w", s, err)
	}
	return l, nil
}

// New returns a text logger on w tagged with the package attribute.
func New(w io.Writer, level slog.Level, pkg string) *slog.Logger {
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(h).With("package", pkg)
}

// Setup installs a stderr text handler at the given level as the default
// logger and returns a logger for pkg.
func Setup(level, pkg string) (*slog.Logger, error) {
	l, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})))
	return slog.Default().With("package", pkg), nil
}
