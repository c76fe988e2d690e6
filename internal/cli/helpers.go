package cli

import (
	"bufio"
	"context"
	"errors"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/logicalx/logicalx/internal/daemon"
	"github.com/logicalx/logicalx/internal/domain"
)

// newLineScanner creates a line scanner from a reader.
func newLineScanner(r io.Reader) *bufio.Scanner {
	return bufio.NewScanner(r)
}

// openDaemon wires the services against the loaded configuration.
// Callers must Close the result.
func openDaemon(ctx context.Context) (*daemon.Daemon, error) {
	return daemon.NewWithConfig(ctx, config, logger)
}

// ─── Styles ─────────────────────────────────────────────────────────────────

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	goodStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#04B575"))
	badStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF5F87"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#808080"))
	codeStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB86C"))
)

// describeError turns domain errors into a hint the player can act on.
func describeError(err error) string {
	switch {
	case errors.Is(err, domain.ErrUpgradeRequired):
		return "this tier needs a Pro plan (see 'logicalx plans', then 'logicalx subscribe pro_monthly')"
	case errors.Is(err, domain.ErrNotAuthenticated):
		return "you are signed out (run 'logicalx login')"
	case errors.Is(err, domain.ErrPuzzleUnavailable):
		return "could not load a puzzle: " + err.Error()
	default:
		return err.Error()
	}
}
