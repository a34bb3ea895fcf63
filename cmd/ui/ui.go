// Package ui provides the small set of color and layout helpers the CLI
// commands share, grounded on the same lipgloss styling pkg/graph's
// renderer already uses for its lane colors.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Icons used in command output.
const (
	IconCommit  = "●"
	IconAuthor  = "👤"
	IconBranch  = "⎇"
	IconCheck   = "✔"
	IconDeleted = "✘"
)

var (
	greenStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF87"))
	yellowStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700"))
	cyanStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00D7FF"))
	blueStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#5FD7FF"))
	redStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F5F"))
	magentaStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#AF87FF"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFD700"))
)

func Green(s string) string   { return greenStyle.Render(s) }
func Yellow(s string) string  { return yellowStyle.Render(s) }
func Cyan(s string) string    { return cyanStyle.Render(s) }
func Blue(s string) string    { return blueStyle.Render(s) }
func Red(s string) string     { return redStyle.Render(s) }
func Magenta(s string) string { return magentaStyle.Render(s) }

// Header renders a bold bannered section title, padded with "=" on both
// sides the way the commit history and graph commands title their output.
func Header(title string) string {
	bar := strings.Repeat("=", 10)
	return headerStyle.Render(fmt.Sprintf("%s%s%s", bar, title, bar))
}

// CommitInfo is the subset of a commit's fields the detailed log view
// renders.
type CommitInfo struct {
	Hash    string
	Author  string
	Date    string
	Message string
}

// FormatCommitDetailed renders one commit's multi-line detailed entry.
func FormatCommitDetailed(info CommitInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", Yellow(IconCommit), Yellow(info.Hash))
	fmt.Fprintf(&b, "%s %s\n", IconAuthor, info.Author)
	fmt.Fprintf(&b, "Date:   %s\n", Magenta(info.Date))
	fmt.Fprintln(&b)
	for _, line := range strings.Split(info.Message, "\n") {
		fmt.Fprintf(&b, "    %s\n", line)
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatCommitSeparator renders the blank line between detailed log entries.
func FormatCommitSeparator() string {
	return ""
}
