package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/orgsync/internal/core/domain"
)

// Palette shared by all command output.
var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#A6E3A1"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F9E2AF"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F38BA8"))
)

// row is one line of a listing: a key column followed by free text.
type row struct {
	Key  string
	Text string
}

func printTitle(cmd *cobra.Command, format string, args ...any) {
	cmd.Println(titleStyle.Render(fmt.Sprintf(format, args...)))
}

func printSuccess(cmd *cobra.Command, format string, args ...any) {
	cmd.Println(successStyle.Render(fmt.Sprintf(format, args...)))
}

func printWarning(cmd *cobra.Command, format string, args ...any) {
	cmd.Println(warningStyle.Render(fmt.Sprintf(format, args...)))
}

// printRows prints rows under a heading with the key column aligned.
// An empty listing prints the empty message instead.
func printRows(cmd *cobra.Command, heading string, rows []row, empty string) {
	cmd.Println(titleStyle.Render(fmt.Sprintf("%s (%d)", heading, len(rows))))
	if len(rows) == 0 {
		cmd.Println("  " + mutedStyle.Render(empty))
		return
	}

	width := 0
	for _, r := range rows {
		width = max(width, len(r.Key))
	}
	for _, r := range rows {
		cmd.Printf("  %-*s  %s\n", width, r.Key, r.Text)
	}
}

// formatError renders err with its details on a second line.
func formatError(err error) string {
	var b strings.Builder
	b.WriteString(errorStyle.Render("Error: " + err.Error()))
	if details := domain.Details(err); details != "" {
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render(details))
	}
	return b.String()
}

// PrintError writes a styled error to the root command's error stream.
func PrintError(err error) {
	rootCmd.PrintErrln(formatError(err))
}

func userRows(users []domain.User) []row {
	rows := make([]row, 0, len(users))
	for _, u := range users {
		text := u.DisplayName
		if text == "" || text == u.UserName {
			text = ""
		} else {
			text = mutedStyle.Render(text)
		}
		rows = append(rows, row{Key: u.UserName, Text: text})
	}
	return rows
}

func teamRows(teams []domain.Team) []row {
	rows := make([]row, 0, len(teams))
	for _, t := range teams {
		text := t.Description
		if t.IsCustom() {
			text = strings.TrimSpace(text + " " + mutedStyle.Render("(custom)"))
		}
		rows = append(rows, row{Key: t.TeamName, Text: text})
	}
	return rows
}

func repositoryRows(repos []domain.Repository) []row {
	rows := make([]row, 0, len(repos))
	for _, r := range repos {
		text := ""
		if r.DefaultBranch != "" {
			text = mutedStyle.Render(r.DefaultBranch)
		}
		rows = append(rows, row{Key: r.FullName, Text: text})
	}
	return rows
}
