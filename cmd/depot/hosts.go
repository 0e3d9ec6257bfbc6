// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// newHostsCommand creates the `depot hosts` command.
func newHostsCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "hosts",
		Short: "List the configured hosts in selection order",
		Long: `List the configured hosts in the order they are consulted: priority
ascending, then id. Disabled hosts are never contacted. Untrusted hosts only
serve the groups listed in their index.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := app.openSession(cmd.Context())
			if err != nil {
				return app.fail(err)
			}
			hosts := s.cache.Hosts()
			if len(hosts) == 0 {
				fmt.Fprintln(app.stdout, SubtitleStyle.Render("(no hosts configured)"))
				return nil
			}

			rows := [][]string{{"ID", "PRIORITY", "HOST", "LAYOUT", "FLAGS"}}
			for _, h := range hosts {
				var flags []string
				if h.Enabled() {
					flags = append(flags, "enabled")
				} else {
					flags = append(flags, "disabled")
				}
				if h.Trusted() {
					flags = append(flags, "trusted")
				}
				rows = append(rows, []string{
					h.ID(),
					strconv.Itoa(h.Priority()),
					h.Directive().Host,
					h.Layout().ID(),
					strings.Join(flags, ","),
				})
			}
			writeTable(app, rows)
			return nil
		},
	}
}

// writeTable prints rows as aligned columns. The first row is the header.
func writeTable(app *App, rows [][]string) {
	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}
	for r, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			style := cellStyle.Width(widths[i] + cellStyle.GetPaddingRight())
			if r == 0 {
				style = style.Foreground(colorMuted)
			}
			cells[i] = style.Render(cell)
		}
		fmt.Fprintln(app.stdout, strings.TrimRight(lipgloss.JoinHorizontal(lipgloss.Top, cells...), " "))
	}
}
