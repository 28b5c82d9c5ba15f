// ABOUTME: review subcommand launching the interactive follow-up queue
// ABOUTME: Requires a terminal on stdout; logs are discarded while the screen is up
package cli

import (
	"errors"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/harperreed/outreach/tui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var errNotTerminal = errors.New("review needs an interactive terminal; use `outreach followups list` instead")

func newReviewCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "review",
		Short: "Work through due follow-ups interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !term.IsTerminal(int(os.Stdout.Fd())) {
				return errNotTerminal
			}

			a, err := openApp(cmd.Context(), opts, io.Discard)
			if err != nil {
				return err
			}
			defer a.Close()

			p := tea.NewProgram(tui.NewModel(cmd.Context(), a.svc), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			_, err = p.Run()
			return err
		},
	}
}
