// ABOUTME: Follow-up tracking CLI commands
// ABOUTME: Lists emails due for a follow-up and runs the reminder sweep
package cli

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/harperreed/outreach/models"
	"github.com/spf13/cobra"
)

func newFollowUpsCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "followups",
		Aliases: []string{"fu"},
		Short:   "Follow-up queue",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List emails due for a follow-up, soonest first",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				a, err := openApp(cmd.Context(), opts, cmd.ErrOrStderr())
				if err != nil {
					return err
				}
				defer a.Close()

				due, err := a.svc.ListDue(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to get follow-up list: %w", err)
				}
				printFollowUps(cmd.OutOrStdout(), due, time.Now().UTC())
				return nil
			},
		},
		&cobra.Command{
			Use:   "remind",
			Short: "Create reminder notifications for due follow-ups",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				a, err := openApp(cmd.Context(), opts, cmd.ErrOrStderr())
				if err != nil {
					return err
				}
				defer a.Close()

				result, err := a.svc.SweepReminders(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Processed %d due emails, created %d reminders\n", result.Processed, result.NotificationsCreated)
				return nil
			},
		},
	)
	return cmd
}

func printFollowUps(w io.Writer, due []models.EmailWithRefs, now time.Time) {
	if len(due) == 0 {
		fmt.Fprintln(w, "No follow-ups due.")
		return
	}
	rows := make([][]string, 0, len(due))
	for _, e := range due {
		rows = append(rows, []string{
			overdueIndicator(e.FollowUpDate, now),
			e.ContactName.String,
			e.CompanyName.String,
			e.Subject,
			e.SentAt.Format("2006-01-02"),
			e.FollowUpDate.Format("2006-01-02"),
			strconv.Itoa(e.FollowUpCount),
		})
	}
	printTable(w, []string{"", "CONTACT", "COMPANY", "SUBJECT", "SENT", "DUE", "SENT FOLLOW-UPS"}, rows)
}

// overdueIndicator grades how late a follow-up is.
func overdueIndicator(due *time.Time, now time.Time) string {
	if due == nil {
		return ""
	}
	late := now.Sub(*due)
	switch {
	case late > 7*24*time.Hour:
		return "🔴"
	case late > 2*24*time.Hour:
		return "🟡"
	default:
		return "🟢"
	}
}
