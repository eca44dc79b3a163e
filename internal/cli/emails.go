package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/shaiso/Outreach/internal/client"
)

// NewEmailsCmd создаёт группу команд для запланированных писем.
func NewEmailsCmd(clientFn func() *client.Client, outputFn func(*cobra.Command) *Output) *cobra.Command {
	var status string
	var limit int

	list := &cobra.Command{
		Use:   "list",
		Short: "List scheduled emails",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			emails, err := clientFn().ListEmails(cmd.Context(), client.ListEmailsOpts{
				Status: status,
				Limit:  limit,
			})
			if err != nil {
				return err
			}

			rows := make([][]string, len(emails))
			for i, e := range emails {
				rows[i] = []string{e.ID, e.Email, e.Subject, e.SendAt, e.Status, strconv.Itoa(e.Attempts), e.Error}
			}
			outputFn(cmd).Print(
				[]string{"ID", "EMAIL", "SUBJECT", "SEND AT", "STATUS", "ATTEMPTS", "ERROR"},
				rows,
				emails,
			)
			return nil
		},
	}
	list.Flags().StringVar(&status, "status", "", "Filter by status (PENDING, QUEUED, SENT, FAILED)")
	list.Flags().IntVar(&limit, "limit", 0, "Maximum number of emails")

	cmd := &cobra.Command{
		Use:   "emails",
		Short: "Inspect scheduled emails",
	}
	cmd.AddCommand(list)
	return cmd
}
