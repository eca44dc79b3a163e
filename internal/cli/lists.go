package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/shaiso/Outreach/internal/client"
	"github.com/shaiso/Outreach/internal/domain"
)

// NewListsCmd создаёт группу команд для списков лидов.
func NewListsCmd(clientFn func() *client.Client, outputFn func(*cobra.Command) *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lists",
		Short: "Manage lead lists",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List lead lists",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				lists, err := clientFn().ListLists(cmd.Context())
				if err != nil {
					return err
				}
				printLists(outputFn(cmd), lists)
				return nil
			},
		},
		&cobra.Command{
			Use:   "create NAME",
			Short: "Create a lead list",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				out := outputFn(cmd)

				list, err := clientFn().CreateList(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				out.Info("List created: %s", list.ID)
				printLists(out, []domain.LeadList{*list})
				return nil
			},
		},
	)

	return cmd
}

func printLists(out *Output, lists []domain.LeadList) {
	rows := make([][]string, len(lists))
	for i, l := range lists {
		rows[i] = []string{l.ID.String(), l.Name, l.CreatedAt.Format(time.RFC3339)}
	}
	out.Print([]string{"ID", "NAME", "CREATED"}, rows, lists)
}
