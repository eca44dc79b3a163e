package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shaiso/Outreach/internal/client"
	"github.com/shaiso/Outreach/internal/domain"
)

// NewFlowCmd создаёт группу команд для сохранённых графов.
func NewFlowCmd(clientFn func() *client.Client, outputFn func(*cobra.Command) *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flow",
		Short: "Inspect saved flows",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show [ID]",
		Short: "Show nodes of a saved flow",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := domain.DefaultFlowID
			if len(args) == 1 {
				id = args[0]
			}

			flow, err := clientFn().GetFlow(cmd.Context(), id)
			if err != nil {
				return err
			}

			rows := make([][]string, len(flow.Graph.Nodes))
			for i, n := range flow.Graph.Nodes {
				rows[i] = []string{n.ID, string(n.Kind), nodeSummary(n)}
			}
			outputFn(cmd).Print([]string{"NODE", "TYPE", "DETAILS"}, rows, flow)
			return nil
		},
	})

	return cmd
}

// nodeSummary — одна строка о содержимом узла.
func nodeSummary(n domain.Node) string {
	switch n.Kind {
	case domain.KindLeadSource:
		return n.Data.SelectedList
	case domain.KindWait:
		if n.Data.EffectiveWaitType() == domain.WaitTypeSpecific {
			return n.Data.SpecificDate + " " + n.Data.SpecificTime
		}
		return fmt.Sprintf("%d day(s)", n.Data.DelayDays())
	case domain.KindColdEmail:
		return n.Data.RecipientEmail + " / " + n.Data.Subject
	default:
		return ""
	}
}
