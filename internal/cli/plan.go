package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/shaiso/Outreach/internal/client"
	"github.com/shaiso/Outreach/internal/engine"
)

// NewPlanCmd — показать, когда уйдёт каждое письмо, ничего не планируя.
func NewPlanCmd(clientFn func() *client.Client, outputFn func(*cobra.Command) *Output) *cobra.Command {
	var file string
	var remote bool

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show computed send times for every ColdEmail node",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn(cmd)

			g, err := readGraph(cmd, file)
			if err != nil {
				return err
			}

			var rows []client.DispatchResponse
			if remote {
				rows, err = clientFn().Plan(cmd.Context(), g)
				if err != nil {
					return err
				}
			} else {
				dispatches, err := engine.NewPlanner().Plan(g)
				if err != nil {
					return err
				}
				rows = make([]client.DispatchResponse, len(dispatches))
				for i, d := range dispatches {
					rows[i] = client.DispatchResponse{
						NodeID:     d.NodeID,
						Email:      d.Request.Email,
						Subject:    d.Request.Subject,
						Time:       d.Request.Time,
						Overridden: d.Overridden,
					}
				}
			}

			table := make([][]string, len(rows))
			for i, d := range rows {
				table[i] = []string{d.NodeID, d.Email, d.Subject, d.Time, strconv.FormatBool(d.Overridden)}
			}
			out.Print([]string{"NODE", "EMAIL", "SUBJECT", "SEND AT", "OVERRIDE"}, table, rows)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Graph JSON file ({nodes, edges}); - for stdin")
	cmd.Flags().BoolVar(&remote, "remote", false, "Ask the API instead of planning locally")
	cmd.MarkFlagRequired("file")

	return cmd
}
