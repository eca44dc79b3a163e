package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/shaiso/Outreach/internal/client"
	"github.com/shaiso/Outreach/internal/domain"
	"github.com/shaiso/Outreach/internal/orchestrator"
	"github.com/shaiso/Outreach/internal/telemetry"
)

// saveResult — итог запуска для вывода.
type saveResult struct {
	State           domain.SaveState   `json:"state"`
	Persisted       bool               `json:"persisted"`
	EmailsScheduled int                `json:"emails_scheduled"`
	History         []domain.SaveState `json:"history"`
	Error           string             `json:"error,omitempty"`
}

// NewSaveCmd — сохранить граф и запланировать все его письма.
func NewSaveCmd(clientFn func() *client.Client, outputFn func(*cobra.Command) *Output) *cobra.Command {
	var file string
	var verbose bool

	cmd := &cobra.Command{
		Use:   "save",
		Short: "Save a flow graph and schedule its emails",
		Long: `Sends the graph to /save-flow, then posts one /schedule-email request
per ColdEmail node in graph order. Stops at the first failure.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn(cmd)

			g, err := readGraph(cmd, file)
			if err != nil {
				return err
			}

			c := clientFn()
			var history []domain.SaveState
			orch := orchestrator.New(orchestrator.Config{
				Saver:     c,
				Scheduler: c,
				Logger:    telemetry.NewLogger(cmd.ErrOrStderr()),
				OnTransition: func(from, to domain.SaveState) {
					history = append(history, to)
					if verbose {
						out.Info("%s -> %s", from, to)
					}
				},
			})

			outcome := orch.RunSave(cmd.Context(), g)

			result := saveResult{
				State:           outcome.State,
				Persisted:       outcome.Persisted,
				EmailsScheduled: outcome.EmailsScheduled,
				History:         history,
			}
			if outcome.Err != nil {
				result.Error = outcome.Err.Error()
			}

			out.Print(
				[]string{"STATE", "PERSISTED", "SCHEDULED", "ERROR"},
				[][]string{{
					string(result.State),
					strconv.FormatBool(result.Persisted),
					strconv.Itoa(result.EmailsScheduled),
					result.Error,
				}},
				result,
			)

			// Сообщение коллаборатора уже выведено; ненулевой код выхода для скриптов
			return outcome.Err
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Graph JSON file ({nodes, edges}); - for stdin")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print state transitions")
	cmd.MarkFlagRequired("file")

	return cmd
}
