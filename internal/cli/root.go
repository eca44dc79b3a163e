package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/shaiso/Outreach/internal/client"
)

// NewRootCmd собирает корневую команду outreach.
func NewRootCmd(version string) *cobra.Command {
	var apiURL string
	var jsonOutput bool

	root := &cobra.Command{
		Use:           "outreach",
		Short:         "Outreach CLI — plan and schedule cold-email campaigns",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	defaultURL := os.Getenv("API_URL")
	if defaultURL == "" {
		defaultURL = client.DefaultBaseURL
	}

	root.PersistentFlags().StringVar(&apiURL, "api-url", defaultURL, "API base URL (env API_URL)")
	root.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	clientFn := func() *client.Client { return client.NewClient(apiURL) }
	outputFn := func(cmd *cobra.Command) *Output { return NewOutput(cmd, jsonOutput) }

	root.AddCommand(
		NewSaveCmd(clientFn, outputFn),
		NewPlanCmd(clientFn, outputFn),
		NewListsCmd(clientFn, outputFn),
		NewEmailsCmd(clientFn, outputFn),
		NewFlowCmd(clientFn, outputFn),
	)

	return root
}
