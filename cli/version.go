package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/jig/version"
)

func newVersionCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := version.Get()
			if output == "" {
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", version.Product, info.Full())
				return err
			}
			return encode(cmd.OutOrStdout(), output, info)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output format: json or yaml (default plain text)")
	return cmd
}
