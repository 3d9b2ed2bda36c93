package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kbukum/jig/errors"
	"github.com/kbukum/jig/version"
)

// NewRootCommand builds the jig command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "jig",
		Short: "HTTP task participant for workflow engines",
		Long: `jig hands a work item to an HTTP service, stores the reply on the work
item and signals the engine to move on.

Get started:
  jig run --config jig.yml                 Run the configured process once
  jig run --workitem item.json -o yaml     Start from a work item file
  jig version                              Print build information`,
		Version:       version.Full(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.CompletionOptions.DisableDefaultCmd = true

	root.AddCommand(newRunCommand())
	root.AddCommand(newVersionCommand())
	return root
}

// Execute runs the root command and exits non-zero on failure. Errors are
// printed to stderr as a JSON error response.
func Execute() {
	root := NewRootCommand()
	if err := root.Execute(); err != nil {
		writeError(root.ErrOrStderr(), err)
		os.Exit(1)
	}
}

func writeError(w io.Writer, err error) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if encErr := enc.Encode(errors.Wrap(err).ToResponse()); encErr != nil {
		fmt.Fprintln(w, err)
	}
}
