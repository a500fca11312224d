package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

const modulePath = "github.com/mesh-intelligence/landing"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the landing version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "landing %s\nmodule: %s\n", version, modulePath)
			if commit != "" {
				fmt.Fprintf(out, "commit: %s\n", commit)
			}
			if date != "" {
				fmt.Fprintf(out, "built: %s\n", date)
			}
			return nil
		},
	}
}
