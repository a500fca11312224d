// Package cli implements the landing command-line interface.
//
// Commands manage versioned landing page content (publish, release, enable,
// disable, versions), render it offline (render) and serve it over HTTP
// (serve). All commands accept --verbose (-v) for debug logging; loggers
// travel through context.Context.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

var (
	version = "dev" // semantic version, set by SetVersion
	commit  string  // git commit SHA
	date    string  // build timestamp
)

// SetVersion sets the build information printed by the version command.
// main calls it with values injected through ldflags.
func SetVersion(v, c, d string) {
	if v != "" {
		version = v
	}
	commit = c
	date = d
}

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	jsonMode  bool
	verbose   bool
}

// codeError carries the exit code an error should produce.
type codeError struct {
	code int
	err  error
}

func (e *codeError) Error() string { return e.err.Error() }
func (e *codeError) Unwrap() error { return e.err }

// userError marks err as caused by bad input (exit code 1).
func userError(err error) error { return &codeError{code: exitUserError, err: err} }

// sysError marks err as an environment or storage failure (exit code 2).
func sysError(err error) error { return &codeError{code: exitSysError, err: err} }

// exitCode maps err to a process exit code. Unmarked errors come from cobra
// itself (unknown flags, bad arguments) and count as user errors.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var ce *codeError
	if errors.As(err, &ce) {
		return ce.code
	}
	return exitUserError
}

// NewRootCmd creates the top-level "landing" command with global flags and
// all subcommands registered.
func NewRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:   "landing",
		Short: "Versioned landing page content service",
		Long: "Landing stores versioned, normalized landing page content per community,\n" +
			"resolves its links into a render-ready tree and serves it over HTTP.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if flags.verbose {
				level = charmlog.DebugLevel
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(withLogger(ctx, newLogger(cmd.ErrOrStderr(), level)))
		},
	}

	root.PersistentFlags().StringVar(&flags.configDir, "config-dir", "", "configuration directory (default: .landing or the platform config dir)")
	root.PersistentFlags().StringVar(&flags.dataDir, "data-dir", "", "data directory (default: .landing-db)")
	root.PersistentFlags().BoolVar(&flags.jsonMode, "json", false, "output in JSON format")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(flags))
	root.AddCommand(newServeCmd(flags))
	root.AddCommand(newPublishCmd(flags))
	root.AddCommand(newReleaseCmd(flags))
	root.AddCommand(newEnableCmd(flags, true))
	root.AddCommand(newEnableCmd(flags, false))
	root.AddCommand(newVersionsCmd(flags))
	root.AddCommand(newRenderCmd(flags))
	root.AddCommand(newGraphCmd(flags))
	root.AddCommand(newInvalidateCmd(flags))

	return root
}

// Execute runs the root command and exits with the matching code.
func Execute() {
	os.Exit(run(context.Background(), os.Args[1:]))
}

func run(ctx context.Context, args []string) int {
	root := NewRootCmd()
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "Error:", err)
	}
	return exitCode(err)
}
