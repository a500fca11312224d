package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/landing/internal/landing"
	"github.com/mesh-intelligence/landing/pkg/denorm"
)

type renderOptions struct {
	communityID int64
	version     int64
	file        string
	format      string
}

func newRenderCmd(flags *rootFlags) *cobra.Command {
	opts := &renderOptions{}
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print the denormalized tree of a content version",
		Long: `Render resolves every link of a content version and prints the resulting
tree as indented JSON. Without --version the released version is rendered.
With --file the content is read from a file instead of the store.

Example:
  landing render --community 501
  landing render --community 501 --version 3
  landing render --file content.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, flags, opts)
		},
	}
	cmd.Flags().Int64Var(&opts.communityID, "community", 0, "community id")
	cmd.Flags().Int64Var(&opts.version, "version", 0, "version to render (default: released version)")
	cmd.Flags().StringVar(&opts.file, "file", "", "render a content file (- for stdin) instead of a stored version")
	cmd.Flags().StringVar(&opts.format, "format", "", "content format of --file: json, yaml or toml")
	cmd.MarkFlagsOneRequired("community", "file")
	return cmd
}

func runRender(cmd *cobra.Command, flags *rootFlags, opts *renderOptions) error {
	e, err := loadEnv(flags)
	if err != nil {
		return err
	}

	var tree denorm.Value
	if opts.file != "" {
		content, err := readContent(cmd, opts.file, opts.format)
		if err != nil {
			return err
		}
		doc, err := denorm.ParseDocument(content)
		if err != nil {
			return userError(fmt.Errorf("parse content: %w", err))
		}
		tree, err = landing.NewDenormalizer(e.config.settings()).ToTree(doc)
		if err != nil {
			return userError(fmt.Errorf("render: %w", err))
		}
	} else {
		backend, err := attachBackend(e)
		if err != nil {
			return err
		}
		defer backend.Detach()

		var version *int64
		if cmd.Flags().Changed("version") {
			version = &opts.version
		}

		ctx := cmd.Context()
		if e.config.RenderTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, e.config.RenderTimeout)
			defer cancel()
		}

		page, err := landing.NewService(backend, e.config.settings(),
			landing.WithLogger(loggerFromContext(cmd.Context())),
		).Render(ctx, opts.communityID, version)
		if err != nil {
			return renderError(err)
		}
		tree = page.Sections
	}

	out, err := json.MarshalIndent(tree, "", "  ")
	if err != nil {
		return sysError(fmt.Errorf("encode tree: %w", err))
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

// renderError classifies Render failures. Transform failures are content
// problems and count as user errors; store failures keep their usual class.
func renderError(err error) error {
	if isTransformError(err) {
		return userError(fmt.Errorf("render: %w", err))
	}
	return storeError("render", err)
}

func isTransformError(err error) bool {
	for _, target := range []error{
		denorm.ErrInvalidLink,
		denorm.ErrLinkNotFound,
		denorm.ErrCyclicLink,
		denorm.ErrNotObject,
		landing.ErrPathNotFound,
		landing.ErrColorNotFound,
		landing.ErrInvalidAsset,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
