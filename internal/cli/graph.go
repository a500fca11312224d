package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/landing/internal/graph"
	"github.com/mesh-intelligence/landing/internal/landing"
	"github.com/mesh-intelligence/landing/pkg/denorm"
)

type graphOptions struct {
	communityID int64
	version     int64
	file        string
	format      string
	output      string
	strict      bool
}

func newGraphCmd(flags *rootFlags) *cobra.Command {
	opts := &graphOptions{}
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Draw the link graph of a content version",
		Long: `Graph lists which entities each section of a landing page links to.
The output is Graphviz DOT unless --output svg is given. Dangling links
are drawn in red; with --strict they also fail the command.

Example:
  landing graph --file content.yaml
  landing graph --community 501 --version 3 --output svg > page.svg`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraph(cmd, flags, opts)
		},
	}
	cmd.Flags().Int64Var(&opts.communityID, "community", 0, "community id")
	cmd.Flags().Int64Var(&opts.version, "version", 0, "version to draw (default: released version)")
	cmd.Flags().StringVar(&opts.file, "file", "", "draw a content file (- for stdin) instead of a stored version")
	cmd.Flags().StringVar(&opts.format, "format", "", "content format of --file: json, yaml or toml")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "dot", "output format: dot or svg")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "fail when a link points at a missing entity")
	cmd.MarkFlagsOneRequired("community", "file")
	return cmd
}

func runGraph(cmd *cobra.Command, flags *rootFlags, opts *graphOptions) error {
	if opts.output != "dot" && opts.output != "svg" {
		return userError(fmt.Errorf("unknown output format %q", opts.output))
	}

	e, err := loadEnv(flags)
	if err != nil {
		return err
	}

	data, err := loadDocument(cmd, e, opts.file, opts.format, opts.communityID, opts.version)
	if err != nil {
		return err
	}
	doc, err := denorm.ParseDocument(data)
	if err != nil {
		return userError(fmt.Errorf("parse content: %w", err))
	}

	g, err := graph.Build(doc, landing.NewDenormalizer(e.config.settings()))
	if err != nil {
		return userError(fmt.Errorf("graph: %w", err))
	}

	log := loggerFromContext(cmd.Context())
	for _, n := range g.Missing() {
		log.Warn("dangling link", "target", n.Label)
	}
	if missing := g.Missing(); opts.strict && len(missing) > 0 {
		return userError(fmt.Errorf("graph: %d dangling link(s), first %s", len(missing), missing[0].Label))
	}

	dot := graph.ToDOT(g)
	out := cmd.OutOrStdout()
	if opts.output == "dot" {
		_, err := fmt.Fprint(out, dot)
		return err
	}
	svg, err := graph.RenderSVG(cmd.Context(), dot)
	if err != nil {
		return sysError(err)
	}
	_, err = out.Write(svg)
	return err
}

// loadDocument returns normalized content from a file when file is set,
// otherwise from the store. A zero version means the released one.
func loadDocument(cmd *cobra.Command, e *env, file, format string, communityID, version int64) ([]byte, error) {
	if file != "" {
		return readContent(cmd, file, format)
	}

	backend, err := attachBackend(e)
	if err != nil {
		return nil, err
	}
	defer backend.Detach()

	if !cmd.Flags().Changed("version") {
		if version, err = backend.ReleasedVersion(communityID); err != nil {
			return nil, storeError("load content", err)
		}
	}
	content, err := backend.LoadContent(communityID, version)
	if err != nil {
		return nil, storeError("load content", err)
	}
	return []byte(content), nil
}
