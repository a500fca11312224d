package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/landing/internal/content"
)

type publishOptions struct {
	communityID int64
	file        string
	format      string
	release     bool
}

func newPublishCmd(flags *rootFlags) *cobra.Command {
	opts := &publishOptions{}
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish a new content version",
		Long: `Publish stores a normalized content document as the next version of a
community's landing page. Publishing does not change what visitors see
unless --release is given. YAML and TOML files are converted to JSON
before they are stored; the format follows the file extension unless
--format is given.

Example:
  landing publish --community 501 --file content.json
  landing publish --community 501 --file content.yaml
  landing publish --community 501 --file - --release < content.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPublish(cmd, flags, opts)
		},
	}
	cmd.Flags().Int64Var(&opts.communityID, "community", 0, "community id")
	cmd.Flags().StringVar(&opts.file, "file", "", "content file (- for stdin)")
	cmd.Flags().StringVar(&opts.format, "format", "", "content format: json, yaml or toml (default: from extension)")
	cmd.Flags().BoolVar(&opts.release, "release", false, "release the new version immediately")
	_ = cmd.MarkFlagRequired("community")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func runPublish(cmd *cobra.Command, flags *rootFlags, opts *publishOptions) error {
	data, err := readContent(cmd, opts.file, opts.format)
	if err != nil {
		return err
	}

	e, err := loadEnv(flags)
	if err != nil {
		return err
	}
	backend, err := attachBackend(e)
	if err != nil {
		return err
	}
	defer backend.Detach()

	v, err := backend.Publish(opts.communityID, string(data))
	if err != nil {
		return storeError("publish", err)
	}
	loggerFromContext(cmd.Context()).Debug("published", "community_id", v.CommunityID, "version", v.Version, "version_id", v.VersionID)

	if opts.release {
		if err := backend.Release(opts.communityID, v.Version); err != nil {
			return storeError("release", err)
		}
	}

	out := cmd.OutOrStdout()
	if flags.jsonMode {
		return json.NewEncoder(out).Encode(map[string]any{
			"community_id": v.CommunityID,
			"version":      v.Version,
			"version_id":   v.VersionID,
			"released":     opts.release,
		})
	}
	p := newPrinter(out)
	p.success("Published version %d for community %d", v.Version, v.CommunityID)
	if opts.release {
		p.success("Released version %d", v.Version)
	} else {
		p.detail("run 'landing release --community %d --version %d' to serve it", v.CommunityID, v.Version)
	}
	return nil
}

// readContent reads a content file, or stdin when path is "-", and converts
// it to normalized JSON.
func readContent(cmd *cobra.Command, path, format string) ([]byte, error) {
	var f content.Format
	if format != "" {
		var err error
		if f, err = content.ParseFormat(format); err != nil {
			return nil, userError(err)
		}
	}
	data, err := content.Read(path, cmd.InOrStdin(), f)
	if err != nil {
		return nil, userError(fmt.Errorf("read content: %w", err))
	}
	return data, nil
}

type releaseOptions struct {
	communityID int64
	version     int64
}

func newReleaseCmd(flags *rootFlags) *cobra.Command {
	opts := &releaseOptions{}
	cmd := &cobra.Command{
		Use:   "release",
		Short: "Release a published version",
		Long:  "Release makes a published version the one visitors see and enables the page.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(flags)
			if err != nil {
				return err
			}
			backend, err := attachBackend(e)
			if err != nil {
				return err
			}
			defer backend.Detach()

			if err := backend.Release(opts.communityID, opts.version); err != nil {
				return storeError("release", err)
			}
			newPrinter(cmd.OutOrStdout()).success("Released version %d for community %d", opts.version, opts.communityID)
			return nil
		},
	}
	cmd.Flags().Int64Var(&opts.communityID, "community", 0, "community id")
	cmd.Flags().Int64Var(&opts.version, "version", 0, "version to release")
	_ = cmd.MarkFlagRequired("community")
	_ = cmd.MarkFlagRequired("version")
	return cmd
}
