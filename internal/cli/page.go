package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/landing/pkg/types"
)

// newEnableCmd builds "enable" or "disable".
func newEnableCmd(flags *rootFlags, enable bool) *cobra.Command {
	var communityID int64
	use, short := "enable", "Enable a community's landing page"
	if !enable {
		use, short = "disable", "Disable a community's landing page"
	}

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
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

			page, err := backend.GetLandingPage(communityID)
			if errors.Is(err, types.ErrLandingPageNotFound) {
				page = &types.LandingPage{CommunityID: communityID}
			} else if err != nil {
				return storeError("get landing page", err)
			}
			page.SetEnabled(enable)
			if err := backend.SetLandingPage(page); err != nil {
				return storeError("set landing page", err)
			}

			state := "enabled"
			if !enable {
				state = "disabled"
			}
			p := newPrinter(cmd.OutOrStdout())
			p.success("Landing page %s for community %d (released version: %s)",
				state, communityID, formatVersion(page.ReleasedVersion))
			if enable && page.ReleasedVersion == nil {
				p.warning("no version released yet; visitors get a configuration error")
			}
			return nil
		},
	}
	cmd.Flags().Int64Var(&communityID, "community", 0, "community id")
	_ = cmd.MarkFlagRequired("community")
	return cmd
}

type versionRow struct {
	Version   int64     `json:"version"`
	VersionID string    `json:"version_id"`
	Released  bool      `json:"released"`
	Size      int       `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

func newVersionsCmd(flags *rootFlags) *cobra.Command {
	var communityID int64
	cmd := &cobra.Command{
		Use:   "versions",
		Short: "List content versions of a community",
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

			versions, err := backend.ListVersions(communityID)
			if err != nil {
				return storeError("list versions", err)
			}

			var released *int64
			if page, err := backend.GetLandingPage(communityID); err == nil {
				released = page.ReleasedVersion
			} else if !errors.Is(err, types.ErrLandingPageNotFound) {
				return storeError("get landing page", err)
			}

			rows := make([]versionRow, len(versions))
			for i, v := range versions {
				rows[i] = versionRow{
					Version:   v.Version,
					VersionID: v.VersionID,
					Released:  released != nil && *released == v.Version,
					Size:      len(v.Content),
					CreatedAt: v.CreatedAt,
				}
			}

			out := cmd.OutOrStdout()
			if flags.jsonMode {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(rows)
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "VERSION\tRELEASED\tSIZE\tCREATED\tID")
			for _, r := range rows {
				mark := ""
				if r.Released {
					mark = "*"
				}
				fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\n", r.Version, mark, r.Size, r.CreatedAt.Format(time.RFC3339), r.VersionID)
			}
			return w.Flush()
		},
	}
	cmd.Flags().Int64Var(&communityID, "community", 0, "community id")
	_ = cmd.MarkFlagRequired("community")
	return cmd
}
