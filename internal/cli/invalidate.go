package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/landing/internal/cache"
	"github.com/mesh-intelligence/landing/internal/landing"
)

type invalidateOptions struct {
	communityID int64
	version     int64
}

func newInvalidateCmd(flags *rootFlags) *cobra.Command {
	opts := &invalidateOptions{}
	cmd := &cobra.Command{
		Use:   "invalidate",
		Short: "Drop cached renders of a community",
		Long: `Invalidate removes rendered pages from the configured cache so the next
request renders them again. Without --version every published version of
the community is dropped. Only a shared cache (redis) outlives the serving
process, so other backends have nothing to drop.

Example:
  landing invalidate --community 501
  landing invalidate --community 501 --version 3`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInvalidate(cmd, flags, opts)
		},
	}
	cmd.Flags().Int64Var(&opts.communityID, "community", 0, "community id")
	cmd.Flags().Int64Var(&opts.version, "version", 0, "version to drop (default: all versions)")
	_ = cmd.MarkFlagRequired("community")
	return cmd
}

func runInvalidate(cmd *cobra.Command, flags *rootFlags, opts *invalidateOptions) error {
	e, err := loadEnv(flags)
	if err != nil {
		return err
	}
	cfg := e.config

	backend, err := attachBackend(e)
	if err != nil {
		return err
	}
	defer backend.Detach()

	versions := []int64{opts.version}
	if !cmd.Flags().Changed("version") {
		list, err := backend.ListVersions(opts.communityID)
		if err != nil {
			return storeError("list versions", err)
		}
		versions = versions[:0]
		for _, v := range list {
			versions = append(versions, v.Version)
		}
	}

	ctx := cmd.Context()
	c, err := cache.New(ctx, cache.Config{Backend: cfg.Cache.Backend, RedisAddr: cfg.Cache.RedisAddr})
	if err != nil {
		return userError(fmt.Errorf("cache: %w", err))
	}
	defer c.Close()

	svc := landing.NewService(backend, cfg.settings(),
		landing.WithCache(c, cfg.Cache.TTL),
		landing.WithLogger(loggerFromContext(ctx)),
	)
	for _, v := range versions {
		if err := svc.Invalidate(ctx, opts.communityID, v); err != nil {
			return sysError(fmt.Errorf("invalidate version %d: %w", v, err))
		}
	}

	p := newPrinter(cmd.OutOrStdout())
	p.success("Invalidated %d cached version(s) for community %d", len(versions), opts.communityID)
	if cfg.Cache.Backend != cache.BackendRedis {
		p.warning("cache backend %q is local to each process; nothing shared was dropped", cfg.Cache.Backend)
	}
	return nil
}
