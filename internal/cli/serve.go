package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/landing/internal/cache"
	"github.com/mesh-intelligence/landing/internal/landing"
	"github.com/mesh-intelligence/landing/internal/marketplace"
	"github.com/mesh-intelligence/landing/internal/server"
)

func newServeCmd(flags *rootFlags) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve landing pages over HTTP",
		Long: `Serve answers landing page requests for every marketplace listed in
config.yaml. The marketplace is picked from the first label of the request
host under app_domain.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, flags, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: listen_addr from config, :8080)")
	return cmd
}

func runServe(cmd *cobra.Command, flags *rootFlags, addr string) error {
	logger := loggerFromContext(cmd.Context())

	e, err := loadEnv(flags)
	if err != nil {
		return err
	}
	cfg := e.config
	if addr == "" {
		addr = cfg.ListenAddr
	}

	backend, err := attachBackend(e)
	if err != nil {
		return err
	}
	defer backend.Detach()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c, err := cache.New(ctx, cache.Config{Backend: cfg.Cache.Backend, RedisAddr: cfg.Cache.RedisAddr})
	if err != nil {
		return userError(fmt.Errorf("cache: %w", err))
	}
	defer c.Close()

	if len(cfg.Marketplaces) == 0 {
		logger.Warn("no marketplaces configured; every request will get 404")
	}
	logger.Debug("configuration",
		"data_dir", e.dataDir,
		"app_domain", cfg.AppDomain,
		"marketplaces", len(cfg.Marketplaces),
		"cache", cfg.Cache.Backend,
	)

	svc := landing.NewService(backend, cfg.settings(),
		landing.WithCache(c, cfg.Cache.TTL),
		landing.WithLogger(logger),
	)
	srv := server.New(svc,
		marketplace.NewResolver(cfg.AppDomain, cfg.Marketplaces),
		server.Config{
			FontPath:      cfg.FontPath,
			PrimaryColor:  cfg.Colors["primary_color"],
			RenderTimeout: cfg.RenderTimeout,
		},
		logger,
	)

	if err := srv.ListenAndServe(ctx, addr); err != nil {
		return sysError(fmt.Errorf("serve: %w", err))
	}
	return nil
}
