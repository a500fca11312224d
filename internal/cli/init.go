package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newInitCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize landing storage",
		Long:  "Create the configuration and data directories, write a default config.yaml\nand initialize the storage backend.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, flags)
		},
	}
}

func runInit(cmd *cobra.Command, flags *rootFlags) error {
	logger := loggerFromContext(cmd.Context())

	e, err := loadEnv(flags)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(e.configDir, 0o755); err != nil {
		return sysError(fmt.Errorf("create config directory: %w", err))
	}
	created, err := writeConfigIfMissing(e.configPath(), e.dataDir)
	if err != nil {
		return sysError(fmt.Errorf("write config: %w", err))
	}
	if created {
		logger.Debug("wrote default config", "path", e.configPath())
	}

	backend, err := attachBackend(e)
	if err != nil {
		return err
	}
	if err := backend.Detach(); err != nil {
		return sysError(fmt.Errorf("finalize storage: %w", err))
	}

	logger.Debug("storage ready", "data_dir", e.dataDir)
	p := newPrinter(cmd.OutOrStdout())
	p.success("Landing initialized successfully")
	p.detail("config: %s", e.configPath())
	return nil
}
