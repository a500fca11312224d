// Config loading for the landing CLI.
package cli

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/landing/internal/cache"
	"github.com/mesh-intelligence/landing/internal/landing"
	"github.com/mesh-intelligence/landing/internal/mongostore"
	"github.com/mesh-intelligence/landing/internal/paths"
	"github.com/mesh-intelligence/landing/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	envPrefix = "LANDING"

	defaultListenAddr    = ":8080"
	defaultCacheTTL      = 10 * time.Minute
	defaultRenderTimeout = 5 * time.Second
)

// appConfig is the decoded config.yaml merged with defaults and LANDING_*
// environment overrides.
type appConfig struct {
	Backend       string            `mapstructure:"backend"`
	DataDir       string            `mapstructure:"data_dir"`
	ListenAddr    string            `mapstructure:"listen_addr"`
	AppDomain     string            `mapstructure:"app_domain"`
	AssetPrefix   string            `mapstructure:"asset_prefix"`
	FontPath      string            `mapstructure:"font_path"`
	Paths         map[string]string `mapstructure:"paths"`
	Colors        map[string]string `mapstructure:"colors"`
	Marketplaces  map[string]int64  `mapstructure:"marketplaces"`
	Cache         cacheConfig       `mapstructure:"cache"`
	Mongo         mongoConfig       `mapstructure:"mongo"`
	RenderTimeout time.Duration     `mapstructure:"render_timeout"`
}

type cacheConfig struct {
	Backend   string        `mapstructure:"backend"`
	TTL       time.Duration `mapstructure:"ttl"`
	RedisAddr string        `mapstructure:"redis_addr"`
}

type mongoConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

// envKeys are the keys that LANDING_* variables may override. data_dir is
// resolved by the paths package so that config.yaml keeps precedence over
// LANDING_DATA_DIR.
var envKeys = []string{
	"backend",
	"listen_addr",
	"app_domain",
	"asset_prefix",
	"font_path",
	"cache.backend",
	"cache.ttl",
	"cache.redis_addr",
	"mongo.uri",
	"mongo.database",
	"render_timeout",
}

// configFile is the structure written to config.yaml by init.
type configFile struct {
	Backend      string            `yaml:"backend"`
	DataDir      string            `yaml:"data_dir,omitempty"`
	ListenAddr   string            `yaml:"listen_addr"`
	AppDomain    string            `yaml:"app_domain"`
	AssetPrefix  string            `yaml:"asset_prefix"`
	FontPath     string            `yaml:"font_path"`
	Paths        map[string]string `yaml:"paths"`
	Colors       map[string]string `yaml:"colors"`
	Marketplaces map[string]int64  `yaml:"marketplaces"`
	Cache        struct {
		Backend string `yaml:"backend"`
		TTL     string `yaml:"ttl"`
	} `yaml:"cache"`
	RenderTimeout string `yaml:"render_timeout"`
}

func defaultConfigFile(dataDir string) configFile {
	d := landing.DefaultSettings()
	cfg := configFile{
		Backend:      types.BackendSQLite,
		DataDir:      dataDir,
		ListenAddr:   defaultListenAddr,
		AppDomain:    "",
		AssetPrefix:  d.AssetPrefix,
		FontPath:     landing.DefaultFontPath,
		Paths:        d.Paths,
		Colors:       d.Colors,
		Marketplaces: map[string]int64{},
	}
	cfg.Cache.Backend = cache.BackendMemory
	cfg.Cache.TTL = defaultCacheTTL.String()
	cfg.RenderTimeout = defaultRenderTimeout.String()
	return cfg
}

// loadConfig reads config.yaml from configDir using Viper. A missing
// config.yaml is not an error; defaults apply.
func loadConfig(configDir string) (*appConfig, error) {
	d := landing.DefaultSettings()

	v := viper.New()
	v.SetDefault("backend", types.BackendSQLite)
	v.SetDefault("listen_addr", defaultListenAddr)
	v.SetDefault("asset_prefix", d.AssetPrefix)
	v.SetDefault("font_path", landing.DefaultFontPath)
	v.SetDefault("paths", d.Paths)
	v.SetDefault("colors", d.Colors)
	v.SetDefault("cache.backend", cache.BackendMemory)
	v.SetDefault("cache.ttl", defaultCacheTTL)
	v.SetDefault("render_timeout", defaultRenderTimeout)
	v.SetDefault("mongo.database", mongostore.DefaultDatabase)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg appConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	// Viper lower-cases map keys. Path and color ids are matched against
	// link ids verbatim, so those two maps are read again from the file.
	cfg.Paths, cfg.Colors = d.Paths, d.Colors
	if file := v.ConfigFileUsed(); file != "" {
		ids, err := readLinkIDs(file)
		if err != nil {
			return nil, err
		}
		cfg.Paths = mergeIDs(d.Paths, ids.Paths)
		cfg.Colors = mergeIDs(d.Colors, ids.Colors)
	}
	return &cfg, nil
}

// linkIDs holds the config.yaml sections keyed by link id.
type linkIDs struct {
	Paths  map[string]string `yaml:"paths"`
	Colors map[string]string `yaml:"colors"`
}

func readLinkIDs(path string) (linkIDs, error) {
	var ids linkIDs
	data, err := os.ReadFile(path)
	if err != nil {
		return ids, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &ids); err != nil {
		return ids, fmt.Errorf("decode config: %w", err)
	}
	return ids, nil
}

// mergeIDs returns defaults overlaid with configured.
func mergeIDs(defaults, configured map[string]string) map[string]string {
	out := make(map[string]string, len(defaults)+len(configured))
	maps.Copy(out, defaults)
	maps.Copy(out, configured)
	return out
}

// settings returns the link resolver settings of cfg.
func (c *appConfig) settings() landing.Settings {
	return landing.Settings{
		Paths:       c.Paths,
		Colors:      c.Colors,
		AssetPrefix: c.AssetPrefix,
	}
}

// writeConfigIfMissing creates config.yaml with default values if the file
// does not exist. An existing file is left alone.
func writeConfigIfMissing(path, dataDir string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat config file: %w", err)
	}

	cfg := defaultConfigFile(dataDir)
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	header := []byte("# landing configuration\n")
	if err := os.WriteFile(path, append(header, data...), 0o644); err != nil {
		return false, err
	}
	return true, nil
}

// env bundles the resolved directories and configuration of a command run.
type env struct {
	configDir string
	dataDir   string
	config    *appConfig
}

// loadEnv resolves directories and loads configuration for a command.
func loadEnv(flags *rootFlags) (*env, error) {
	configDir, err := paths.ResolveConfigDir(flags.configDir)
	if err != nil {
		return nil, sysError(fmt.Errorf("resolve config dir: %w", err))
	}
	cfg, err := loadConfig(configDir)
	if err != nil {
		return nil, userError(err)
	}
	dataDir, err := paths.ResolveDataDir(flags.dataDir, cfg.DataDir)
	if err != nil {
		return nil, sysError(fmt.Errorf("resolve data dir: %w", err))
	}
	return &env{configDir: configDir, dataDir: dataDir, config: cfg}, nil
}

func (e *env) configPath() string {
	return filepath.Join(e.configDir, configFileExt)
}
