package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/devrev/pairdb/admin-client/internal/admin"
	"github.com/devrev/pairdb/admin-client/internal/bootstrap"
	"github.com/devrev/pairdb/admin-client/internal/cluster"
	"github.com/devrev/pairdb/admin-client/internal/config"
	"github.com/devrev/pairdb/admin-client/internal/metrics"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type globalFlags struct {
	configPath   string
	bootstrapURL string
	nodeID       int32
}

var (
	flags  globalFlags
	logger *zap.Logger
	client *admin.Client
)

var rootCmd = &cobra.Command{
	Use:   "admin-cli",
	Short: "operator tool for the pairdb admin client",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = initLogger()
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		logger = logger.With(zap.String("invocation_id", uuid.New().String()))

		cfg, err := loadConfig(flags.configPath)
		if err != nil {
			return err
		}

		client, err = dialClient(cmd.Context(), cfg, flags.bootstrapURL)
		if err != nil {
			return err
		}
		client.ReportPoolStats()
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if client != nil {
			client.Close()
		}
		if logger != nil {
			logger.Sync()
		}
		return nil
	},
}

// Execute runs the CLI, exiting the process on error the way the fleet's
// own daemons fail fast on startup errors.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	configPathDefault := os.Getenv("CONFIG_PATH")
	if configPathDefault == "" {
		configPathDefault = "./admin-client.yaml"
	}

	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", configPathDefault, "path to the admin client config file")
	rootCmd.PersistentFlags().StringVar(&flags.bootstrapURL, "bootstrap", "", "bootstrap URL (admin://host:port, gossip://host:port[,host:port...], or grpc://host:port)")
	rootCmd.PersistentFlags().Int32Var(&flags.nodeID, "node", 1, "target node id for the RPC")

	rootCmd.AddCommand(
		getClusterCmd,
		getStoresCmd,
		serverStateCmd,
		migratePartitionsCmd,
		waitCmd,
		deletePartitionsCmd,
		healthCmd,
	)
}

func initLogger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	return cfg.Build()
}

func loadConfig(path string) (config.Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			cfg, err := config.LoadConfig(path)
			if err != nil {
				return config.Config{}, fmt.Errorf("load config %q: %w", path, err)
			}
			return *cfg, nil
		}
	}
	return config.Default(), nil
}

// dialClient resolves the initial cluster descriptor for bootstrapURL
// (falling back to the first of cfg.Bootstrap.URLs if no URL is given, and
// failing if there is none) and builds a Client instrumented with metrics.
func dialClient(ctx context.Context, cfg config.Config, bootstrapURL string) (*admin.Client, error) {
	m := metrics.NewMetrics("admin-cli")

	if bootstrapURL == "" && len(cfg.Bootstrap.URLs) > 0 {
		bootstrapURL = cfg.Bootstrap.URLs[0]
	}
	if bootstrapURL == "" {
		return nil, fmt.Errorf("no bootstrap URL given: pass --bootstrap or set bootstrap.urls in the config file")
	}

	scheme, addr, ok := strings.Cut(bootstrapURL, "://")
	if !ok {
		scheme, addr = "admin", bootstrapURL
	}

	var fetcher cluster.Fetcher
	switch scheme {
	case "admin", "tcp":
		fetcher = bootstrap.AdminFetcher{}
	case "gossip":
		fetcher = bootstrap.MemberlistFetcher{}
	case "grpc":
		fetcher = bootstrap.GRPCFetcher{}
	default:
		return nil, fmt.Errorf("unknown bootstrap scheme %q", scheme)
	}

	dialCtx, cancel := context.WithTimeout(ctx, cfg.Bootstrap.Timeout+2*time.Second)
	defer cancel()

	c, err := admin.NewClientFromBootstrap(dialCtx, addr, cfg, fetcher, admin.WithLogger(logger), admin.WithMetrics(m))
	if err != nil {
		return nil, fmt.Errorf("resolve cluster via %s bootstrap: %w", scheme, err)
	}
	return c, nil
}
