package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/dalemusser/groupbook/internal/app/bootstrap"
	"github.com/dalemusser/groupbook/internal/app/system/timeouts"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var version = "dev"

// cli carries the per-invocation configuration shared by subcommands.
type cli struct {
	v       *viper.Viper
	cfgFile string
	verbose bool
}

func newRootCmd() *cobra.Command {
	c := &cli{v: viper.New()}

	root := &cobra.Command{
		Use:   "groupbookctl",
		Short: "Operate a groupbook deployment",
		Long: `groupbookctl manages a groupbook entity store directly.

Configuration is read from flags, GROUPBOOK_* environment variables, and an
optional config file, using the same keys as the service (store_type,
sqlite_path, mongo_uri, mongo_database).`,
		Version:       version,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.initConfig()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&c.cfgFile, "config", "c", "", "config file (yaml, json, or toml)")
	pf.BoolVarP(&c.verbose, "verbose", "v", false, "log store activity to stderr")
	pf.String("store_type", bootstrap.StoreMongo, "entity store backend: mongo or sqlite")
	pf.String("sqlite_path", "groupbook.db", "SQLite database file")
	pf.String("mongo_uri", "mongodb://localhost:27017", "MongoDB connection URI")
	pf.String("mongo_database", "groupbook", "MongoDB database name")

	for _, key := range []string{"store_type", "sqlite_path", "mongo_uri", "mongo_database"} {
		_ = c.v.BindPFlag(key, pf.Lookup(key))
	}

	root.AddCommand(newMigrateCmd(c), newUserCmd(c))
	return root
}

func (c *cli) initConfig() error {
	c.v.SetEnvPrefix(bootstrap.EnvPrefix)
	c.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.v.AutomaticEnv()

	if c.cfgFile != "" {
		c.v.SetConfigFile(c.cfgFile)
		if err := c.v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", c.cfgFile, err)
		}
	}
	return nil
}

// appConfig builds the subset of the service configuration the CLI needs.
func (c *cli) appConfig() bootstrap.AppConfig {
	return bootstrap.AppConfig{
		StoreType:        c.v.GetString("store_type"),
		SQLitePath:       c.v.GetString("sqlite_path"),
		MongoURI:         c.v.GetString("mongo_uri"),
		MongoDatabase:    c.v.GetString("mongo_database"),
		MongoMaxPoolSize: 4,
		Timeouts:         timeouts.Defaults(),
	}
}

func (c *cli) logger() *zap.Logger {
	if !c.verbose {
		return zap.NewNop()
	}
	l, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return l
}

// open connects to the configured store. The returned func releases it.
func (c *cli) open(ctx context.Context) (bootstrap.DBDeps, func(), error) {
	cfg := c.appConfig()
	log := c.logger()
	if cfg.StoreType != bootstrap.StoreMongo && cfg.StoreType != bootstrap.StoreSQLite {
		return bootstrap.DBDeps{}, nil, fmt.Errorf("unknown store_type %q", cfg.StoreType)
	}
	deps, err := bootstrap.ConnectDB(ctx, nil, cfg, log)
	if err != nil {
		return bootstrap.DBDeps{}, nil, err
	}
	closeFn := func() {
		_ = bootstrap.Shutdown(context.Background(), nil, cfg, deps, log)
		_ = log.Sync()
	}
	return deps, closeFn, nil
}
