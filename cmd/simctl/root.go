package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/autovolt/lakehouse/internal/app"
	"github.com/autovolt/lakehouse/internal/config"
	"github.com/autovolt/lakehouse/internal/logging"
)

// cli carries the settings shared by every subcommand
type cli struct {
	v       *viper.Viper
	cfgFile string
}

func newRootCmd() *cobra.Command {
	c := &cli{v: viper.New()}

	root := &cobra.Command{
		Use:           "simctl",
		Short:         "Operate the AutoVolt synthetic data generator",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.initConfig()
		},
	}

	root.PersistentFlags().StringVar(&c.cfgFile, "config", "", "config file (default is ./simctl.yaml)")
	root.PersistentFlags().String("storage", "", "storage backend override (minio, memory)")
	root.PersistentFlags().String("warehouse", "", "warehouse driver override (postgres, sqlite, none)")
	root.PersistentFlags().String("database-url", "", "warehouse DSN override")
	root.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	c.bind(root.PersistentFlags(), "storage", "warehouse", "database-url", "verbose")

	root.AddCommand(c.runCmd(), c.stateCmd(), c.tablesCmd())
	return root
}

// bind maps flags onto viper keys with dashes turned into underscores
func (c *cli) bind(flags *pflag.FlagSet, names ...string) {
	for _, name := range names {
		_ = c.v.BindPFlag(strings.ReplaceAll(name, "-", "_"), flags.Lookup(name))
	}
}

func (c *cli) initConfig() error {
	if c.cfgFile != "" {
		c.v.SetConfigFile(c.cfgFile)
	} else {
		c.v.AddConfigPath(".")
		c.v.SetConfigType("yaml")
		c.v.SetConfigName("simctl")
	}

	c.v.SetEnvPrefix("SIMCTL")
	c.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	c.v.AutomaticEnv()

	if err := c.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || c.cfgFile != "" {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}
	return nil
}

// loadConfig reads the service configuration and applies CLI overrides
func (c *cli) loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if s := c.v.GetString("storage"); s != "" {
		cfg.StorageBackend = strings.ToLower(s)
	}
	if s := c.v.GetString("warehouse"); s != "" {
		cfg.WarehouseDriver = strings.ToLower(s)
	}
	if s := c.v.GetString("database_url"); s != "" {
		cfg.DatabaseURL = s
	}
	if c.v.GetBool("verbose") {
		cfg.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// withApp runs fn against a fully wired application
func (c *cli) withApp(ctx context.Context, fn func(*app.App) error) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	logFile := logging.Init(cfg.Debug, cfg.LogFile)
	defer logFile.Close()

	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}
