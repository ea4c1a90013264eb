package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/storefront/dbquery/config"
	"github.com/storefront/dbquery/logs"
)

type rootOptions struct {
	configPath string
	output     string
	logFile    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "dbquery",
		Short: "Query and maintain the store's collections.",
		Example: `dbquery query customers '{"status": "active", "orderby": "purchase_value", "order": "DESC"}'
dbquery count orders '{"status__in": ["complete", "refunded"]}'
dbquery get discounts 12 --output json`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.logFile {
				logs.InitializeFileLogger(logs.Dir())
			}
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.logFile {
				logs.CloseLogger()
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Configuration file, ~/.dbquery/config.yml by default.")
	rootCmd.PersistentFlags().StringVarP(&opts.output, "output", "o", "table", "Output format: table, json or csv.")
	rootCmd.PersistentFlags().BoolVar(&opts.logFile, "log-file", false, "Write logs to ~/.dbquery/logs.txt instead of stderr.")

	rootCmd.AddCommand(
		newQueryCmd(opts),
		newCountCmd(opts),
		newGetCmd(opts),
		newAddCmd(opts),
		newDeleteCmd(opts),
		newDescribeCmd(opts),
		newInstallCmd(opts),
	)

	return rootCmd
}

// withEnvironment runs f against the environment described by the configuration file.
func (opts *rootOptions) withEnvironment(ctx context.Context, f func(env *environment) error) (outErr error) {
	path := opts.configPath
	var cfg *config.Config
	var err error
	if path == "" {
		if path, err = config.DefaultPath(); err != nil {
			return fmt.Errorf("couldn't get configuration path: %w", err)
		}
		cfg, err = config.ReadConfigOrDefault(path)
	} else {
		cfg, err = config.ReadConfig(path)
	}
	if err != nil {
		return fmt.Errorf("couldn't read config: %w", err)
	}

	env, err := newEnvironment(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := env.Close(); err != nil && outErr == nil {
			outErr = fmt.Errorf("couldn't close environment: %w", err)
		}
	}()

	return f(env)
}

func Execute(ctx context.Context) {
	cobra.CheckErr(newRootCmd().ExecuteContext(ctx))
}
