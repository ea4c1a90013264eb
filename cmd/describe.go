package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/storefront/dbquery/outputs/formats"
)

func newDescribeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "describe [collection]",
		Short: "List the collections, or describe the columns of one.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withEnvironment(cmd.Context(), func(env *environment) error {
				if len(args) == 0 {
					for _, name := range env.Names() {
						fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", name, env.collections[name].Table.Name)
					}
					return nil
				}

				c, err := env.Collection(args[0])
				if err != nil {
					return err
				}
				defaults := c.Defaults()
				fmt.Fprintf(cmd.OutOrStdout(), "table %s, ordered by %s %s", c.Table().Name, defaults.OrderBy, defaults.Order)
				if defaults.Limit > 0 {
					fmt.Fprintf(cmd.OutOrStdout(), ", %d per page", defaults.Limit)
				}
				fmt.Fprintln(cmd.OutOrStdout())
				formats.DescribeTable(cmd.OutOrStdout(), c.Table())
				return nil
			})
		},
	}
}

func newInstallCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "install [collection...]",
		Short: "Create the tables of the given collections, or of all of them.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withEnvironment(cmd.Context(), func(env *environment) error {
				names := args
				if len(names) == 0 {
					names = env.Names()
				}
				for _, name := range names {
					c, err := env.Collection(name)
					if err != nil {
						return err
					}
					if err := c.Install(cmd.Context()); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "installed %s\n", c.Table().Name)
				}
				return nil
			})
		},
	}
}
