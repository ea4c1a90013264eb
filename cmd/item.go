package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/storefront/dbquery/query"
	"github.com/storefront/dbquery/storage"
)

func newGetCmd(opts *rootOptions) *cobra.Command {
	var by string
	cmd := &cobra.Command{
		Use:   "get <collection> <value>",
		Short: "Print a single row by primary key or by another column.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withEnvironment(cmd.Context(), func(env *environment) error {
				c, err := env.Collection(args[0])
				if err != nil {
					return err
				}

				var row storage.Row
				var ok bool
				if by == "" {
					row, ok, err = c.Get(cmd.Context(), args[1])
				} else {
					row, ok, err = c.GetBy(cmd.Context(), by, args[1])
				}
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("%s %s not found", args[0], args[1])
				}
				return printRows(cmd, opts, c, []storage.Row{row})
			})
		},
	}
	cmd.Flags().StringVar(&by, "by", "", "Look the row up by this column instead of the primary key.")
	return cmd
}

func newAddCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <collection> <json-row>",
		Short: "Insert a row and print its primary key.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := query.ParseJSONArgs([]byte(args[1]))
			if err != nil {
				return fmt.Errorf("couldn't parse row: %w", err)
			}
			return opts.withEnvironment(cmd.Context(), func(env *environment) error {
				c, err := env.Collection(args[0])
				if err != nil {
					return err
				}
				id, err := c.Add(cmd.Context(), values)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), id)
				return nil
			})
		},
	}
}

func newDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <collection> <id>",
		Short: "Delete a row by primary key.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withEnvironment(cmd.Context(), func(env *environment) error {
				c, err := env.Collection(args[0])
				if err != nil {
					return err
				}
				return c.Delete(cmd.Context(), args[1])
			})
		},
	}
}
