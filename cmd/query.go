package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/storefront/dbquery/collection"
	"github.com/storefront/dbquery/outputs/formats"
	"github.com/storefront/dbquery/query"
	"github.com/storefront/dbquery/storage"
)

func parseArgs(args []string) (query.Args, error) {
	if len(args) < 2 || args[1] == "" {
		return query.Args{}, nil
	}
	out, err := query.ParseJSONArgs([]byte(args[1]))
	if err != nil {
		return nil, fmt.Errorf("couldn't parse query arguments: %w", err)
	}
	return out, nil
}

func newQueryCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "query <collection> [json-args]",
		Short: "Print the rows matching the query arguments.",
		Long: `Print the rows matching the query arguments, given as a JSON object.

Every column accepts equality ("status": "active") and, where allowed, "column__in",
"column__not_in" and "column_query" date ranges. Reserved keys are search, search_columns,
orderby, order, limit (or number), offset, count, fields and no_found_rows.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			queryArgs, err := parseArgs(args)
			if err != nil {
				return err
			}
			return opts.withEnvironment(cmd.Context(), func(env *environment) error {
				c, err := env.Collection(args[0])
				if err != nil {
					return err
				}
				result, err := c.Query(cmd.Context(), queryArgs)
				if err != nil {
					return err
				}

				if result.IDs == nil {
					fmt.Fprintln(cmd.OutOrStdout(), result.Count)
					return nil
				}
				if err := printRows(cmd, opts, c, rowsOf(c, result)); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "found %d, pages %d\n", result.Found, result.Pages)
				return nil
			})
		},
	}
}

// rowsOf returns the result's items, or rows holding only the ids if items weren't requested.
func rowsOf(c *collection.Collection[storage.Row], result *collection.Result[storage.Row]) []storage.Row {
	if result.Items != nil {
		return result.Items
	}
	primary := c.Table().Primary().Name
	rows := make([]storage.Row, len(result.IDs))
	for i := range result.IDs {
		rows[i] = storage.Row{primary: result.IDs[i]}
	}
	return rows
}

func printRows(cmd *cobra.Command, opts *rootOptions, c *collection.Collection[storage.Row], rows []storage.Row) error {
	format, err := formats.New(opts.output, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	format.SetSchema(c.Table())
	for _, row := range rows {
		if err := format.Write(row); err != nil {
			return fmt.Errorf("couldn't write row: %w", err)
		}
	}
	if err := format.Close(); err != nil {
		return fmt.Errorf("couldn't flush output: %w", err)
	}
	return nil
}

func newCountCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "count <collection> [json-args]",
		Short: "Print the number of rows matching the query arguments.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			queryArgs, err := parseArgs(args)
			if err != nil {
				return err
			}
			return opts.withEnvironment(cmd.Context(), func(env *environment) error {
				c, err := env.Collection(args[0])
				if err != nil {
					return err
				}
				count, err := c.Count(cmd.Context(), queryArgs)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), count)
				return nil
			})
		},
	}
}
