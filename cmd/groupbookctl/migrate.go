package main

import (
	"errors"
	"fmt"

	"github.com/dalemusser/groupbook/internal/app/bootstrap"
	"github.com/spf13/cobra"
)

var errSQLiteOnly = errors.New("this command applies to the sqlite backend only")

func newMigrateCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the store schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations (sqlite) or reconcile validators and indexes (mongo)",
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, done, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer done()
			if err := bootstrap.EnsureSchema(cmd.Context(), nil, c.appConfig(), deps, c.logger()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back every migration (sqlite)",
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, done, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer done()
			if deps.SQL == nil {
				return errSQLiteOnly
			}
			if err := deps.SQL.MigrateDown(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "all migrations rolled back")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the applied migration version (sqlite)",
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, done, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer done()
			if deps.SQL == nil {
				return errSQLiteOnly
			}
			v, dirty, err := deps.SQL.Version()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version %d dirty=%v\n", v, dirty)
			return nil
		},
	})

	return cmd
}
