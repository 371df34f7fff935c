package main

import (
	"encoding/json"

	"github.com/dalemusser/groupbook/internal/app/store"
	userstore "github.com/dalemusser/groupbook/internal/app/store/users"
	"github.com/dalemusser/groupbook/internal/app/system/normalize"
	"github.com/dalemusser/groupbook/internal/domain/models"
	"github.com/spf13/cobra"
)

func newUserCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}

	var in userstore.NewUser
	add := &cobra.Command{
		Use:   "add",
		Short: "Create an account",
		Long: `Create an account and print it as JSON.

Examples:
  groupbookctl user add --email ada@example.com --password s3cretpass --role instructor
  GROUPBOOK_STORE_TYPE=sqlite groupbookctl user add --email v@example.com --password s3cretpass --gender female`,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, done, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer done()
			u, err := userstore.New(deps.Store).Create(cmd.Context(), in)
			if err != nil {
				return err
			}
			return printJSON(cmd, u)
		},
	}
	f := add.Flags()
	f.StringVar(&in.Email, "email", "", "account email (required)")
	f.StringVar(&in.FullName, "name", "", "full name")
	f.StringVar(&in.Password, "password", "", "initial password, at least 8 characters (required)")
	f.StringVar(&in.Role, "role", models.RoleVisitor, "admin, instructor, or visitor")
	f.StringVar(&in.Gender, "gender", "", "male, female, other, or empty")
	_ = add.MarkFlagRequired("email")
	_ = add.MarkFlagRequired("password")

	var role string
	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List accounts as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, done, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer done()
			users, err := deps.Store.ListUsers(cmd.Context(), store.UserFilter{Role: normalize.Role(role)}, store.Page{Limit: limit})
			if err != nil {
				return err
			}
			return printJSON(cmd, users)
		},
	}
	list.Flags().StringVar(&role, "role", "", "only list accounts with this role")
	list.Flags().IntVar(&limit, "limit", store.DefaultLimit, "maximum accounts to print")

	cmd.AddCommand(add, list)
	return cmd
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
