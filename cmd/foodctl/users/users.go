package users

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/food_api/cmd/foodctl/output"
	"github.com/Skotchmaster/food_api/cmd/foodctl/root"
	"github.com/Skotchmaster/food_api/internal/service"
)

func init() {
	root.GetRoot().AddCommand(usersCmd())
}

func usersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "user",
		Aliases: []string{"users"},
		Short:   "Manage API users",
	}
	cmd.AddCommand(createUserCmd(), listUsersCmd(), promoteUserCmd(), deleteUserCmd())
	return cmd
}

func createUserCmd() *cobra.Command {
	var (
		password string
		admin    bool
	)

	cmd := &cobra.Command{
		Use:   "create <username>",
		Short: "Create a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				return errors.New("--password is required")
			}

			svc, closeFn, err := root.UserService(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			u, err := svc.Create(cmd.Context(), "", args[0], password, admin)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s) admin=%t\n", u.Username, u.PublicID, u.Admin)
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "initial password")
	cmd.Flags().BoolVar(&admin, "admin", false, "grant admin rights")
	return cmd
}

func listUsersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := root.UserService(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			users, err := svc.List(cmd.Context())
			if err != nil {
				return err
			}

			rows := make([][]any, 0, len(users))
			for _, u := range users {
				rows = append(rows, []any{u.PublicID, u.Username, u.Admin, u.CreatedAt.Format(time.RFC3339)})
			}
			output.RenderTable(cmd.OutOrStdout(), []string{"Public ID", "Username", "Admin", "Created"}, rows)
			return nil
		},
	}
}

func promoteUserCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "promote <public_id>",
		Short: "Grant admin rights to a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := root.UserService(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			u, err := svc.Promote(cmd.Context(), "", args[0])
			if err != nil {
				return notFound(err, args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "promoted %s\n", u.Username)
			return nil
		},
	}
}

func deleteUserCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <public_id>",
		Short: "Delete a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := root.UserService(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			if err := svc.Delete(cmd.Context(), "", args[0]); err != nil {
				return notFound(err, args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}
}

func notFound(err error, publicID string) error {
	if errors.Is(err, service.ErrNotFound) {
		return fmt.Errorf("no user with public id %s", publicID)
	}
	return err
}
