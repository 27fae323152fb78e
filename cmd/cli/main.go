package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/alextreichler/orderdesk/internal/config"
	"github.com/alextreichler/orderdesk/internal/models"
	"github.com/alextreichler/orderdesk/internal/store"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type options struct {
	driver string
	dsn    string
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	driver, dsn := config.Database()

	root := &cobra.Command{
		Use:          "orderdesk-cli",
		Short:        "Operator commands for the order desk database",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.driver, "driver", driver, "database driver: sqlite, postgres or mysql (DB_DRIVER)")
	root.PersistentFlags().StringVar(&opts.dsn, "dsn", dsn, "database connection string (DATABASE_URL)")

	root.AddCommand(
		newMigrateCmd(opts),
		newAddUserCmd(opts),
		newLockCmd(opts, true),
		newLockCmd(opts, false),
		newSeedCmd(opts),
	)
	return root
}

// open connects and makes sure the schema exists, so the CLI can run before
// the server ever has.
func (o *options) open() (*store.Store, error) {
	db, err := store.NewStore(o.driver, o.dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

func newMigrateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := opts.open()
			if err != nil {
				return err
			}
			defer db.Close()
			fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date.")
			return nil
		},
	}
}

func newAddUserCmd(opts *options) *cobra.Command {
	var name, email, password string
	cmd := &cobra.Command{
		Use:   "add-user",
		Short: "Create a user who can log in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("hash password: %w", err)
			}

			db, err := opts.open()
			if err != nil {
				return err
			}
			defer db.Close()

			user := &models.User{UserName: name, Email: email, Password: string(hashedPassword)}
			err = db.CreateUser(cmd.Context(), user)
			if errors.Is(err, store.ErrDuplicate) {
				return fmt.Errorf("a user with email %q already exists", email)
			}
			if err != nil {
				return fmt.Errorf("create user: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "User '%s' created successfully.\n", email)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&password, "password", "", "login password")
	for _, f := range []string{"name", "email", "password"} {
		cmd.MarkFlagRequired(f)
	}
	return cmd
}

func newLockCmd(opts *options, lock bool) *cobra.Command {
	use, short, done := "lock-user", "Prevent a user from logging in", "locked"
	if !lock {
		use, short, done = "unlock-user", "Allow a locked user to log in again", "unlocked"
	}
	return &cobra.Command{
		Use:   use + " EMAIL",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := opts.open()
			if err != nil {
				return err
			}
			defer db.Close()

			err = db.SetUserLock(cmd.Context(), args[0], lock)
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("no user with email %q", args[0])
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "User '%s' %s.\n", args[0], done)
			return nil
		},
	}
}

func newSeedCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert sample agents and items into an empty database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := opts.open()
			if err != nil {
				return err
			}
			defer db.Close()
			n, err := seed(cmd.Context(), db)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Inserted %d rows.\n", n)
			return nil
		},
	}
}

// seed fills empty agent and item tables; tables that have rows are left alone.
func seed(ctx context.Context, db *store.Store) (int, error) {
	inserted := 0

	agents, err := db.GetAllAgents(ctx)
	if err != nil {
		return 0, err
	}
	if len(agents) == 0 {
		for _, name := range []string{"Northwind Traders", "Contoso Supply", "Fabrikam Retail"} {
			if err := db.CreateAgent(ctx, &models.Agent{AgentName: name}); err != nil {
				return inserted, err
			}
			inserted++
		}
	}

	items, err := db.GetAllItems(ctx)
	if err != nil {
		return inserted, err
	}
	if len(items) == 0 {
		for _, it := range []struct {
			name  string
			price string
		}{
			{"Notebook", "3.50"},
			{"Ballpoint Pen", "0.99"},
			{"Desk Lamp", "24.00"},
			{"Stapler", "7.25"},
			{"Printer Paper", "5.40"},
			{"Whiteboard Marker", "1.80"},
		} {
			item := &models.Item{ItemName: it.name, UnitPrice: decimal.RequireFromString(it.price)}
			if err := db.CreateItem(ctx, item); err != nil {
				return inserted, err
			}
			inserted++
		}
	}
	return inserted, nil
}
