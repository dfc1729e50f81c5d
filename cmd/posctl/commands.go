package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/tastetab/internal/bootstrap"
	"github.com/example/tastetab/internal/config"
	"github.com/example/tastetab/internal/models"
	"github.com/example/tastetab/internal/seed"
	"github.com/example/tastetab/internal/store"
	"github.com/example/tastetab/internal/utils"
)

type configKey struct{}

func withConfig(ctx context.Context, cfg *config.Config) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, configKey{}, cfg)
}

func configFrom(ctx context.Context) *config.Config {
	cfg, _ := ctx.Value(configKey{}).(*config.Config)
	return cfg
}

// withStore opens the configured backend, runs fn and closes the store.
func withStore(cmd *cobra.Command, fn func(ctx context.Context, st store.Store) error) error {
	ctx := cmd.Context()
	cfg := configFrom(ctx)
	if cfg == nil {
		return errors.New("configuration not loaded")
	}

	st, err := bootstrap.OpenStore(ctx, cfg.DatabaseURL, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer st.Close(context.Background())

	return fn(ctx, st)
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create tables and indexes in the configured database",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(ctx context.Context, st store.Store) error {
				fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date.")
				return nil
			})
		},
	}
}

func seedItemsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed-items",
		Short: "Insert the embedded starter menu",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(ctx context.Context, st store.Store) error {
				n, err := seedItems(ctx, st)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Inserted %d items.\n", n)
				return nil
			})
		},
	}
}

func seedItems(ctx context.Context, items store.ItemStore) (int, error) {
	dataset, err := seed.Items()
	if err != nil {
		return 0, err
	}
	if err := items.CreateItems(ctx, dataset); err != nil {
		return 0, fmt.Errorf("insert items: %w", err)
	}
	return len(dataset), nil
}

type createUserOptions struct {
	Username string
	Email    string
	Password string
	Role     string
	Phone    string
}

func createUserCmd() *cobra.Command {
	var opts createUserOptions

	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create an account without going through the HTTP registration",
		Example: `  posctl create-user --username owner --email owner@example.com \
    --password 'S3cret!pass' --role admin`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(ctx context.Context, st store.Store) error {
				user, err := createUser(ctx, st, opts)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created %s %s (%s).\n", user.Role, user.Username, user.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&opts.Username, "username", "", "Unique username")
	cmd.Flags().StringVar(&opts.Email, "email", "", "Unique email address")
	cmd.Flags().StringVar(&opts.Password, "password", "", "Plain-text password, hashed before storage")
	cmd.Flags().StringVar(&opts.Role, "role", string(models.RoleAdmin), "admin or user")
	cmd.Flags().StringVar(&opts.Phone, "phone", "", "Optional 10-digit phone number")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func createUser(ctx context.Context, users store.UserStore, opts createUserOptions) (*models.User, error) {
	if opts.Username == "" || opts.Email == "" || opts.Password == "" {
		return nil, errors.New("username, email and password are required")
	}
	role := models.Role(opts.Role)
	if !role.Valid() {
		return nil, fmt.Errorf("invalid role %q: must be admin or user", opts.Role)
	}
	if opts.Phone != "" && !utils.ValidPhone(opts.Phone) {
		return nil, fmt.Errorf("invalid phone %q: must be 10 digits", opts.Phone)
	}

	existing, err := users.FindConflictingUser(ctx, opts.Username, opts.Email, opts.Phone)
	switch {
	case err == nil:
		return nil, fmt.Errorf("%s already exists", store.ConflictField(existing, opts.Username, opts.Email, opts.Phone))
	case !errors.Is(err, store.ErrNotFound):
		return nil, err
	}

	hash, err := utils.HashPassword(opts.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{Username: opts.Username, Email: opts.Email, PasswordHash: hash, Role: role}
	if opts.Phone != "" {
		phone := opts.Phone
		user.Phone = &phone
	}
	if err := users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
