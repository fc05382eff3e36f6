package main

import (
	"context"
	"fmt"
	"os"
	_ "time/tzdata"

	"clinic-front-desk/cmd/bootstrap"
	"clinic-front-desk/internal/delivery/dto"
	"clinic-front-desk/internal/infrastructure/database"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "clinic",
		Short:         "Clinic front-desk API",
		SilenceUsage:  true,
		SilenceErrors: true,
		// Running without a subcommand serves the API
		RunE: runServe,
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the HTTP server",
			RunE:  runServe,
		},
		newMigrateCmd(),
		newUserCmd(),
	)

	return root
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, err := bootstrap.Load()
	if err != nil {
		logrus.Fatalf("Failed to initialize application: %v", err)
	}

	app, err := bootstrap.New(cfg, log)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	app.Run()
	return nil
}

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back the PostgreSQL schema",
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back the last --steps migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return migrate(func(m *database.Migrator) error { return m.Down(steps) })
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back, 0 for all")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				return migrate(func(m *database.Migrator) error { return m.Up() })
			},
		},
		down,
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			RunE: func(cmd *cobra.Command, args []string) error {
				return migrate(func(m *database.Migrator) error {
					version, dirty, err := m.Version()
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", version, dirty)
					return nil
				})
			},
		},
	)

	return cmd
}

func migrate(fn func(*database.Migrator) error) error {
	cfg, log, err := bootstrap.Load()
	if err != nil {
		return err
	}

	if err := bootstrap.RunMigrations(cfg, log, fn); err != nil {
		log.Errorf("Migration failed: %v", err)
		return err
	}
	return nil
}

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}

	var req dto.CreateUserRequest
	createAdmin := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap.Load()
			if err != nil {
				return err
			}

			user, err := bootstrap.CreateAdmin(context.Background(), cfg, log, &req)
			if err != nil {
				log.Errorf("Failed to create admin: %v", err)
				return err
			}

			log.Infof("Admin %s created with ID %s", user.Username, user.ID)
			return nil
		},
	}
	createAdmin.Flags().StringVar(&req.Username, "username", "", "login name")
	createAdmin.Flags().StringVar(&req.Password, "password", "", "initial password")
	createAdmin.Flags().StringVar(&req.Name, "name", "Administrator", "display name")
	_ = createAdmin.MarkFlagRequired("username")
	_ = createAdmin.MarkFlagRequired("password")

	cmd.AddCommand(createAdmin)
	return cmd
}
