package main

import (
	"errors"
	"fmt"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"

	"github.com/eringen/folio"
	"github.com/eringen/folio/logger"
)

const (
	usernameFlag = "username"
	emailFlag    = "email"
	passwordFlag = "password"
)

var adminFlags = map[string]cobraflags.Flag{
	usernameFlag: &cobraflags.StringFlag{
		Name:  usernameFlag,
		Value: "admin",
		Usage: "Username for the new admin",
	},
	emailFlag: &cobraflags.StringFlag{
		Name:  emailFlag,
		Value: "",
		Usage: "Email address used to sign in (required)",
	},
	passwordFlag: &cobraflags.StringFlag{
		Name:  passwordFlag,
		Value: "",
		Usage: "Password, at least 6 characters (required)",
	},
}

func newCreateAdminCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account",
		Long: `Create an admin account in the configured database, applying
pending migrations first.`,
		RunE: createAdminCommand,
	}
	cobraflags.RegisterMap(cmd, adminFlags)
	return cmd
}

func createAdminCommand(cmd *cobra.Command, _ []string) error {
	in := folio.UserInput{
		Username: adminFlags[usernameFlag].GetString(),
		Email:    adminFlags[emailFlag].GetString(),
		Password: adminFlags[passwordFlag].GetString(),
		IsAdmin:  true,
	}
	if in.Email == "" || in.Password == "" {
		return errors.New("--email and --password are required")
	}
	if len(in.Password) < 6 {
		return errors.New("password must be at least 6 characters")
	}

	store, cfg, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()
	if err := store.Migrate(ctx); err != nil {
		return err
	}
	log := logger.New(logger.Options{Debug: cfg.Debug, Environment: cfg.Environment})
	svc := folio.NewService(store, nil, log)
	u, err := svc.CreateUser(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "admin %q created (id %d)\n", u.Username, u.ID)
	return nil
}
