package main

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/connectro/backend/internal/models"
	"github.com/connectro/backend/internal/services"
)

var (
	seedUsername string
	seedEmail    string
	seedPassword string
)

var createUserCmd = &cobra.Command{
	Use:   "create-user",
	Short: "Register an account directly in the user store",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger := env(cmd)

		req := &models.RegisterRequest{Username: seedUsername, Email: seedEmail, Password: seedPassword}
		req.Normalize()
		if errs := req.Validate(); len(errs) > 0 {
			return validationError(errs)
		}

		store, err := connectStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer store.Close(context.Background())

		users := services.NewUserService(store, services.NewBcryptHasher(cfg.BcryptCost))
		user, err := users.Register(cmd.Context(), req)
		if err != nil {
			return fmt.Errorf("create user failed: %w", err)
		}

		logger.Info(cmd.Context(), "user created", "id", user.ID, "username", user.Username)
		fmt.Fprintln(cmd.OutOrStdout(), user.ID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(createUserCmd)

	createUserCmd.Flags().StringVar(&seedUsername, "username", "", "account username")
	createUserCmd.Flags().StringVar(&seedEmail, "email", "", "account email")
	createUserCmd.Flags().StringVar(&seedPassword, "password", "", "initial password")
	_ = createUserCmd.MarkFlagRequired("username")
	_ = createUserCmd.MarkFlagRequired("email")
	_ = createUserCmd.MarkFlagRequired("password")
}

func validationError(errs map[string]string) error {
	fields := make([]string, 0, len(errs))
	for field := range errs {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	msgs := make([]string, 0, len(fields))
	for _, f := range fields {
		msgs = append(msgs, f+": "+errs[f])
	}
	return errors.New(strings.Join(msgs, "; "))
}
