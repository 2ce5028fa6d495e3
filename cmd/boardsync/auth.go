package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

func loginCmd() *cobra.Command {
	var email, pushToken string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the board service",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup()
			if err != nil {
				return err
			}

			var password string
			form := huh.NewForm(
				huh.NewGroup(
					huh.NewInput().
						Title("Email").
						Value(&email).
						Validate(func(s string) error {
							if !strings.Contains(s, "@") {
								return fmt.Errorf("enter an email address")
							}
							return nil
						}),
					huh.NewInput().
						Title("Password").
						EchoMode(huh.EchoModePassword).
						Value(&password),
				),
			)
			if err := form.Run(); err != nil {
				return err
			}

			ctx := cmd.Context()
			if err := e.sess.Login(ctx, e.client, strings.TrimSpace(email), password); err != nil {
				return fmt.Errorf("login failed: %w", err)
			}
			if pushToken != "" {
				if err := e.sess.RegisterPushToken(ctx, e.client, pushToken, "terminal"); err != nil {
					return err
				}
			}

			me, err := e.client.Me(ctx)
			if err != nil {
				fmt.Println("Logged in.")
				return nil
			}
			fmt.Printf("Logged in as %s <%s>.\n", me.Name, me.Email)
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVar(&pushToken, "push-token", "", "device push token to register")

	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget stored credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup()
			if err != nil {
				return err
			}
			if err := e.sess.Logout(cmd.Context(), e.client); err != nil {
				return err
			}
			fmt.Println("Logged out.")
			return nil
		},
	}
}
