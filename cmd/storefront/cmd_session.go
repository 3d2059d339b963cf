package main

import (
	"context"
	"fmt"

	"github.com/fjod/go_cart/storefront/internal/app"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/service"
	"github.com/spf13/cobra"
)

var (
	loginEmail    string
	loginPassword string

	registerName    string
	registerEmail   string
	registerPass    string
	registerConfirm string
	registerRole    string

	contactName    string
	contactEmail   string
	contactMessage string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store the session token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return dispatch(cmd, app.Login{Email: loginEmail, Password: loginPassword})
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a shopper account and log in",
	Long: `Create a shopper account and log in.

Registration always creates a regular user; a requested --role is ignored.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return dispatch(cmd, app.Register{RegisterInput: service.RegisterInput{
			Name:            registerName,
			Email:           registerEmail,
			Password:        registerPass,
			ConfirmPassword: registerConfirm,
			Role:            domain.Role(registerRole),
		}})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and empty the cart",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return dispatch(cmd, app.Logout{})
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the restored session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withController(cmd.Context(), func(_ context.Context, ctrl *app.Controller) error {
			return printResult(cmd.OutOrStdout(), app.Result{State: ctrl.State()})
		})
	},
}

var navCmd = &cobra.Command{
	Use:       "nav <page>",
	Short:     "Open a page (home, products, cart, admin, about, contact)",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"home", "products", "cart", "admin", "about", "contact"},
	RunE: func(cmd *cobra.Command, args []string) error {
		page, err := domain.ParsePage(args[0])
		if err != nil {
			return err
		}
		return dispatch(cmd, app.Navigate{Page: page})
	},
}

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "Fetch and list all products",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withController(cmd.Context(), func(ctx context.Context, ctrl *app.Controller) error {
			if _, err := ctrl.Dispatch(ctx, app.RefreshCatalog{}); err != nil {
				return err
			}
			res, err := ctrl.Dispatch(ctx, app.Navigate{Page: domain.PageProducts})
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), res)
		})
	},
}

var checkoutCmd = &cobra.Command{
	Use:   "checkout",
	Short: "Place the order for the current cart",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return dispatch(cmd, app.Checkout{})
	},
}

var contactCmd = &cobra.Command{
	Use:   "contact",
	Short: "Send a message to the shop",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return dispatch(cmd, app.SubmitContact{Name: contactName, Email: contactEmail, Message: contactMessage})
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Account email (required)")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Account password (required)")
	_ = loginCmd.MarkFlagRequired("email")
	_ = loginCmd.MarkFlagRequired("password")

	registerCmd.Flags().StringVar(&registerName, "name", "", "Display name")
	registerCmd.Flags().StringVar(&registerEmail, "email", "", "Account email (required)")
	registerCmd.Flags().StringVar(&registerPass, "password", "", "Password, at least 6 characters (required)")
	registerCmd.Flags().StringVar(&registerConfirm, "confirm", "", "Password confirmation (required)")
	registerCmd.Flags().StringVar(&registerRole, "role", "", "Requested role (ignored)")
	_ = registerCmd.MarkFlagRequired("email")
	_ = registerCmd.MarkFlagRequired("password")
	_ = registerCmd.MarkFlagRequired("confirm")

	contactCmd.Flags().StringVar(&contactName, "name", "", "Your name")
	contactCmd.Flags().StringVar(&contactEmail, "email", "", "Your email")
	contactCmd.Flags().StringVar(&contactMessage, "message", "", "Message text")

	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd, whoamiCmd, navCmd, productsCmd, checkoutCmd, contactCmd)
}

// dispatch runs a single action against the restored session and prints the outcome.
func dispatch(cmd *cobra.Command, a app.Action) error {
	return withController(cmd.Context(), func(ctx context.Context, ctrl *app.Controller) error {
		res, err := ctrl.Dispatch(ctx, a)
		if err != nil {
			return err
		}
		if err := printResult(cmd.OutOrStdout(), res); err != nil {
			return fmt.Errorf("failed to print result: %w", err)
		}
		return nil
	})
}
