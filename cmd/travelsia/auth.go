package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/DevLuiggi/travelsia-go/pkg/gateway"
)

func newLoginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate and persist the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				email = prompt("Email: ")
			}
			if password == "" {
				password = prompt("Password: ")
			}

			ctx, cancel := cmdContext()
			defer cancel()

			if err := app.Session.Login(ctx, email, password); err != nil {
				return fmt.Errorf("%s", gateway.UserMessage(err))
			}

			st := app.Session.State()
			fmt.Printf("Logged in as %s (%s)\n", st.User.Email, st.User.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	return cmd
}

func newRegisterCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account (does not log in)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				email = prompt("Email: ")
			}
			if password == "" {
				password = prompt("Password: ")
			}

			ctx, cancel := cmdContext()
			defer cancel()

			req := gateway.RegisterRequest{Email: email, Password: password}
			if err := app.Session.Register(ctx, req); err != nil {
				return fmt.Errorf("%s", gateway.UserMessage(err))
			}

			fmt.Println("Account created. Run `travelsia login` to start a session.")
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the persisted session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Session.Logout()
			fmt.Println("Logged out.")
			return nil
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current session, preferences, and recent searches",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext()
			defer cancel()

			app.Session.CheckAuth(ctx)
			if !app.Session.State().Authenticated {
				fmt.Println("Not logged in.")
				return nil
			}

			// Preferences and history are independent reads.
			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error { return app.Session.FetchPreferences(gctx) })
			g.Go(func() error { return app.Flights.FetchSearchHistory(gctx, 5) })
			if err := g.Wait(); err != nil {
				return fmt.Errorf("%s", gateway.UserMessage(err))
			}

			st := app.Session.State()
			fmt.Printf("Logged in as %s (%s)\n", st.User.Email, st.User.Role)
			printPreferences(st.Preferences)
			printHistory(app.Flights.State().History)
			return nil
		},
	}
}

func newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or update the account profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext()
			defer cancel()

			if err := app.Session.FetchProfile(ctx); err != nil {
				return fmt.Errorf("%s", gateway.UserMessage(err))
			}
			st := app.Session.State()
			if st.User == nil {
				fmt.Println("Not logged in.")
				return nil
			}
			fmt.Printf("User ID: %s\nEmail:   %s\nRole:    %s\n", st.User.UserID, st.User.Email, st.User.Role)
			return nil
		},
	}

	var email string
	update := &cobra.Command{
		Use:   "update",
		Short: "Update profile fields",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext()
			defer cancel()

			req := gateway.UpdateProfileRequest{}
			if email != "" {
				req.Email = &email
			}
			if err := app.Session.UpdateProfile(ctx, req); err != nil {
				return fmt.Errorf("%s", gateway.UserMessage(err))
			}
			fmt.Println("Profile updated.")
			return nil
		},
	}
	update.Flags().StringVar(&email, "email", "", "new email")
	cmd.AddCommand(update)
	return cmd
}

func newPrefsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show or set travel preferences",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext()
			defer cancel()

			if err := app.Session.FetchPreferences(ctx); err != nil {
				return fmt.Errorf("%s", gateway.UserMessage(err))
			}
			printPreferences(app.Session.State().Preferences)
			return nil
		},
	}

	var style string
	var activities []string
	set := &cobra.Command{
		Use:   "set",
		Short: "Replace travel preferences",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext()
			defer cancel()

			prefs := gateway.UserPreferences{}
			if style != "" {
				s := gateway.TravelStyle(style)
				prefs.TravelStyle = &s
			}
			for _, a := range activities {
				prefs.FavoriteActivities = append(prefs.FavoriteActivities, gateway.ActivityType(a))
			}

			if err := app.Session.UpdatePreferences(ctx, prefs); err != nil {
				return fmt.Errorf("%s", gateway.UserMessage(err))
			}
			fmt.Println("Preferences updated.")
			printPreferences(app.Session.State().Preferences)
			return nil
		},
	}
	set.Flags().StringVar(&style, "style", "", "travel style: economic, balanced, or premium")
	set.Flags().StringSliceVar(&activities, "activities", nil, "favorite activities: culture, nature, gastronomy, nightlife")
	cmd.AddCommand(set)
	return cmd
}

func printPreferences(prefs *gateway.UserPreferences) {
	if prefs == nil {
		fmt.Println("Preferences: not set")
		return
	}
	style := "not set"
	if prefs.TravelStyle != nil {
		style = string(*prefs.TravelStyle)
	}
	acts := make([]string, 0, len(prefs.FavoriteActivities))
	for _, a := range prefs.FavoriteActivities {
		acts = append(acts, string(a))
	}
	fmt.Printf("Travel style: %s\n", style)
	if len(acts) > 0 {
		fmt.Printf("Activities:   %s\n", strings.Join(acts, ", "))
	}
}

func prompt(label string) string {
	fmt.Print(label)
	reader := bufio.NewReader(os.Stdin)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}
