package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"attribution-console/pkg/client"
	"attribution-console/pkg/config"
	"attribution-console/pkg/logger"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newAPIClient() (*client.Client, error) {
	cfg, err := config.Load("attribution-console-cli")
	if err != nil {
		return nil, err
	}

	if err := logger.InitLogger(&logger.LogConfig{
		Level:       cfg.Log.Level,
		Environment: cfg.Server.Env,
		ServiceName: cfg.ServiceName,
		File:        cfg.Log.File,
		MaxSizeMB:   cfg.Log.MaxSizeMB,
		MaxBackups:  cfg.Log.MaxBackups,
		MaxAgeDays:  cfg.Log.MaxAgeDays,
	}); err != nil {
		return nil, err
	}

	return client.New(&client.Config{
		BaseURL:         cfg.Client.BaseURL,
		Timeout:         cfg.Client.Timeout,
		CredentialsFile: cfg.Client.CredentialsFile,
		Logger:          logger.GetLogger(),
		OnSessionExpired: func() {
			fmt.Fprintln(os.Stderr, "Session expired. Please log in again.")
		},
	}), nil
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "console",
		Short:         "Operator console for the attribution analytics platform",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newLoginCommand())
	cmd.AddCommand(newSignupCommand())
	cmd.AddCommand(newLogoutCommand())
	cmd.AddCommand(newWhoamiCommand())
	cmd.AddCommand(newAlertsCommand())
	return cmd
}

func newLoginCommand() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate and store a session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" || password == "" {
				return fmt.Errorf("please fill in all fields: --email and --password are required")
			}
			api, err := newAPIClient()
			if err != nil {
				return err
			}
			user, err := api.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			fmt.Printf("Logged in as %s (tenant %d)\n", user.Email, user.TenantID)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	return cmd
}

func newSignupCommand() *cobra.Command {
	var firstName, lastName, email, password string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and log in",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" || password == "" || firstName == "" {
				return fmt.Errorf("please fill in all fields: --first-name, --email and --password are required")
			}
			api, err := newAPIClient()
			if err != nil {
				return err
			}
			user, err := api.Signup(cmd.Context(), firstName, lastName, email, password)
			if err != nil {
				return err
			}
			fmt.Printf("Account created. Logged in as %s (tenant %d)\n", user.Email, user.TenantID)
			return nil
		},
	}

	cmd.Flags().StringVar(&firstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&lastName, "last-name", "", "Last name")
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	return cmd
}

func newLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := newAPIClient()
			if err != nil {
				return err
			}
			api.Logout()
			fmt.Println("Logged out.")
			return nil
		},
	}
}

func newWhoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := newAPIClient()
			if err != nil {
				return err
			}
			session := api.Sessions().Current()
			if !session.IsAuthenticated() {
				fmt.Println("Not logged in.")
				return nil
			}
			fmt.Printf("%s %s <%s> (user %d, tenant %d)\n",
				session.User.FirstName, session.User.LastName,
				session.User.Email, session.User.ID, session.User.TenantID)
			return nil
		},
	}
}

func newAlertsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "Alert listing and acknowledgement",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newAlertsListCommand())
	cmd.AddCommand(newAlertsAckCommand())
	cmd.AddCommand(newAlertsWatchCommand())
	return cmd
}

func newAlertsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List current alerts",
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := newAPIClient()
			if err != nil {
				return err
			}
			alerts, err := api.FetchAlerts(cmd.Context())
			if err != nil {
				return err
			}
			center := client.NewNotificationCenter()
			center.Load(alerts)
			printNotifications(center)
			return nil
		},
	}
}

func newAlertsAckCommand() *cobra.Command {
	var id uint

	cmd := &cobra.Command{
		Use:   "ack",
		Short: "Acknowledge an alert",
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := newAPIClient()
			if err != nil {
				return err
			}
			if err := api.AcknowledgeAlert(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Printf("Alert %d acknowledged.\n", id)
			return nil
		},
	}

	cmd.Flags().UintVar(&id, "id", 0, "Alert ID")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func newAlertsWatchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Poll alerts continuously until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := newAPIClient()
			if err != nil {
				return err
			}
			cfg, err := config.Load("attribution-console-cli")
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			center := client.NewNotificationCenter()
			poller := client.NewAlertPoller(api, center, cfg.Client.PollInterval, logger.GetLogger())

			logger.GetLogger().Info("watching alerts",
				zap.Duration("interval", cfg.Client.PollInterval))
			poller.Run(ctx)

			printNotifications(center)
			return nil
		},
	}
}

func printNotifications(center *client.NotificationCenter) {
	notifications := center.Notifications()
	if len(notifications) == 0 {
		fmt.Println("No active alerts.")
		return
	}
	for _, n := range notifications {
		marker := " "
		if !n.Acknowledged {
			marker = "*"
		}
		fmt.Printf("%s [%s] #%d %s: %s (%s)\n",
			marker, n.Severity, n.ID, n.Title, n.Description,
			n.TriggeredAt.Format("2006-01-02 15:04:05"))
	}
	fmt.Printf("%d unread of %d\n", center.UnreadCount(), len(notifications))
}
