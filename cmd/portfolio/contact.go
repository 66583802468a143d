package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"dipanshu.dev/internal/contact"
)

type contactFlags struct {
	name     string
	email    string
	message  string
	relayURL string
}

func newContactCmd(root *rootFlags) *cobra.Command {
	flags := &contactFlags{}

	cmd := &cobra.Command{
		Use:   "contact",
		Short: "Send a contact message through the form relay",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadEnv(root)
			if err != nil {
				return err
			}
			url := cfg.Relay.URL
			if flags.relayURL != "" {
				url = flags.relayURL
			}

			form := contact.NewForm(contact.NewHTTPRelay(url, cfg.Relay.Timeout))
			defer form.Close()

			form.OnChange(func(s contact.Snapshot) {
				log.WithFields(map[string]any{"status": s.Status}).Debug("form status changed")
			})

			for name, value := range map[string]string{
				"name":    flags.name,
				"email":   flags.email,
				"message": flags.message,
			} {
				if err := form.SetField(name, value); err != nil {
					return err
				}
			}

			submitErr := form.Submit(cmd.Context())
			snap := form.Snapshot()
			fmt.Fprintf(cmd.OutOrStdout(), "status: %s\n%s\n", snap.Status, snap.Message())

			if submitErr != nil {
				var re *contact.RelayError
				if errors.As(submitErr, &re) {
					return fmt.Errorf("%s failure (status %d)", contact.Category(submitErr), re.StatusCode)
				}
				return fmt.Errorf("%s failure: %w", contact.Category(submitErr), submitErr)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.name, "name", "", "Sender name")
	cmd.Flags().StringVar(&flags.email, "email", "", "Sender email")
	cmd.Flags().StringVar(&flags.message, "message", "", "Message body")
	cmd.Flags().StringVar(&flags.relayURL, "relay-url", "", "Relay endpoint (overrides RELAY_URL)")

	return cmd
}
