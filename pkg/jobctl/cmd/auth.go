package cmd

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/jobtracker/jobtracker/pkg/client"
	"github.com/jobtracker/jobtracker/pkg/jobctl/credentials"
)

func NewLoginCommand() *cobra.Command {
	var passwordStdin bool
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with the admin password and store the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			var password string
			if passwordStdin {
				password, err = readLine(rt.stdin)
			} else {
				password, err = rt.passwordFunc()(cmd.Context())
			}
			if err != nil {
				return err
			}
			apiClient, err := buildClient(rt, clientOptions{noPrompt: true})
			if err != nil {
				return err
			}
			if err := apiClient.Login(cmd.Context(), password); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(rt.Writer(), "Logged in to %s\n", rt.Server())
			return nil
		},
	}
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from stdin")
	return cmd
}

func NewLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and remove the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			apiClient, err := buildClient(rt, clientOptions{noPrompt: true})
			if err != nil {
				return err
			}
			if err := apiClient.Logout(cmd.Context()); err != nil {
				_, _ = fmt.Fprintf(rt.errWriter, "warning: server logout failed: %v\n", err)
			}
			_, _ = fmt.Fprintf(rt.Writer(), "Logged out of %s\n", rt.Server())
			return nil
		},
	}
}

type statusReport struct {
	Server  string `json:"server" yaml:"server"`
	Healthy bool   `json:"healthy" yaml:"healthy"`
	Session string `json:"session" yaml:"session"`
	Error   string `json:"error,omitempty" yaml:"error,omitempty"`
}

const (
	sessionNone    = "none"
	sessionValid   = "valid"
	sessionExpired = "expired"
	sessionUnknown = "unknown"
)

func NewStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show server health and whether the stored session is accepted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			apiClient, err := buildClient(rt, clientOptions{noPrompt: true})
			if err != nil {
				return err
			}
			report := statusReport{Server: rt.Server(), Session: sessionNone}
			if err := apiClient.Health(cmd.Context()); err != nil {
				report.Error = err.Error()
			} else {
				report.Healthy = true
			}

			if _, err := rt.creds.Get(rt.Server()); err == nil {
				_, err := apiClient.StatusBreakdown(cmd.Context())
				switch {
				case err == nil:
					report.Session = sessionValid
				case client.IsStatus(err, http.StatusUnauthorized):
					report.Session = sessionExpired
				default:
					report.Session = sessionUnknown
					if report.Error == "" {
						report.Error = err.Error()
					}
				}
			} else if !errors.Is(err, credentials.ErrNotFound) {
				report.Session = sessionUnknown
				report.Error = err.Error()
			}

			return rt.write(report, func(w io.Writer) {
				health := "unreachable"
				if report.Healthy {
					health = "ok"
				}
				_, _ = fmt.Fprintf(w, "Server:  %s\nHealth:  %s\nSession: %s\n", report.Server, health, report.Session)
				if report.Error != "" {
					_, _ = fmt.Fprintf(w, "Error:   %s\n", report.Error)
				}
			})
		},
	}
}
