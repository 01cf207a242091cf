package cmd

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jobtracker/jobtracker/pkg/client"
	"github.com/jobtracker/jobtracker/pkg/jobctl/config"
	"github.com/jobtracker/jobtracker/pkg/jobctl/credentials"
	"github.com/jobtracker/jobtracker/pkg/jobctl/output"
)

type Config struct {
	ConfigPath   string
	OutputWriter io.Writer
	ErrWriter    io.Writer
	Stdin        io.Reader
	// Credentials defaults to the OS keyring.
	Credentials credentials.Store
	// Password overrides the interactive password prompt.
	Password client.PasswordFunc
}

type runtimeState struct {
	configPath     string
	cfg            *config.Config
	outputFormat   string
	serverOverride string
	nonInteractive bool
	verbose        bool
	writer         io.Writer
	errWriter      io.Writer
	stdin          io.Reader
	creds          credentials.Store
	password       client.PasswordFunc
}

type runtimeKey struct{}

func DefaultConfig() Config {
	return Config{
		ConfigPath:   config.DefaultConfigPath(),
		OutputWriter: os.Stdout,
		ErrWriter:    os.Stderr,
		Stdin:        os.Stdin,
	}
}

func NewRootCommand(cfg Config) *cobra.Command {
	rt := &runtimeState{
		configPath: cfg.ConfigPath,
		writer:     cfg.OutputWriter,
		errWriter:  cfg.ErrWriter,
		stdin:      cfg.Stdin,
		creds:      cfg.Credentials,
		password:   cfg.Password,
	}

	root := &cobra.Command{
		Use:           "jobctl",
		Short:         "Job application tracker CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if rt.writer == nil {
				rt.writer = os.Stdout
			}
			if rt.errWriter == nil {
				rt.errWriter = os.Stderr
			}
			if rt.stdin == nil {
				rt.stdin = os.Stdin
			}
			if rt.creds == nil {
				rt.creds = credentials.NewKeyring()
			}
			if rt.configPath == "" {
				rt.configPath = config.DefaultConfigPath()
			}
			if rt.outputFormat == "" {
				rt.outputFormat = os.Getenv("JOBCTL_OUTPUT")
			}
			if rt.serverOverride == "" {
				rt.serverOverride = os.Getenv("JOBCTL_SERVER")
			}
			if !rt.nonInteractive {
				rt.nonInteractive = strings.EqualFold(os.Getenv("JOBCTL_NON_INTERACTIVE"), "true")
			}
			if !rt.verbose {
				rt.verbose = strings.EqualFold(os.Getenv("JOBCTL_VERBOSE"), "true")
			}

			if cmd.Name() == "version" || cmd.Name() == "completion" {
				return nil
			}
			cfg, err := config.LoadOrDefault(rt.configPath)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			rt.cfg = cfg
			_, err = rt.OutputFormat()
			return err
		},
	}

	root.PersistentFlags().StringVar(&rt.configPath, "config", rt.configPath, "Path to config file")
	root.PersistentFlags().StringVarP(&rt.outputFormat, "output", "o", "", "Output format: table, json, yaml")
	root.PersistentFlags().StringVar(&rt.serverOverride, "server", "", "Server URL override")
	root.PersistentFlags().BoolVar(&rt.nonInteractive, "non-interactive", false, "Fail instead of prompting for the password")
	root.PersistentFlags().BoolVarP(&rt.verbose, "verbose", "v", false, "Log each request with its request ID")

	root.SetContext(context.WithValue(context.Background(), runtimeKey{}, rt))

	root.AddCommand(
		NewLoginCommand(),
		NewLogoutCommand(),
		NewStatusCommand(),
		NewApplicationsCommand(),
		NewInterviewsCommand(),
		NewSkillsCommand(),
		NewAnalyticsCommand(),
		NewCompletionCommand(),
		NewVersionCommand(),
	)

	return root
}

func getRuntime(cmd *cobra.Command) (*runtimeState, error) {
	rt, ok := cmd.Context().Value(runtimeKey{}).(*runtimeState)
	if !ok || rt == nil {
		return nil, errors.New("runtime not initialized")
	}
	return rt, nil
}

func (rt *runtimeState) OutputFormat() (output.Format, error) {
	format := rt.outputFormat
	if format == "" && rt.cfg != nil {
		format = rt.cfg.Settings.OutputFormat
	}
	return output.ParseFormat(format)
}

func (rt *runtimeState) Writer() io.Writer {
	if rt.writer != nil {
		return rt.writer
	}
	return os.Stdout
}

func (rt *runtimeState) Server() string {
	if rt.serverOverride != "" {
		return strings.TrimRight(rt.serverOverride, "/")
	}
	if rt.cfg != nil && rt.cfg.Server != "" {
		return strings.TrimRight(rt.cfg.Server, "/")
	}
	return config.DefaultServer
}

// write renders obj in the selected format, using table for the table format.
func (rt *runtimeState) write(obj any, table func(io.Writer)) error {
	format, err := rt.OutputFormat()
	if err != nil {
		return err
	}
	return output.Write(rt.Writer(), format, obj, table)
}
