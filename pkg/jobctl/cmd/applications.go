package cmd

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jobtracker/jobtracker/pkg/jobctl/output"
	"github.com/jobtracker/jobtracker/pkg/store"
)

func NewApplicationsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "apps",
		Aliases: []string{"applications"},
		Short:   "Manage job applications",
	}
	cmd.AddCommand(
		newApplicationsListCommand(),
		newApplicationsGetCommand(),
		newApplicationsCreateCommand(),
		newApplicationsUpdateCommand(),
		newApplicationsDeleteCommand(),
	)
	return cmd
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q: must be a positive integer", arg)
	}
	return id, nil
}

func newApplicationsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List applications, most recently applied first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			apiClient, err := buildClient(rt, clientOptions{})
			if err != nil {
				return err
			}
			apps, err := apiClient.ListApplications(cmd.Context())
			if err != nil {
				return err
			}
			return rt.write(apps, func(w io.Writer) { output.WriteApplicationTable(w, apps) })
		},
	}
}

func newApplicationsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show an application with its interviews and skills",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			apiClient, err := buildClient(rt, clientOptions{})
			if err != nil {
				return err
			}
			detail, err := apiClient.GetApplication(cmd.Context(), id)
			if err != nil {
				return err
			}
			return rt.write(detail, func(w io.Writer) { output.WriteApplicationDetail(w, detail) })
		},
	}
}

// applicationFlags binds the editable application fields.
type applicationFlags struct {
	company     string
	position    string
	url         string
	date        string
	status      string
	salaryMin   int64
	salaryMax   int64
	location    string
	description string
	notes       string
}

func (f *applicationFlags) bind(fs *pflag.FlagSet) {
	fs.StringVar(&f.company, "company", "", "Company name")
	fs.StringVar(&f.position, "position", "", "Position title")
	fs.StringVar(&f.url, "url", "", "Job posting URL")
	fs.StringVar(&f.date, "date", "", "Date applied (YYYY-MM-DD, default today)")
	fs.StringVar(&f.status, "status", "", "Status: applied, phone_screen, technical, onsite, offer, rejected")
	fs.Int64Var(&f.salaryMin, "salary-min", 0, "Minimum salary")
	fs.Int64Var(&f.salaryMax, "salary-max", 0, "Maximum salary")
	fs.StringVar(&f.location, "location", "", "Location")
	fs.StringVar(&f.description, "description", "", "Job description")
	fs.StringVar(&f.notes, "notes", "", "Notes")
}

// apply copies the flags that were set on the command line onto app.
func (f *applicationFlags) apply(fs *pflag.FlagSet, app *store.Application) {
	if fs.Changed("company") {
		app.CompanyName = f.company
	}
	if fs.Changed("position") {
		app.PositionTitle = f.position
	}
	if fs.Changed("url") {
		app.JobURL = f.url
	}
	if fs.Changed("date") {
		app.DateApplied = f.date
	}
	if fs.Changed("status") {
		app.Status = store.Status(f.status)
	}
	if fs.Changed("salary-min") {
		v := f.salaryMin
		app.SalaryMin = &v
	}
	if fs.Changed("salary-max") {
		v := f.salaryMax
		app.SalaryMax = &v
	}
	if fs.Changed("location") {
		app.Location = f.location
	}
	if fs.Changed("description") {
		app.JobDescription = f.description
	}
	if fs.Changed("notes") {
		app.Notes = f.notes
	}
}

func newApplicationsCreateCommand() *cobra.Command {
	var flags applicationFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Record a new application",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			app := store.Application{DateApplied: time.Now().Format(store.DateLayout)}
			flags.apply(cmd.Flags(), &app)

			apiClient, err := buildClient(rt, clientOptions{})
			if err != nil {
				return err
			}
			created, err := apiClient.CreateApplication(cmd.Context(), app)
			if err != nil {
				return err
			}
			return rt.write(created, func(w io.Writer) {
				_, _ = fmt.Fprintf(w, "Application %d created: %s, %s\n", created.ID, created.CompanyName, created.PositionTitle)
			})
		},
	}
	flags.bind(cmd.Flags())
	_ = cmd.MarkFlagRequired("company")
	_ = cmd.MarkFlagRequired("position")
	return cmd
}

func newApplicationsUpdateCommand() *cobra.Command {
	var flags applicationFlags
	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Change fields of an application",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			apiClient, err := buildClient(rt, clientOptions{})
			if err != nil {
				return err
			}
			current, err := apiClient.GetApplication(cmd.Context(), id)
			if err != nil {
				return err
			}
			app := current.Application
			flags.apply(cmd.Flags(), &app)

			updated, err := apiClient.UpdateApplication(cmd.Context(), id, app)
			if err != nil {
				return err
			}
			return rt.write(updated, func(w io.Writer) {
				_, _ = fmt.Fprintf(w, "Application %d updated (status: %s)\n", updated.ID, updated.Status)
			})
		},
	}
	flags.bind(cmd.Flags())
	return cmd
}

func newApplicationsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete an application with its interviews and skills",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			apiClient, err := buildClient(rt, clientOptions{})
			if err != nil {
				return err
			}
			if err := apiClient.DeleteApplication(cmd.Context(), id); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(rt.Writer(), "Application %d deleted\n", id)
			return nil
		},
	}
}
