package cmd

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/jobtracker/jobtracker/pkg/jobctl/output"
)

func NewAnalyticsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Dashboard analytics",
	}
	cmd.AddCommand(
		newAnalyticsStatusCommand(),
		newAnalyticsSkillsCommand(),
		newAnalyticsTimelineCommand(),
	)
	return cmd
}

func newAnalyticsStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Count applications per status",
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
			rows, err := apiClient.StatusBreakdown(cmd.Context())
			if err != nil {
				return err
			}
			return rt.write(rows, func(w io.Writer) { output.WriteStatusTable(w, rows) })
		},
	}
}

func newAnalyticsSkillsCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "skills",
		Short: "Most requested skills across applications",
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
			rows, err := apiClient.TopSkills(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return rt.write(rows, func(w io.Writer) { output.WriteSkillTable(w, rows) })
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Number of skills to show (server default when 0)")
	return cmd
}

func newAnalyticsTimelineCommand() *cobra.Command {
	var weeks int
	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "Applications per week, most recent first",
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
			rows, err := apiClient.Timeline(cmd.Context(), weeks)
			if err != nil {
				return err
			}
			return rt.write(rows, func(w io.Writer) { output.WriteTimelineTable(w, rows) })
		},
	}
	cmd.Flags().IntVar(&weeks, "weeks", 0, "Number of weeks to show (server default when 0)")
	return cmd
}
