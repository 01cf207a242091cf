package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jobtracker/jobtracker/pkg/store"
)

func NewInterviewsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "interviews",
		Aliases: []string{"interview"},
		Short:   "Record interview rounds",
	}
	cmd.AddCommand(newInterviewsAddCommand(), newInterviewsDeleteCommand())
	return cmd
}

func newInterviewsAddCommand() *cobra.Command {
	var iv store.Interview
	var roundType, outcome string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an interview round to an application",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			iv.RoundType = store.RoundType(roundType)
			iv.Outcome = store.Outcome(outcome)

			apiClient, err := buildClient(rt, clientOptions{})
			if err != nil {
				return err
			}
			created, err := apiClient.CreateInterview(cmd.Context(), iv)
			if err != nil {
				return err
			}
			return rt.write(created, func(w io.Writer) {
				_, _ = fmt.Fprintf(w, "Interview %d added to application %d\n", created.ID, created.ApplicationID)
			})
		},
	}
	cmd.Flags().Int64Var(&iv.ApplicationID, "application-id", 0, "Application the round belongs to")
	cmd.Flags().StringVar(&iv.InterviewDate, "date", "", "Interview date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&roundType, "round", "", "Round type: phone, technical, behavioral, onsite")
	cmd.Flags().StringVar(&iv.InterviewerName, "interviewer", "", "Interviewer name")
	cmd.Flags().StringVar(&iv.QuestionsAsked, "questions", "", "Questions asked")
	cmd.Flags().StringVar(&iv.MyAnswers, "answers", "", "Your answers")
	cmd.Flags().StringVar(&outcome, "outcome", "", "Outcome: pending, passed, failed (default pending)")
	cmd.Flags().StringVar(&iv.Notes, "notes", "", "Notes")
	_ = cmd.MarkFlagRequired("application-id")
	return cmd
}

func newInterviewsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete an interview round",
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
			if err := apiClient.DeleteInterview(cmd.Context(), id); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(rt.Writer(), "Interview %d deleted\n", id)
			return nil
		},
	}
}

func NewSkillsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "skills",
		Aliases: []string{"skill"},
		Short:   "Tag applications with skills",
	}
	cmd.AddCommand(newSkillsAddCommand(), newSkillsDeleteCommand())
	return cmd
}

func newSkillsAddCommand() *cobra.Command {
	var sk store.Skill
	var skillType string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Tag an application with a skill",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			sk.SkillType = store.SkillType(skillType)

			apiClient, err := buildClient(rt, clientOptions{})
			if err != nil {
				return err
			}
			created, err := apiClient.CreateSkill(cmd.Context(), sk)
			if err != nil {
				return err
			}
			return rt.write(created, func(w io.Writer) {
				_, _ = fmt.Fprintf(w, "Skill %q (%s) added to application %d\n", created.SkillName, created.SkillType, created.ApplicationID)
			})
		},
	}
	cmd.Flags().Int64Var(&sk.ApplicationID, "application-id", 0, "Application to tag")
	cmd.Flags().StringVar(&sk.SkillName, "name", "", "Skill name")
	cmd.Flags().StringVar(&skillType, "type", "", "Skill type: required, preferred, nice-to-have (default required)")
	_ = cmd.MarkFlagRequired("application-id")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newSkillsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Remove a skill tag",
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
			if err := apiClient.DeleteSkill(cmd.Context(), id); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(rt.Writer(), "Skill %d deleted\n", id)
			return nil
		},
	}
}
