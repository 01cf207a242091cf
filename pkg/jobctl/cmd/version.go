package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jobtracker/jobtracker/pkg/version"
)

func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show jobctl version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			info := version.GetBuildInfo()
			return rt.write(info, func(w io.Writer) {
				_, _ = fmt.Fprintf(w, "jobctl %s\n", info)
			})
		},
	}
}
