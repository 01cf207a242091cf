package main

import (
	"fmt"
	"os"

	jobctlcmd "github.com/jobtracker/jobtracker/pkg/jobctl/cmd"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	root := jobctlcmd.NewRootCommand(jobctlcmd.DefaultConfig())
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}
