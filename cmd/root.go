// Package cmd contains the slaunch CLI commands.
package cmd

import (
	"github.com/hpcops/slaunch/cmd/cancel"
	"github.com/hpcops/slaunch/cmd/examples"
	"github.com/hpcops/slaunch/cmd/run"
	"github.com/hpcops/slaunch/cmd/status"
	"github.com/hpcops/slaunch/cmd/submit"
	"github.com/hpcops/slaunch/cmd/version"
	"github.com/spf13/cobra"
)

// RootCmd represents the root command
var RootCmd = &cobra.Command{
	Use:           "slaunch",
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	RootCmd.AddCommand(cancel.NewCommand())
	RootCmd.AddCommand(examples.Cmd)
	RootCmd.AddCommand(run.NewCommand())
	RootCmd.AddCommand(status.NewCommand())
	RootCmd.AddCommand(status.NewListCommand())
	RootCmd.AddCommand(submit.NewCommand())
	RootCmd.AddCommand(version.Cmd)
}
