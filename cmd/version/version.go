package version

import (
	"fmt"

	"github.com/hpcops/slaunch/logger"
	"github.com/hpcops/slaunch/version"
	"github.com/spf13/cobra"
)

// Cmd represents the "version" command
var Cmd = &cobra.Command{
	Use: "version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.String())
	},
}

// Log logs build and version information to the given logger.
func Log(l logger.Logger) {
	l.Info("Version", version.LogFields()...)
}
