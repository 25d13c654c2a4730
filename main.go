package main

import (
	"os"

	"github.com/hpcops/slaunch/cmd"
	"github.com/hpcops/slaunch/logger"
)

func main() {
	if err := cmd.RootCmd.Execute(); err != nil {
		logger.PrintSimpleError(err)
		os.Exit(1)
	}
}
