// Package run contains the "slaunch run" command, which executes a
// job's steps on the host it is started on.
package run

import (
	"context"
	"fmt"
	"syscall"
	"time"

	cmdutil "github.com/hpcops/slaunch/cmd/util"
	version "github.com/hpcops/slaunch/cmd/version"
	"github.com/hpcops/slaunch/config"
	"github.com/hpcops/slaunch/job"
	"github.com/hpcops/slaunch/logger"
	"github.com/hpcops/slaunch/util"
	"github.com/hpcops/slaunch/worker"
	"github.com/spf13/cobra"
)

// NewCommand returns the run command
func NewCommand() *cobra.Command {
	cmd, _ := newCommandHooks()
	return cmd
}

type hooks struct {
	Run func(ctx context.Context, conf config.Config, runID, jobPath string) error
}

func newCommandHooks() (*cobra.Command, *hooks) {
	hooks := &hooks{
		Run: Run,
	}

	var (
		configFile string
		conf       config.Config
		flagConf   config.Config
		runID      string
	)

	cmd := &cobra.Command{
		Use:   "run [job file]",
		Short: "Run a job's steps on this host.",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			var err error

			conf, err = cmdutil.MergeConfigFileWithFlags(configFile, flagConf)
			if err != nil {
				return fmt.Errorf("error processing config: %v", err)
			}

			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if runID == "" {
				runID = util.GenRunID()
			}
			return hooks.Run(context.Background(), conf, runID, args[0])
		},
	}

	cmd.SetGlobalNormalizationFunc(cmdutil.NormalizeFlags)
	f := cmd.Flags()
	f.AddFlagSet(cmdutil.RunFlags(&flagConf, &configFile))
	f.StringVar(&runID, "run-id", runID, "Run ID. Normally set by the submit script; generated when empty.")

	return cmd, hooks
}

// Run loads the job file and executes its steps. An error is returned
// if the environment couldn't be prepared or any step failed.
func Run(ctx context.Context, conf config.Config, runID, jobPath string) error {
	log := logger.NewLogger("run", conf.Logger)
	version.Log(log)

	j, err := job.LoadFile(jobPath)
	if err != nil {
		return err
	}

	writer, cleanup, err := cmdutil.NewEventWriters(conf)
	if err != nil {
		return err
	}
	defer cleanup()

	// Cancel the run cleanly when the scheduler or the user sends a
	// termination signal.
	ctx = util.SignalContext(ctx, time.Nanosecond, syscall.SIGINT, syscall.SIGTERM)

	r := worker.NewRunner(conf, j, runID, writer)
	res := r.Run(ctx)

	log.Info("Run finished", "runID", runID, "state", res.State)
	for _, s := range res.Steps {
		log.Info("Step result", "step", s.Index, "name", s.Name,
			"exitCode", s.ExitCode, "error", s.Error)
	}

	if !res.OK() {
		return fmt.Errorf("run %s failed with state %s", runID, res.State)
	}
	return nil
}
