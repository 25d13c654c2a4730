// Package submit contains the "slaunch submit" command, which submits
// jobs to the scheduler.
package submit

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/gammazero/workerpool"
	multierror "github.com/hashicorp/go-multierror"
	cmdutil "github.com/hpcops/slaunch/cmd/util"
	version "github.com/hpcops/slaunch/cmd/version"
	"github.com/hpcops/slaunch/config"
	"github.com/hpcops/slaunch/events"
	"github.com/hpcops/slaunch/job"
	"github.com/hpcops/slaunch/logger"
	"github.com/hpcops/slaunch/util"
	"github.com/spf13/cobra"
)

// maxConcurrentSubmits caps how many jobs are submitted to the
// scheduler at once.
const maxConcurrentSubmits = 4

// NewCommand returns the submit command
func NewCommand() *cobra.Command {
	var (
		configFile string
		conf       config.Config
		flagConf   config.Config
		dryRun     bool
		wait       bool
	)

	cmd := &cobra.Command{
		Use:   "submit [job files...]",
		Short: "Submit jobs to the scheduler.",
		Args:  cobra.MinimumNArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			var err error

			conf, err = cmdutil.MergeConfigFileWithFlags(configFile, flagConf)
			if err != nil {
				return fmt.Errorf("error processing config: %v", err)
			}

			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if dryRun {
				return dryRunJobs(conf, args, cmd.OutOrStdout())
			}
			return submitJobs(context.Background(), conf, args, wait)
		},
	}

	cmd.SetGlobalNormalizationFunc(cmdutil.NormalizeFlags)
	f := cmd.Flags()
	f.AddFlagSet(cmdutil.SubmitFlags(&flagConf, &configFile))
	f.BoolVar(&dryRun, "dry-run", false, "Print the rendered submit scripts and exit without submitting.")
	f.BoolVar(&wait, "wait", false, "Wait for the submitted jobs to reach a terminal state.")

	return cmd
}

// dryRunJobs renders the submit script each job would hand to the
// scheduler and writes it to out, without submitting anything.
func dryRunJobs(conf config.Config, paths []string, out io.Writer) error {
	backend, err := cmdutil.ComputeBackend(conf, events.Discard)
	if err != nil {
		return err
	}

	for _, p := range paths {
		j, err := job.LoadFile(p)
		if err != nil {
			return err
		}
		if err := backend.RenderSubmit(out, util.GenRunID(), p, j); err != nil {
			return err
		}
		fmt.Fprintln(out)
	}
	return nil
}

func submitJobs(ctx context.Context, conf config.Config, paths []string, wait bool) error {
	log := logger.NewLogger("submit", conf.Logger)
	version.Log(log)

	writer, cleanup, err := cmdutil.NewEventWriters(conf)
	if err != nil {
		return err
	}
	defer cleanup()

	backend, err := cmdutil.ComputeBackend(conf, writer)
	if err != nil {
		return err
	}

	var mtx sync.Mutex
	var errs *multierror.Error

	pool := workerpool.New(maxConcurrentSubmits)
	for _, p := range paths {
		p := p
		pool.Submit(func() {
			record := func(err error) {
				mtx.Lock()
				defer mtx.Unlock()
				errs = multierror.Append(errs, err)
			}

			j, err := job.LoadFile(p)
			if err != nil {
				record(err)
				return
			}

			runID := util.GenRunID()
			if err := events.NewRunWriter(runID, writer).Created(j); err != nil {
				record(err)
				return
			}

			schedID, err := backend.Submit(ctx, runID, p, j)
			if err != nil {
				record(fmt.Errorf("submit %s: %v", p, err))
				return
			}
			fmt.Printf("%s\t%s\n", runID, schedID)

			if !wait {
				return
			}
			state, err := backend.Wait(ctx, schedID)
			if err != nil {
				record(fmt.Errorf("wait %s: %v", runID, err))
				return
			}
			log.Info("Job finished", "runID", runID, "schedulerID", schedID, "state", state)
			if state != job.Complete {
				record(fmt.Errorf("run %s finished with state %s", runID, state))
			}
		})
	}
	pool.StopWait()

	return errs.ErrorOrNil()
}
