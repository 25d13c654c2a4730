// Package cancel contains the "slaunch cancel" command.
package cancel

import (
	"context"
	"fmt"

	multierror "github.com/hashicorp/go-multierror"
	cmdutil "github.com/hpcops/slaunch/cmd/util"
	"github.com/hpcops/slaunch/config"
	"github.com/hpcops/slaunch/history"
	"github.com/spf13/cobra"
)

// NewCommand returns the cancel command
func NewCommand() *cobra.Command {
	var (
		configFile string
		conf       config.Config
		flagConf   config.Config
	)

	cmd := &cobra.Command{
		Use:   "cancel [run IDs...]",
		Short: "Cancel runs.",
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
			return Cancel(context.Background(), conf, args)
		},
	}

	cmd.SetGlobalNormalizationFunc(cmdutil.NormalizeFlags)
	f := cmd.Flags()
	f.AddFlagSet(cmdutil.SubmitFlags(&flagConf, &configFile))

	return cmd
}

// Cancel cancels the scheduler jobs of the given runs.
func Cancel(ctx context.Context, conf config.Config, runIDs []string) error {
	db, err := history.NewBoltDB(conf.Database)
	if err != nil {
		return fmt.Errorf("failed to open run database: %v", err)
	}
	defer db.Close()

	backend, err := cmdutil.ComputeBackend(conf, db)
	if err != nil {
		return err
	}

	var errs *multierror.Error
	for _, runID := range runIDs {
		res, err := db.GetRun(ctx, runID)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		if res.State.Done() {
			errs = multierror.Append(errs,
				fmt.Errorf("run %s already finished with state %s", runID, res.State))
			continue
		}
		if err := backend.Cancel(ctx, runID, res.SchedulerID); err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		fmt.Println("canceled", runID)
	}
	return errs.ErrorOrNil()
}
