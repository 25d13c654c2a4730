// Package status contains the "slaunch status" and "slaunch list"
// commands for inspecting run history.
package status

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/ghodss/yaml"
	cmdutil "github.com/hpcops/slaunch/cmd/util"
	"github.com/hpcops/slaunch/config"
	"github.com/hpcops/slaunch/history"
	"github.com/spf13/cobra"
)

// NewCommand returns the status command
func NewCommand() *cobra.Command {
	var (
		configFile string
		conf       config.Config
		flagConf   config.Config
	)

	cmd := &cobra.Command{
		Use:   "status [run ID]",
		Short: "Show the stored result of a run.",
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
			return Status(context.Background(), conf, args[0])
		},
	}

	cmd.SetGlobalNormalizationFunc(cmdutil.NormalizeFlags)
	f := cmd.Flags()
	f.AddFlagSet(cmdutil.SubmitFlags(&flagConf, &configFile))

	return cmd
}

// NewListCommand returns the list command
func NewListCommand() *cobra.Command {
	var (
		configFile string
		conf       config.Config
		flagConf   config.Config
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all stored runs.",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			var err error

			conf, err = cmdutil.MergeConfigFileWithFlags(configFile, flagConf)
			if err != nil {
				return fmt.Errorf("error processing config: %v", err)
			}

			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return List(context.Background(), conf)
		},
	}

	cmd.SetGlobalNormalizationFunc(cmdutil.NormalizeFlags)
	f := cmd.Flags()
	f.AddFlagSet(cmdutil.SubmitFlags(&flagConf, &configFile))

	return cmd
}

// Status prints the stored result of a run. For an unfinished run with
// a submitted scheduler job, the scheduler is queried for its current
// state.
func Status(ctx context.Context, conf config.Config, runID string) error {
	db, err := history.NewBoltDB(conf.Database)
	if err != nil {
		return fmt.Errorf("failed to open run database: %v", err)
	}
	defer db.Close()

	res, err := db.GetRun(ctx, runID)
	if err != nil {
		return err
	}

	b, err := yaml.Marshal(res)
	if err != nil {
		return err
	}
	fmt.Print(string(b))

	if res.State.Active() && res.SchedulerID != "" {
		backend, err := cmdutil.ComputeBackend(conf, db)
		if err != nil {
			return err
		}
		state, raw, err := backend.State(ctx, res.SchedulerID)
		if err != nil {
			return err
		}
		fmt.Printf("SchedulerState: %s (%s)\n", state, raw)
	}
	return nil
}

// List prints a row for each stored run.
func List(ctx context.Context, conf config.Config) error {
	db, err := history.NewBoltDB(conf.Database)
	if err != nil {
		return fmt.Errorf("failed to open run database: %v", err)
	}
	defer db.Close()

	runs, err := db.ListRuns(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "RUN ID\tJOB NAME\tSTATE\tSCHEDULER ID")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.RunID, r.JobName, r.State, r.SchedulerID)
	}
	return w.Flush()
}
