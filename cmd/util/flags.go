package util

import (
	"github.com/hpcops/slaunch/config"
	"github.com/spf13/pflag"
)

// SubmitFlags returns a new flag set for configuring job submission.
func SubmitFlags(flagConf *config.Config, configFile *string) *pflag.FlagSet {
	f := pflag.NewFlagSet("", pflag.ContinueOnError)

	f.StringVarP(configFile, "config", "c", *configFile, "Config File")

	f.AddFlagSet(selectorFlags(flagConf))
	f.AddFlagSet(slurmFlags(flagConf))
	f.AddFlagSet(workerFlags(flagConf))
	f.AddFlagSet(dbFlags(flagConf))
	f.AddFlagSet(loggerFlags(flagConf))

	return f
}

// RunFlags returns a new flag set for configuring the run command.
func RunFlags(flagConf *config.Config, configFile *string) *pflag.FlagSet {
	f := pflag.NewFlagSet("", pflag.ContinueOnError)

	f.StringVarP(configFile, "config", "c", *configFile, "Config File")

	f.AddFlagSet(selectorFlags(flagConf))
	f.AddFlagSet(workerFlags(flagConf))
	f.AddFlagSet(modulesFlags(flagConf))
	f.AddFlagSet(dbFlags(flagConf))
	f.AddFlagSet(loggerFlags(flagConf))

	return f
}

func selectorFlags(flagConf *config.Config) *pflag.FlagSet {
	f := pflag.NewFlagSet("", pflag.ContinueOnError)

	f.StringVar(&flagConf.Compute, "Compute", flagConf.Compute, "Name of compute backend to use.")
	f.StringSliceVar(&flagConf.EventWriters.Active, "EventWriters", flagConf.EventWriters.Active, "Name of an event writer backend to use. This flag can be used multiple times")

	return f
}

func workerFlags(flagConf *config.Config) *pflag.FlagSet {
	f := pflag.NewFlagSet("", pflag.ContinueOnError)

	f.StringVar(&flagConf.Worker.WorkDir, "Worker.WorkDir", flagConf.Worker.WorkDir, "Working Directory")
	f.StringSliceVar(&flagConf.Worker.Launcher, "Worker.Launcher", flagConf.Worker.Launcher, "Step launcher prefix, e.g. srun")
	f.Int64Var(&flagConf.Worker.LogTailSize, "Worker.LogTailSize", flagConf.Worker.LogTailSize, "Max bytes to store for stderr/stdout")
	f.Var(&flagConf.Worker.LogUpdateRate, "Worker.LogUpdateRate", "Step log update rate")

	return f
}

func modulesFlags(flagConf *config.Config) *pflag.FlagSet {
	f := pflag.NewFlagSet("", pflag.ContinueOnError)

	f.StringVar(&flagConf.Modules.Command, "Modules.Command", flagConf.Modules.Command, "Environment modules command")
	f.StringVar(&flagConf.Modules.Shell, "Modules.Shell", flagConf.Modules.Shell, "Shell dialect for module environment code")
	f.BoolVar(&flagConf.Modules.BestEffort, "Modules.BestEffort", flagConf.Modules.BestEffort, "Continue the run when a module load fails")

	return f
}

func slurmFlags(flagConf *config.Config) *pflag.FlagSet {
	f := pflag.NewFlagSet("", pflag.ContinueOnError)

	f.StringVar(&flagConf.Slurm.SubmitCmd, "Slurm.SubmitCmd", flagConf.Slurm.SubmitCmd, "Submit command")
	f.StringVar(&flagConf.Slurm.CancelCmd, "Slurm.CancelCmd", flagConf.Slurm.CancelCmd, "Cancel command")
	f.StringVar(&flagConf.Slurm.StatusCmd, "Slurm.StatusCmd", flagConf.Slurm.StatusCmd, "Status command")
	f.Var(&flagConf.Slurm.ReconcileRate, "Slurm.ReconcileRate", "How often to poll the scheduler for job state")

	return f
}

func loggerFlags(flagConf *config.Config) *pflag.FlagSet {
	f := pflag.NewFlagSet("", pflag.ContinueOnError)

	f.StringVar(&flagConf.Logger.Level, "Logger.Level", flagConf.Logger.Level, "Level of logging")
	f.StringVar(&flagConf.Logger.OutputFile, "Logger.OutputFile", flagConf.Logger.OutputFile, "File path to write logs to")
	f.StringVar(&flagConf.Logger.Formatter, "Logger.Formatter", flagConf.Logger.Formatter, "Logs formatter. One of ['text', 'json']")

	return f
}

func dbFlags(flagConf *config.Config) *pflag.FlagSet {
	f := pflag.NewFlagSet("", pflag.ContinueOnError)

	f.StringVar(&flagConf.Database.Path, "Database.Path", flagConf.Database.Path, "Path to run history database")

	return f
}
