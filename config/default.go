package config

import (
	"os"
	"path"
	"time"

	"github.com/hpcops/slaunch/logger"
)

// DefaultConfig returns configuration with simple defaults.
func DefaultConfig() Config {
	cwd, _ := os.Getwd()
	workDir := path.Join(cwd, "slaunch-work-dir")

	return Config{
		Compute: "slurm",
		Worker: Worker{
			WorkDir:       workDir,
			Launcher:      []string{"srun"},
			LogTailSize:   10000,
			LogUpdateRate: Duration(time.Second * 5),
		},
		Modules: Modules{
			Command: "modulecmd",
			Shell:   "sh",
		},
		Slurm: Slurm{
			SubmitCmd:     "sbatch",
			CancelCmd:     "scancel",
			StatusCmd:     "sacct",
			Template:      slurmTemplate,
			ReconcileRate: Duration(time.Second * 10),
		},
		EventWriters: EventWriters{
			Active: []string{"log", "boltdb"},
		},
		Database: Database{
			Path: path.Join(workDir, "slaunch.db"),
		},
		Logger: logger.DefaultConfig(),
	}
}
