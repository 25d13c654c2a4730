package util

import (
	"fmt"

	"github.com/hpcops/slaunch/compute"
	"github.com/hpcops/slaunch/compute/slurm"
	"github.com/hpcops/slaunch/config"
	"github.com/hpcops/slaunch/events"
)

// ComputeBackend returns the submission backend named by the config.
func ComputeBackend(conf config.Config, writer events.Writer) (*compute.HPCBackend, error) {
	switch conf.Compute {
	case "slurm":
		return slurm.NewBackend(conf, writer), nil
	}
	return nil, fmt.Errorf("unknown compute backend: %s", conf.Compute)
}
