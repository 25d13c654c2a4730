package worker

import (
	"context"
	"fmt"
	"math"
	"os/exec"
	"path/filepath"
	"syscall"

	"github.com/hpcops/slaunch/config"
	"github.com/hpcops/slaunch/events"
	"github.com/hpcops/slaunch/job"
	pscpu "github.com/shirou/gopsutil/cpu"
	psmem "github.com/shirou/gopsutil/mem"
)

// getExitCode gets the exit status (i.e. exit code) from the result of an executed command.
// The exit code is zero if the command completed without error.
func getExitCode(err error) int {
	if err != nil {
		if exiterr, exitOk := err.(*exec.ExitError); exitOk {
			if status, statusOk := exiterr.Sys().(syscall.WaitStatus); statusOk {
				return status.ExitStatus()
			}
		} else {
			log.Info("Could not determine exit code. Using default -999", "err", err)
			return -999
		}
	}
	// The error is nil, the command returned successfully, so exit status is 0.
	return 0
}

// detectResources helps determine the resources available on the host.
// Resources are determined by inspecting the host, but they can be
// overridden by config.
func detectResources(conf config.Worker) config.Resources {
	res := config.Resources{
		Cpus:  conf.Resources.Cpus,
		RamGb: conf.Resources.RamGb,
	}

	cpuinfo, err := pscpu.Info()
	if err != nil {
		log.Error("Error detecting cpu cores", err)
		return res
	}
	vmeminfo, err := psmem.VirtualMemory()
	if err != nil {
		log.Error("Error detecting memory", err)
		return res
	}

	if conf.Resources.Cpus == 0 {
		for _, cpu := range cpuinfo {
			res.Cpus += uint32(cpu.Cores)
		}
	}

	if conf.Resources.RamGb == 0.0 {
		res.RamGb = float64(vmeminfo.Total) / gb
	}

	return res
}

var gb = math.Pow(1000, 3)

// checkResources warns when the job's static resource request exceeds
// what the host offers. The scheduler already enforced the allocation,
// so a mismatch is recorded in the run's system logs, not treated as
// an error.
func checkResources(req job.Resources, avail config.Resources, ev *events.RunWriter) {
	if req.NTasks > 0 && avail.Cpus > 0 && req.NTasks > int(avail.Cpus) {
		ev.Warn("Requested tasks exceed host cpus",
			"ntasks", req.NTasks, "cpus", avail.Cpus)
	}

	reqBytes, err := job.ParseMemory(req.Memory)
	if err == nil && reqBytes > 0 && avail.RamGb > 0 &&
		float64(reqBytes) > avail.RamGb*gb {
		ev.Warn("Requested memory exceeds host memory",
			"memory", req.Memory, "availableRamGb", avail.RamGb)
	}

	if gpus := countGPUs(); req.GPUCount() > gpus {
		ev.Warn("Requested gpus exceed host gpus",
			"requested", req.GPUCount(), "gpus", gpus)
	}
}

// countGPUs counts the NVIDIA devices visible on the host.
func countGPUs() int {
	devs, _ := filepath.Glob("/dev/nvidia[0-9]*")
	return len(devs)
}

// recover from panic and call "cb" with an error value.
func handlePanic(cb func(error)) {
	if r := recover(); r != nil {
		if e, ok := r.(error); ok {
			cb(e)
		} else {
			cb(fmt.Errorf("Unknown runner panic: %+v", r))
		}
	}
}

// helper aims to simplify the error and context checking in the runner code.
type helper struct {
	syserr      error
	execerr     error
	runCanceled bool
	ctx         context.Context
}

func (h *helper) ok() bool {
	if h.ctx != nil {
		// Check if the context is done, but don't block waiting on it.
		select {
		case <-h.ctx.Done():
			h.runCanceled = true
			h.syserr = h.ctx.Err()
		default:
		}
	}
	return h.syserr == nil && h.execerr == nil
}
