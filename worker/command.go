package worker

import (
	"fmt"
	"io"
	"os/exec"
	"strings"
	"syscall"
)

// Command runs a single step command as a host process.
// If Launcher is set, the step argv is prefixed with it, e.g.
// ["srun"] launches each step as a job step inside an allocation.
type Command struct {
	Argv     []string
	Launcher []string
	Env      []string
	Workdir  string
	Stdin    io.Reader
	Stdout   io.Writer
	Stderr   io.Writer

	cmd *exec.Cmd
}

// Run runs the command and blocks until done.
func (c *Command) Run() error {
	if len(c.Argv) == 0 {
		return fmt.Errorf("empty command")
	}

	argv := append(append([]string{}, c.Launcher...), c.Argv...)
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Env = c.Env
	cmd.Dir = c.Workdir
	cmd.Stdin = c.Stdin
	cmd.Stdout = c.Stdout
	cmd.Stderr = c.Stderr
	// Run the step in its own process group so Stop can kill the
	// whole tree, not just the immediate child.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	c.cmd = cmd
	return cmd.Run()
}

// Stop kills the command's process group.
func (c *Command) Stop() error {
	if c.cmd == nil || c.cmd.Process == nil {
		return nil
	}
	return syscall.Kill(-c.cmd.Process.Pid, syscall.SIGKILL)
}

// String returns the full command line, including the launcher prefix.
func (c *Command) String() string {
	argv := append(append([]string{}, c.Launcher...), c.Argv...)
	return strings.Join(argv, " ")
}
