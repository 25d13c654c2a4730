package modules

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/hpcops/slaunch/config"
	"github.com/hpcops/slaunch/logger"
)

// Loader loads environment modules using the "modulecmd" command from
// an environment modules installation (Tcl modules or Lmod). The
// environment changes a module produces are collected into an overlay
// rather than applied to the process environment, so the prepared
// environment is scoped to the step commands.
type Loader struct {
	Conf config.Modules
	Log  logger.Logger

	overlay map[string]string
}

// NewLoader returns a Loader configured by the given config.
func NewLoader(conf config.Modules, log logger.Logger) *Loader {
	return &Loader{Conf: conf, Log: log}
}

// Environ returns the process environment with the loaded modules'
// changes applied, in the KEY=value form expected by exec.Cmd.Env.
func (l *Loader) Environ() []string {
	if len(l.overlay) == 0 {
		return os.Environ()
	}

	var env []string
	seen := map[string]bool{}
	for _, kv := range os.Environ() {
		k, _, ok := strings.Cut(kv, "=")
		if ok {
			if v, changed := l.overlay[k]; changed {
				env = append(env, k+"="+v)
				seen[k] = true
				continue
			}
		}
		env = append(env, kv)
	}
	for k, v := range l.overlay {
		if !seen[k] {
			env = append(env, k+"="+v)
		}
	}
	return env
}

// Load loads a single module by name, e.g. "cuda/11.1", collecting the
// environment changes it produces.
//
// modulecmd writes shell code to stdout which is meant to be eval'd by
// the calling shell, and diagnostics to stderr. The code is eval'd in a
// subshell and the resulting environment is diffed against the current
// one, so that variable references such as $PATH expand correctly.
// Loads see the changes of earlier loads, so module dependencies on
// PATH etc. resolve in order.
func (l *Loader) Load(ctx context.Context, name string) error {
	if name == "" {
		return fmt.Errorf("load module: empty module name")
	}

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	cmd := exec.CommandContext(ctx, l.Conf.Command, l.Conf.Shell, "load", name)
	cmd.Env = l.Environ()
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	err := cmd.Run()
	if err != nil {
		return fmt.Errorf("load module %q: %s: %v: %s",
			name, l.Conf.Command, err, strings.TrimSpace(stderr.String()))
	}

	// modulecmd exits 0 even when the module doesn't exist,
	// reporting the problem on stderr instead.
	if msg := errorMessage(stderr.String()); msg != "" {
		return fmt.Errorf("load module %q: %s", name, msg)
	}

	env, err := l.evalEnv(ctx, stdout.String())
	if err != nil {
		return fmt.Errorf("load module %q: %v", name, err)
	}

	before := map[string]string{}
	for _, kv := range l.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			before[k] = v
		}
	}
	for k, v := range env {
		if before[k] == v {
			continue
		}
		if l.overlay == nil {
			l.overlay = map[string]string{}
		}
		l.overlay[k] = v
	}

	if l.Log != nil {
		l.Log.Info("Loaded module", "module", name)
	}
	return nil
}

// LoadAll loads the given modules in order. By default the first failure
// stops loading and is returned. If BestEffort is set, failures are
// logged and loading continues with the remaining modules.
func (l *Loader) LoadAll(ctx context.Context, names []string) error {
	for _, name := range names {
		err := l.Load(ctx, name)
		if err == nil {
			continue
		}
		if !l.Conf.BestEffort {
			return err
		}
		if l.Log != nil {
			l.Log.Error("Module load failed, continuing", err)
		}
	}
	return nil
}

// evalEnv evals the given shell code in a subshell and returns the
// resulting environment.
func (l *Loader) evalEnv(ctx context.Context, code string) (map[string]string, error) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	cmd := exec.CommandContext(ctx, l.Conf.Shell, "-c", code+"\nenv")
	cmd.Env = l.Environ()
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	err := cmd.Run()
	if err != nil {
		return nil, fmt.Errorf("eval environment: %v: %s",
			err, strings.TrimSpace(stderr.String()))
	}

	env := map[string]string{}
	for _, line := range strings.Split(stdout.String(), "\n") {
		k, v, ok := strings.Cut(line, "=")
		if !ok || k == "" {
			continue
		}
		env[k] = v
	}
	return env, nil
}

// errorMessage extracts an error message from modulecmd stderr output.
// Lines starting with "ERROR" mark a failed load.
func errorMessage(stderr string) string {
	for _, line := range strings.Split(stderr, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "ERROR") {
			return trimmed
		}
	}
	return ""
}
