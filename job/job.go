// Package job defines the batch job model: a static resource request,
// a list of environment modules to activate, and a list of steps to run.
package job

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ghodss/yaml"
	"github.com/kballard/go-shellquote"
)

// Job describes a single batch job: the resources to request from the
// scheduler, the environment modules to activate, an optional banner
// written to the job's stdout before any step runs, and the steps.
type Job struct {
	Banner    string
	Resources Resources
	Modules   []string
	Steps     []Step
}

// Resources is the static resource request handed to the scheduler.
// It is immutable once the job has been submitted.
type Resources struct {
	Nodes     int
	NTasks    int
	Gres      string
	Partition string
	// Time is a wall clock limit in SLURM syntax, e.g. "24:00:00".
	Time   string
	Memory string

	JobName    string
	StdoutPath string
	StderrPath string
}

// Step is one program invocation launched within the allocation.
// Background steps are started and left running; the runner's final
// wait collects them before the job finishes.
type Step struct {
	Name       string
	Run        string
	Background bool
}

// Argv returns the step's command line split into arguments.
func (s Step) Argv() ([]string, error) {
	argv, err := shellquote.Split(s.Run)
	if err != nil {
		return nil, fmt.Errorf("can't parse step command %q: %v", s.Run, err)
	}
	if len(argv) == 0 {
		return nil, fmt.Errorf("empty step command")
	}
	return argv, nil
}

// LoadFile loads a job from the file at the given path. Both YAML job
// files and legacy batch scripts (shebang + #SBATCH directives) are
// recognized. Defaults are applied and the job is validated.
func LoadFile(path string) (*Job, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("can't read job file: %v", err)
	}

	var j *Job
	if strings.HasPrefix(string(src), "#!") {
		j, err = ParseScript(src)
	} else {
		j = &Job{}
		err = yaml.Unmarshal(src, j)
	}
	if err != nil {
		return nil, fmt.Errorf("can't parse job file %s: %v", path, err)
	}

	j.WithDefaults(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	if err := j.Validate(); err != nil {
		return nil, fmt.Errorf("invalid job file %s: %v", path, err)
	}
	return j, nil
}

// WithDefaults fills in unset fields. "name" is used as the default
// job name, usually derived from the job file name.
func (j *Job) WithDefaults(name string) {
	if j.Resources.Nodes == 0 {
		j.Resources.Nodes = 1
	}
	if j.Resources.JobName == "" {
		j.Resources.JobName = name
	}
	if j.Resources.StdoutPath == "" {
		j.Resources.StdoutPath = "stdout.txt"
	}
	if j.Resources.StderrPath == "" {
		j.Resources.StderrPath = "stderr.txt"
	}
	for i := range j.Steps {
		if j.Steps[i].Name == "" {
			if argv, err := j.Steps[i].Argv(); err == nil {
				j.Steps[i].Name = filepath.Base(argv[0])
			}
		}
	}
}

// Validate checks the job for basic errors. Step arguments such as
// directory paths are passed through verbatim and are not checked here;
// whether they exist is the step program's concern.
func (j *Job) Validate() error {
	if len(j.Steps) == 0 {
		return fmt.Errorf("job has no steps")
	}
	if j.Resources.Nodes < 1 {
		return fmt.Errorf("node count must be at least 1")
	}
	if _, err := ParseWallTime(j.Resources.Time); err != nil {
		return err
	}
	if _, err := ParseMemory(j.Resources.Memory); err != nil {
		return err
	}
	if _, err := ParseGres(j.Resources.Gres); err != nil {
		return err
	}
	for i, s := range j.Steps {
		if _, err := s.Argv(); err != nil {
			return fmt.Errorf("step %d: %v", i, err)
		}
	}
	return nil
}

// ToYaml marshals the job into YAML.
func (j *Job) ToYaml() ([]byte, error) {
	return yaml.Marshal(j)
}
