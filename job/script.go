package job

import (
	"bufio"
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/jessevdk/go-flags"
	"github.com/kballard/go-shellquote"
)

var directiveRe = regexp.MustCompile(`^\s*#SBATCH\s+(.+)$`)

// scriptDirectives is the subset of sbatch options recognized inside
// #SBATCH directive lines. Unknown options are ignored rather than
// rejected, so scripts written for a newer sbatch still parse.
type scriptDirectives struct {
	Nodes     int    `short:"N" long:"nodes" description:"number of nodes"`
	NTasks    int    `short:"n" long:"ntasks" description:"number of tasks"`
	Partition string `short:"p" long:"partition" description:"partition name"`
	Time      string `short:"t" long:"time" description:"wall clock limit"`
	Mem       string `long:"mem" description:"memory per node"`
	Gres      string `long:"gres" description:"generic resources"`
	JobName   string `short:"J" long:"job-name" description:"job name"`
	Output    string `short:"o" long:"output" description:"stdout file"`
	Error     string `short:"e" long:"error" description:"stderr file"`
}

// ParseScript parses a legacy sbatch batch script into a Job.
//
// The resource request is read from #SBATCH directive lines, which must
// precede any executable content. In the body, "module load" lines
// become module references, the first echo of a literal becomes the
// banner, launcher-prefixed command lines become steps (a trailing "&"
// marks a background step), and a bare "wait" is dropped because the
// runner always waits for background steps.
func ParseScript(src []byte) (*Job, error) {
	j := &Job{}
	var args []string
	inBody := false

	scanner := bufio.NewScanner(bytes.NewReader(src))
	first := true
	for scanner.Scan() {
		line := scanner.Text()
		if first {
			first = false
			if strings.HasPrefix(line, "#!") {
				continue
			}
		}

		if m := directiveRe.FindStringSubmatch(line); m != nil {
			if inBody {
				return nil, fmt.Errorf("misplaced #SBATCH directive after script body: %q", line)
			}
			fields, err := shellquote.Split(m[1])
			if err != nil {
				return nil, fmt.Errorf("can't parse directive %q: %v", line, err)
			}
			args = append(args, fields...)
			continue
		}

		trim := strings.TrimSpace(line)
		switch {
		case trim == "" || strings.HasPrefix(trim, "#"):
			continue

		case trim == "wait":
			continue

		case strings.HasPrefix(trim, "module load ") || strings.HasPrefix(trim, "module add "):
			inBody = true
			j.Modules = append(j.Modules, strings.Fields(trim)[2:]...)

		case strings.HasPrefix(trim, "echo ") && j.Banner == "" && len(j.Steps) == 0:
			inBody = true
			j.Banner = strings.Trim(strings.TrimSpace(trim[len("echo "):]), `"'`)

		default:
			inBody = true
			bg := strings.HasSuffix(trim, "&")
			if bg {
				trim = strings.TrimSpace(strings.TrimSuffix(trim, "&"))
			}
			j.Steps = append(j.Steps, Step{Run: stripLauncher(trim), Background: bg})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	d := scriptDirectives{}
	parser := flags.NewParser(&d, flags.IgnoreUnknown)
	if _, err := parser.ParseArgs(args); err != nil {
		return nil, fmt.Errorf("can't parse #SBATCH directives: %v", err)
	}

	j.Resources = Resources{
		Nodes:      d.Nodes,
		NTasks:     d.NTasks,
		Partition:  d.Partition,
		Time:       d.Time,
		Memory:     d.Mem,
		Gres:       d.Gres,
		JobName:    d.JobName,
		StdoutPath: d.Output,
		StderrPath: d.Error,
	}
	return j, nil
}

// stripLauncher removes a leading step launcher invocation from a
// command line. The runner adds its own configured launcher prefix,
// so "srun python test.py" and "python test.py" are the same step.
func stripLauncher(cmd string) string {
	for _, launcher := range []string{"srun ", "mpirun "} {
		if strings.HasPrefix(cmd, launcher) {
			return strings.TrimSpace(strings.TrimPrefix(cmd, launcher))
		}
	}
	return cmd
}
