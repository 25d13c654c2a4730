package config

// The following variables are available for use in the submit script
// template:
//
// RunID          slaunch run id
// Executable     path to the slaunch binary
// Config         path to the rendered slaunch config file
// JobFile        path to the job file
// WorkDir        run working directory
// JobName        requested job name
// Nodes          requested node count
// NTasks         requested task count
// Gres           generic resource request string
// Partition      requested partition
// Time           wall clock limit
// Memory         memory request
// Stdout         job stdout file path
// Stderr         job stderr file path
//
// See https://golang.org/pkg/text/template for more information

var slurmTemplate = `#!/bin/bash
#SBATCH --job-name {{.JobName}}
#SBATCH --nodes {{.Nodes}}
#SBATCH --output {{.Stdout}}
#SBATCH --error {{.Stderr}}
{{if ne .NTasks 0 -}}
{{printf "#SBATCH --ntasks %d" .NTasks}}
{{- end}}
{{if .Gres -}}
{{printf "#SBATCH --gres %s" .Gres}}
{{- end}}
{{if .Partition -}}
{{printf "#SBATCH --partition %s" .Partition}}
{{- end}}
{{if .Time -}}
{{printf "#SBATCH --time %s" .Time}}
{{- end}}
{{if .Memory -}}
{{printf "#SBATCH --mem %s" .Memory}}
{{- end}}

{{.Executable}} run --run-id {{.RunID}} --config {{.Config}} {{.JobFile}}
`
