package util

import (
	"os"
	"testing"

	"github.com/hpcops/slaunch/config"
)

func TestMergeConfigFileWithFlags(t *testing.T) {
	flagConf := config.Config{}
	flagConf.Worker.WorkDir = "flag-workdir"
	flagConf.Slurm.SubmitCmd = "custom-sbatch"

	// no config file
	conf, err := MergeConfigFileWithFlags("", flagConf)
	if err != nil {
		t.Fatal(err)
	}
	if conf.Worker.WorkDir != "flag-workdir" {
		t.Errorf("unexpected WorkDir: %s", conf.Worker.WorkDir)
	}
	if conf.Slurm.SubmitCmd != "custom-sbatch" {
		t.Errorf("unexpected SubmitCmd: %s", conf.Slurm.SubmitCmd)
	}
	// defaults survive for untouched fields
	if conf.Slurm.CancelCmd != "scancel" {
		t.Errorf("unexpected CancelCmd: %s", conf.Slurm.CancelCmd)
	}
	if conf.Compute != "slurm" {
		t.Errorf("unexpected Compute: %s", conf.Compute)
	}

	// config file values are overridden by flags
	fileConf := config.DefaultConfig()
	fileConf.Worker.WorkDir = "file-workdir"
	fileConf.Modules.Command = "lmod"
	tmp, cleanup := config.ToYamlTempFile(fileConf, "testconfig.yaml")
	defer cleanup()

	conf, err = MergeConfigFileWithFlags(tmp, flagConf)
	if err != nil {
		t.Fatal(err)
	}
	if conf.Worker.WorkDir != "flag-workdir" {
		t.Errorf("flag should override file WorkDir, got: %s", conf.Worker.WorkDir)
	}
	if conf.Modules.Command != "lmod" {
		t.Errorf("unexpected Modules.Command: %s", conf.Modules.Command)
	}

	// missing config file is an error
	_, err = MergeConfigFileWithFlags("thisfiledoesnotexist.yaml", flagConf)
	if err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestNewEventWriters(t *testing.T) {
	conf := config.DefaultConfig()
	conf.EventWriters.Active = []string{"unknown"}
	_, _, err := NewEventWriters(conf)
	if err == nil {
		t.Error("expected error for unknown event writer")
	}

	tmp, err := os.CreateTemp("", "slaunch-db-")
	if err != nil {
		t.Fatal(err)
	}
	tmp.Close()
	defer os.Remove(tmp.Name())

	conf.EventWriters.Active = []string{"log", "boltdb"}
	conf.Database.Path = tmp.Name()
	w, cleanup, err := NewEventWriters(conf)
	if err != nil {
		t.Fatal(err)
	}
	defer cleanup()
	if w == nil {
		t.Error("expected writer")
	}
}
