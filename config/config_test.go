package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseFile(t *testing.T) {
	raw := `
Compute: slurm
Worker:
  WorkDir: /tmp/slaunch-test
  LogTailSize: 2000
  LogUpdateRate: 2s
Modules:
  Command: /opt/modules/bin/modulecmd
  BestEffort: true
Slurm:
  SubmitCmd: sbatch
  ReconcileRate: 30s
`
	tmp, err := os.MkdirTemp("", "")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmp)

	path := filepath.Join(tmp, "config.yml")
	err = os.WriteFile(path, []byte(raw), 0600)
	if err != nil {
		t.Fatal(err)
	}

	conf := DefaultConfig()
	err = ParseFile(path, &conf)
	if err != nil {
		t.Fatal(err)
	}

	if conf.Compute != "slurm" {
		t.Errorf("unexpected Compute: %s", conf.Compute)
	}
	if conf.Worker.WorkDir != "/tmp/slaunch-test" {
		t.Errorf("unexpected Worker.WorkDir: %s", conf.Worker.WorkDir)
	}
	if conf.Worker.LogTailSize != 2000 {
		t.Errorf("unexpected Worker.LogTailSize: %d", conf.Worker.LogTailSize)
	}
	if time.Duration(conf.Worker.LogUpdateRate) != 2*time.Second {
		t.Errorf("unexpected Worker.LogUpdateRate: %v", conf.Worker.LogUpdateRate)
	}
	if conf.Modules.Command != "/opt/modules/bin/modulecmd" {
		t.Errorf("unexpected Modules.Command: %s", conf.Modules.Command)
	}
	if !conf.Modules.BestEffort {
		t.Error("expected Modules.BestEffort to be true")
	}
	if time.Duration(conf.Slurm.ReconcileRate) != 30*time.Second {
		t.Errorf("unexpected Slurm.ReconcileRate: %v", conf.Slurm.ReconcileRate)
	}
	// Values not in the file keep their defaults.
	if conf.Slurm.CancelCmd != "scancel" {
		t.Errorf("unexpected Slurm.CancelCmd: %s", conf.Slurm.CancelCmd)
	}
}

func TestConfigRoundTrip(t *testing.T) {
	conf := DefaultConfig()
	conf.Compute = "slurm"
	conf.Worker.LogUpdateRate = Duration(time.Minute)

	b, err := ToYaml(conf)
	if err != nil {
		t.Fatal(err)
	}

	var loaded Config
	err = Parse(b, &loaded)
	if err != nil {
		t.Fatal(err)
	}

	if loaded.Compute != conf.Compute {
		t.Errorf("unexpected Compute: %s", loaded.Compute)
	}
	if loaded.Worker.LogUpdateRate != conf.Worker.LogUpdateRate {
		t.Errorf("unexpected Worker.LogUpdateRate: %v", loaded.Worker.LogUpdateRate)
	}
	if loaded.Database.Path != conf.Database.Path {
		t.Errorf("unexpected Database.Path: %s", loaded.Database.Path)
	}
}

func TestParseFileMissing(t *testing.T) {
	conf := DefaultConfig()
	err := ParseFile("/this/path/does/not/exist.yml", &conf)
	if err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestParseFileEmptyPath(t *testing.T) {
	conf := DefaultConfig()
	err := ParseFile("", &conf)
	if err != nil {
		t.Errorf("expected nil error for empty path, got %s", err)
	}
}
