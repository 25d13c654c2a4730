package examples

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-test/deep"
	ex "github.com/hpcops/slaunch/examples"
	"github.com/hpcops/slaunch/job"
)

// Ensure the bundled example job files are valid.
func TestExamplesAreValid(t *testing.T) {
	names := ex.AssetNames()
	if len(names) == 0 {
		t.Fatal("no bundled examples")
	}

	dir := t.TempDir()
	for _, n := range names {
		data, err := ex.Asset(n)
		if err != nil {
			t.Fatal(err)
		}

		p := filepath.Join(dir, n)
		if err := os.WriteFile(p, data, 0600); err != nil {
			t.Fatal(err)
		}

		if _, err := job.LoadFile(p); err != nil {
			t.Errorf("example %s failed to load: %v", n, err)
		}
	}
}

// The YAML and script forms of the gan-train example describe the
// same job.
func TestExampleFormsAgree(t *testing.T) {
	dir := t.TempDir()
	load := func(name string) *job.Job {
		t.Helper()
		data, err := ex.Asset(name)
		if err != nil {
			t.Fatal(err)
		}
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, data, 0600); err != nil {
			t.Fatal(err)
		}
		j, err := job.LoadFile(p)
		if err != nil {
			t.Fatal(err)
		}
		return j
	}

	yml := load("gan-train.yml")
	script := load("gan-train.sbatch")

	if diff := deep.Equal(yml.Resources, script.Resources); diff != nil {
		t.Error("resources differ:", diff)
	}
	if diff := deep.Equal(yml.Modules, script.Modules); diff != nil {
		t.Error("modules differ:", diff)
	}
	if yml.Banner != script.Banner {
		t.Errorf("banners differ: %q vs %q", yml.Banner, script.Banner)
	}
	if len(yml.Steps) != len(script.Steps) {
		t.Fatalf("step counts differ: %d vs %d", len(yml.Steps), len(script.Steps))
	}
	for i := range yml.Steps {
		if yml.Steps[i].Run != script.Steps[i].Run {
			t.Errorf("step %d commands differ: %q vs %q", i, yml.Steps[i].Run, script.Steps[i].Run)
		}
		if yml.Steps[i].Background != script.Steps[i].Background {
			t.Errorf("step %d background flags differ", i)
		}
	}
}

func TestAssetUnknownName(t *testing.T) {
	if _, err := ex.Asset("nope.yml"); err == nil {
		t.Error("expected error for unknown example")
	}
}
