package worker

import (
	"errors"
	"os/exec"
	"testing"
)

func TestGetExitCode(t *testing.T) {
	if code := getExitCode(nil); code != 0 {
		t.Errorf("expected 0 for nil error, got %d", code)
	}

	cmd := exec.Command("sh", "-c", "exit 3")
	err := cmd.Run()
	if err == nil {
		t.Fatal("expected command to fail")
	}
	if code := getExitCode(err); code != 3 {
		t.Errorf("expected 3, got %d", code)
	}

	if code := getExitCode(errors.New("not an exit error")); code != -999 {
		t.Errorf("expected -999, got %d", code)
	}
}

func TestHelperOK(t *testing.T) {
	run := helper{}
	if !run.ok() {
		t.Error("expected ok for empty helper")
	}
	run.syserr = errors.New("boom")
	if run.ok() {
		t.Error("expected not ok with syserr")
	}
}

func TestHandlePanic(t *testing.T) {
	var got error
	func() {
		defer handlePanic(func(e error) {
			got = e
		})
		panic(errors.New("boom"))
	}()
	if got == nil || got.Error() != "boom" {
		t.Errorf("unexpected error: %v", got)
	}
}
