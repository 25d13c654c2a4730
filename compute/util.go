package compute

import (
	"fmt"
	"os"

	"github.com/hpcops/slaunch/logger"
)

var log = logger.New("compute")

// DetectBinaryPath detects the path to the "slaunch" binary
func DetectBinaryPath() (string, error) {
	path, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("Failed to detect path of slaunch binary")
	}
	return path, err
}
