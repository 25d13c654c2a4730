package worker

import "github.com/hpcops/slaunch/logger"

var log = logger.New("worker")
