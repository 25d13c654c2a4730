package util

import (
	"fmt"

	"github.com/hpcops/slaunch/config"
	"github.com/hpcops/slaunch/events"
	"github.com/hpcops/slaunch/history"
	utilpkg "github.com/hpcops/slaunch/util"
)

// NewEventWriters returns an events.Writer based on the given config,
// along with a cleanup function to close any opened resources.
func NewEventWriters(conf config.Config) (events.Writer, func(), error) {
	var writers []events.Writer
	cleanup := func() {}

	for _, w := range conf.EventWriters.Active {
		switch w {
		case "log":
			writers = append(writers, events.NewEventLogger("run"))

		case "boltdb":
			db, err := history.NewBoltDB(conf.Database)
			if err != nil {
				return nil, cleanup, fmt.Errorf("failed to open run database: %v", err)
			}
			cleanup = db.Close
			retrier := utilpkg.NewRetrier()
			retrier.MaxTries = 3
			writers = append(writers, &events.Retrier{
				Retrier: retrier,
				Writer:  db,
			})

		default:
			return nil, cleanup, fmt.Errorf("unknown EventWriter: %s", w)
		}
	}

	if writers == nil {
		return events.Discard, cleanup, nil
	}
	return events.MultiWriter(writers...), cleanup, nil
}
