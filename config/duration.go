package config

import (
	"time"
)

// Duration wraps time.Duration so that durations in config files and
// on the command line can be written as "10s" or "5m".
type Duration time.Duration

func (d *Duration) String() string {
	return time.Duration(*d).String()
}

// UnmarshalText parses a duration formatted string, e.g. "30s".
// An empty value leaves the duration unchanged.
func (d *Duration) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		return nil
	}
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Set implements the pflag.Value interface.
func (d *Duration) Set(raw string) error {
	return d.UnmarshalText([]byte(raw))
}

// Type implements the pflag.Value interface.
func (d *Duration) Type() string {
	return "duration"
}
