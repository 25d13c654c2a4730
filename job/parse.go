package job

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/alecthomas/units"
)

// ParseWallTime parses a SLURM wall clock limit. Accepted forms are
// "minutes", "minutes:seconds", "hours:minutes:seconds", "days-hours",
// "days-hours:minutes" and "days-hours:minutes:seconds".
// An empty string parses to zero, meaning no limit was requested.
func ParseWallTime(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}

	var days int64
	hasDays := false
	rest := s
	if i := strings.Index(s, "-"); i >= 0 {
		d, err := strconv.ParseInt(s[:i], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid time limit %q", s)
		}
		days = d
		hasDays = true
		rest = s[i+1:]
	}

	parts := strings.Split(rest, ":")
	nums := make([]int64, len(parts))
	for i, p := range parts {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid time limit %q", s)
		}
		nums[i] = n
	}

	var d time.Duration
	switch {
	case hasDays:
		// days-hours[:minutes[:seconds]]
		if len(nums) > 3 {
			return 0, fmt.Errorf("invalid time limit %q", s)
		}
		for i, n := range nums {
			d += time.Duration(n) * [3]time.Duration{time.Hour, time.Minute, time.Second}[i]
		}
		d += time.Duration(days) * 24 * time.Hour
	case len(nums) == 1:
		d = time.Duration(nums[0]) * time.Minute
	case len(nums) == 2:
		d = time.Duration(nums[0])*time.Minute + time.Duration(nums[1])*time.Second
	case len(nums) == 3:
		d = time.Duration(nums[0])*time.Hour + time.Duration(nums[1])*time.Minute + time.Duration(nums[2])*time.Second
	default:
		return 0, fmt.Errorf("invalid time limit %q", s)
	}
	return d, nil
}

var memRe = regexp.MustCompile(`^([0-9]+) ?([KMGT]?)B?$`)

// ParseMemory parses a SLURM memory request such as "16G" or "4096M"
// into bytes. A bare number is megabytes, matching sbatch's default
// unit. An empty string parses to zero.
func ParseMemory(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	m := memRe.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(s)))
	if m == nil {
		return 0, fmt.Errorf("invalid memory request %q", s)
	}
	suffix := m[2]
	if suffix == "" {
		suffix = "M"
	}
	b, err := units.ParseBase2Bytes(m[1] + suffix + "iB")
	if err != nil {
		return 0, fmt.Errorf("invalid memory request %q: %v", s, err)
	}
	return int64(b), nil
}

// Gres is one generic resource request entry, e.g. "gpu:a100:4".
type Gres struct {
	Name  string
	Type  string
	Count int
}

// ParseGres parses a comma separated generic resource list in SLURM's
// "name[[:type]:count]" syntax. A missing count defaults to 1.
func ParseGres(s string) ([]Gres, error) {
	if s == "" {
		return nil, nil
	}
	var out []Gres
	for _, entry := range strings.Split(s, ",") {
		parts := strings.Split(entry, ":")
		g := Gres{Name: parts[0], Count: 1}
		if g.Name == "" {
			return nil, fmt.Errorf("invalid gres entry %q", entry)
		}
		switch len(parts) {
		case 1:
		case 2:
			// name:count or name:type
			if n, err := strconv.Atoi(parts[1]); err == nil {
				g.Count = n
			} else {
				g.Type = parts[1]
			}
		case 3:
			g.Type = parts[1]
			n, err := strconv.Atoi(parts[2])
			if err != nil {
				return nil, fmt.Errorf("invalid gres count in %q", entry)
			}
			g.Count = n
		default:
			return nil, fmt.Errorf("invalid gres entry %q", entry)
		}
		out = append(out, g)
	}
	return out, nil
}

// GPUCount returns the total number of GPUs in the gres request,
// or zero if none were requested.
func (r Resources) GPUCount() int {
	list, err := ParseGres(r.Gres)
	if err != nil {
		return 0
	}
	count := 0
	for _, g := range list {
		if g.Name == "gpu" {
			count += g.Count
		}
	}
	return count
}
