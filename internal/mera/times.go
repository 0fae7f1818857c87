package mera

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var dateLayouts = map[int]string{
	len("2006-01-02"):       "2006-01-02",
	len("2006-01-02 15"):    "2006-01-02 15",
	len("2006-01-02 15:04"): "2006-01-02 15:04",
}

// ParseDate parses "YYYY-MM-DD", "YYYY-MM-DD HH" or "YYYY-MM-DD HH:MM" in UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	layout, ok := dateLayouts[len(s)]
	if !ok {
		return time.Time{}, fmt.Errorf("parse date %q: expected YYYY-MM-DD[ HH[:MM]]", s)
	}
	t, err := time.ParseInLocation(layout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// ParseDuration parses "<integer><unit>" with unit one of d, h, m, s
// (case-insensitive), e.g. "3h" or "10d".
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return 0, fmt.Errorf("parse duration %q: expected <integer><d|h|m|s>", s)
	}
	n, err := strconv.Atoi(s[:len(s)-1])
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", s, err)
	}
	var unit time.Duration
	switch strings.ToLower(s[len(s)-1:]) {
	case "d":
		unit = 24 * time.Hour
	case "h":
		unit = time.Hour
	case "m":
		unit = time.Minute
	case "s":
		unit = time.Second
	default:
		return 0, fmt.Errorf("parse duration %q: unknown unit", s)
	}
	return time.Duration(n) * unit, nil
}

// TimeRange returns start, start+step, ... up to but excluding stop.
func TimeRange(start, stop time.Time, step time.Duration) ([]time.Time, error) {
	if step <= 0 {
		return nil, errors.New("time range step must be positive")
	}
	var times []time.Time
	for t := start; t.Before(stop); t = t.Add(step) {
		times = append(times, t)
	}
	return times, nil
}
