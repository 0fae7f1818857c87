package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/couchcryptid/mera-explorer/internal/inventory"
	"github.com/couchcryptid/mera-explorer/internal/mera"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOptions(t *testing.T) options {
	t.Helper()
	vars, err := mera.ParseVariables([]string{"air_temperature_at_2_metres", "precipitation_amount"})
	require.NoError(t, err)
	return options{
		vars:    vars,
		start:   time.Date(2016, 12, 10, 0, 0, 0, 0, time.UTC),
		stop:    time.Date(2017, 2, 1, 0, 0, 0, 0, time.UTC),
		streams: []mera.Stream{mera.StreamAnalysis},
		host:    "realin15",
		root:    "/run/media/archive/reaext03",
	}
}

func TestMonthRange(t *testing.T) {
	opts := testOptions(t)
	months, err := monthRange(opts.start, opts.stop)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{
		time.Date(2016, 12, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC),
	}, months)

	_, err = monthRange(opts.stop, opts.start)
	assert.Error(t, err)
}

func TestBuildManifest_RoundTrip(t *testing.T) {
	opts := testOptions(t)
	opts.compressed = 2

	m, err := buildManifest(mera.NewResolver(mera.DefaultTable()), opts)
	require.NoError(t, err)
	require.Len(t, m.Files, 4)

	var buf bytes.Buffer
	require.NoError(t, inventory.WriteManifest(&buf, m, fixedGenerated))
	parsed, err := inventory.ParseManifest(&buf)
	require.NoError(t, err)

	assert.Equal(t, "realin15", parsed.Host)
	assert.Equal(t, m.Files, parsed.Files)

	entries, malformed := parsed.Entries()
	assert.Empty(t, malformed)
	compressed := 0
	for _, e := range entries {
		if e.Compressed {
			compressed++
		}
	}
	assert.Equal(t, 2, compressed)
}

func TestBuildRequests(t *testing.T) {
	reqs, err := buildRequests(testOptions(t))
	require.NoError(t, err)
	require.Len(t, reqs, 4)
	assert.Equal(t, "air_temperature_at_2_metres", reqs[0].Variable)
	assert.Equal(t, time.Date(2016, 12, 15, 12, 0, 0, 0, time.UTC), reqs[0].ValidTime)
	assert.Equal(t, "precipitation_amount", reqs[3].Variable)
}
