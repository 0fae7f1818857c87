package extract

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/couchcryptid/mera-explorer/internal/mera"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jan1 = time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC)

func planFixture(t *testing.T, exists func(string) bool) Job {
	t.Helper()
	vars, err := mera.ParseVariables([]string{"air_temperature_at_2_metres", "precipitation_amount"})
	require.NoError(t, err)
	times, err := mera.TimeRange(jan1, jan1.Add(6*time.Hour), 3*time.Hour)
	require.NoError(t, err)

	job, err := Plan(mera.NewResolver(mera.DefaultTable()), "/data", vars, times, exists)
	require.NoError(t, err)
	return job
}

func TestPlan(t *testing.T) {
	calls := 0
	job := planFixture(t, func(p string) bool {
		calls++
		return filepath.Base(p) != "MERA_PRODYEAR_2016_12_61_105_0_4_FC3hr"
	})

	require.Len(t, job.Items, 4)
	assert.Equal(t, 3, calls, "each distinct file is checked once")

	first := job.Items[0]
	assert.Equal(t, "/data/mera/11/105/2/0/MERA_PRODYEAR_2017_01_11_105_2_0_ANALYSIS", first.Path)
	assert.Equal(t, 0, first.Location.Index)
	assert.False(t, first.Missing)

	// precipitation at 00Z comes from December's forecast file
	precip := job.Items[2]
	assert.True(t, precip.Missing)
	assert.Equal(t, 247, precip.Location.Index)
	assert.Equal(t, 0, job.Items[3].Location.Index)

	missing := job.Missing()
	require.Len(t, missing, 1)
	assert.ErrorIs(t, missing[0], mera.ErrMissingFile)

	assert.Len(t, job.Files(), 2)
}

func TestPlan_UnknownVariable(t *testing.T) {
	_, err := Plan(mera.NewResolver(mera.DefaultTable()), "/data",
		[]mera.Variable{mera.NewVariable("sea_ice_thickness")}, []time.Time{jan1}, nil)
	assert.ErrorIs(t, err, mera.ErrUnknownVariable)
}

type fakeSource struct {
	fail string
}

func (f fakeSource) Field(_ context.Context, it Item) ([]float64, error) {
	if filepath.Base(it.Path) == f.fail {
		return nil, errors.New("truncated record")
	}
	return []float64{float64(it.Location.Index), 280, math.NaN()}, nil
}

func TestCollect(t *testing.T) {
	job := planFixture(t, func(p string) bool {
		return filepath.Base(p) != "MERA_PRODYEAR_2016_12_61_105_0_4_FC3hr"
	})

	report, err := Collect(context.Background(), job, fakeSource{fail: "MERA_PRODYEAR_2017_01_61_105_0_4_FC3hr"})
	require.NoError(t, err)

	assert.Len(t, report.Fields, 2)
	assert.Len(t, report.Skipped, 1)
	require.Len(t, report.Failures, 1)
	assert.ErrorContains(t, report.Failures[0].Err, "truncated record")

	byVar := report.ByVariable()
	require.Len(t, byVar["air_temperature_at_2_metres"], 2)

	s := Stats(byVar["air_temperature_at_2_metres"]...)
	assert.Equal(t, 4, s.Count)
	assert.InDelta(t, 0, s.Min, 1e-9)
	assert.InDelta(t, 280, s.Max, 1e-9)
	assert.InDelta(t, (0+280+1+280)/4.0, s.Mean, 1e-9)
}

func TestCollect_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Collect(ctx, planFixture(t, func(string) bool { return true }), fakeSource{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStats_Empty(t *testing.T) {
	assert.Equal(t, Summary{}, Stats())
	assert.Equal(t, Summary{}, Stats(Field{Values: []float64{math.NaN()}}))
}

type fakeVar struct {
	data any
	n    int64
}

func (f fakeVar) Len() int64 {
	return f.n
}

func (f fakeVar) Values() (any, error) {
	return f.data, nil
}

func (f fakeVar) Dimensions() []string {
	return []string{"time", "y", "x"}
}

func (f fakeVar) Attributes() api.AttributeMap {
	return nil
}

func (f fakeVar) Type() string {
	return "float"
}

func (f fakeVar) GoType() string {
	return "float32"
}

func (f fakeVar) GetSlice(begin, end int64) (any, error) {
	return f.data.([][][]float32)[begin:end], nil
}

func TestReadRecord(t *testing.T) {
	v := fakeVar{n: 2, data: [][][]float32{
		{{1, 2}, {3, 4}},
		{{5, 6}, {7, 8}},
	}}

	got, err := readRecord(v, 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 6, 7, 8}, got)

	_, err = readRecord(v, 2)
	assert.ErrorContains(t, err, "out of range")
}

func TestFileExists(t *testing.T) {
	assert.False(t, FileExists(filepath.Join(t.TempDir(), "nope")))
	assert.False(t, FileExists(t.TempDir()))
}
