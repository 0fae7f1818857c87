package extract

import (
	"context"
	"fmt"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
)

// NetCDFSource reads fields from NetCDF conversions of the archive files,
// stored next to each file with Suffix appended. Each file holds one
// variable whose leading dimension is the 3-hourly record index.
type NetCDFSource struct {
	Suffix string
	// VarName maps an item to the NetCDF variable name. Nil uses the CF base name.
	VarName func(Item) string
}

// NewNetCDFSource returns a source reading "<file>.nc".
func NewNetCDFSource() *NetCDFSource {
	return &NetCDFSource{Suffix: ".nc"}
}

func (s *NetCDFSource) Field(_ context.Context, it Item) ([]float64, error) {
	nc, err := netcdf.Open(it.Path + s.Suffix)
	if err != nil {
		return nil, err
	}
	defer nc.Close()

	name := it.Location.Variable.Name
	if s.VarName != nil {
		name = s.VarName(it)
	}
	vg, err := nc.GetVarGetter(name)
	if err != nil {
		return nil, fmt.Errorf("variable %q: %w", name, err)
	}
	return readRecord(vg, int64(it.Location.Index))
}

// readRecord returns record i of a (record, y, x) variable, flattened.
func readRecord(vg api.VarGetter, i int64) ([]float64, error) {
	if i < 0 || i >= vg.Len() {
		return nil, fmt.Errorf("record %d out of range [0, %d)", i, vg.Len())
	}
	v, err := vg.GetSlice(i, i+1)
	if err != nil {
		return nil, err
	}
	switch rec := v.(type) {
	case [][][]float32:
		return flatten(rec[0]), nil
	case [][][]float64:
		return flatten(rec[0]), nil
	case [][][]int16:
		return flatten(rec[0]), nil
	case [][][]int32:
		return flatten(rec[0]), nil
	default:
		return nil, fmt.Errorf("unsupported variable type %s", vg.GoType())
	}
}

func flatten[T float32 | float64 | int16 | int32](grid [][]T) []float64 {
	n := 0
	for _, row := range grid {
		n += len(row)
	}
	out := make([]float64, 0, n)
	for _, row := range grid {
		for _, v := range row {
			out = append(out, float64(v))
		}
	}
	return out
}
