package extract

import (
	"context"
	"fmt"
	"math"
)

// FieldSource decodes the 2-D field of an item, flattened row-major.
type FieldSource interface {
	Field(ctx context.Context, it Item) ([]float64, error)
}

// Field is a decoded item.
type Field struct {
	Item   Item
	Values []float64
}

// Failure is an item whose field could not be read.
type Failure struct {
	Item Item
	Err  error
}

// Report is the result of Collect.
type Report struct {
	Fields   []Field
	Skipped  []Item
	Failures []Failure
}

// ByVariable groups the collected fields by variable name, keeping plan order.
func (r Report) ByVariable() map[string][]Field {
	out := make(map[string][]Field)
	for _, f := range r.Fields {
		name := f.Item.Location.Variable.String()
		out[name] = append(out[name], f)
	}
	return out
}

// Collect reads every present item of job from src. Missing items are
// skipped and read failures recorded; only cancellation stops the run.
func Collect(ctx context.Context, job Job, src FieldSource) (Report, error) {
	var report Report
	for _, it := range job.Items {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if it.Missing {
			report.Skipped = append(report.Skipped, it)
			continue
		}
		values, err := src.Field(ctx, it)
		if err != nil {
			report.Failures = append(report.Failures, Failure{
				Item: it,
				Err:  fmt.Errorf("%s index %d: %w", it.Path, it.Location.Index, err),
			})
			continue
		}
		report.Fields = append(report.Fields, Field{Item: it, Values: values})
	}
	return report, nil
}

// Summary holds basic statistics of a set of values.
type Summary struct {
	Count int
	Min   float64
	Mean  float64
	Max   float64
}

// Stats summarises the finite values of fields. Count is zero when none are
// finite.
func Stats(fields ...Field) Summary {
	s := Summary{Min: math.Inf(1), Max: math.Inf(-1)}
	var sum float64
	for _, f := range fields {
		for _, v := range f.Values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			s.Count++
			sum += v
			s.Min = math.Min(s.Min, v)
			s.Max = math.Max(s.Max, v)
		}
	}
	if s.Count == 0 {
		return Summary{}
	}
	s.Mean = sum / float64(s.Count)
	return s
}
