package mera

import (
	"sort"
	"time"
)

const (
	// StepInterval is the spacing of records inside every archive file.
	StepInterval = 3 * time.Hour
	// AccumulationLead is the lead time of the forecast standing in for an
	// analysis of accumulated fields.
	AccumulationLead = 3 * time.Hour
)

// Location is where the value of a variable at a validity time is stored.
type Location struct {
	Variable  Variable
	Code      Code
	File      FileName
	ValidTime time.Time
	BaseTime  time.Time
	LeadTime  time.Duration
	// Index is the 0-based record slot inside the monthly file.
	Index int
}

// PathFromRoot is a shortcut for l.File.PathFromRoot().
func (l Location) PathFromRoot() string {
	return l.File.PathFromRoot()
}

// Resolver maps variables and instants to archive files.
type Resolver struct {
	table Table
}

// NewResolver returns a Resolver over t.
func NewResolver(t Table) *Resolver {
	return &Resolver{table: t}
}

// Table returns the table the resolver was built with.
func (r *Resolver) Table() Table { return r.table }

// Code resolves the physical code of v.
func (r *Resolver) Code(v Variable) (Code, error) {
	return r.table.Resolve(v)
}

// FileName builds the archive file name of v for a month and stream.
func (r *Resolver) FileName(v Variable, year, month int, stream Stream) (FileName, error) {
	c, err := r.table.Resolve(v)
	if err != nil {
		return FileName{}, err
	}
	return NewFileName(c, year, month, stream), nil
}

// FileFor returns the file of v in the given stream for the month containing t.
func (r *Resolver) FileFor(v Variable, t time.Time, stream Stream) (FileName, error) {
	t = t.UTC()
	return r.FileName(v, t.Year(), int(t.Month()), stream)
}

// ResolveValidity locates v at validity time valid. Accumulated fields are
// read from the 3-hour forecast started AccumulationLead earlier, so the file
// month follows that base time and may be the month before valid.
func (r *Resolver) ResolveValidity(v Variable, valid time.Time) (Location, error) {
	c, err := r.table.Resolve(v)
	if err != nil {
		return Location{}, err
	}
	valid = valid.UTC()

	base, lead, stream := valid, time.Duration(0), StreamAnalysis
	if c.Accumulated() {
		base = valid.Add(-AccumulationLead)
		lead = AccumulationLead
		stream = StreamForecast3
	}

	f := NewFileName(c, base.Year(), int(base.Month()), stream)
	return Location{
		Variable:  v,
		Code:      c,
		File:      f,
		ValidTime: valid,
		BaseTime:  base,
		LeadTime:  lead,
		Index:     int(base.Sub(f.MonthStart()) / StepInterval),
	}, nil
}

// ResolveAll resolves every (variable, time) pair, variable-major.
func (r *Resolver) ResolveAll(vars []Variable, times []time.Time) ([]Location, error) {
	locs := make([]Location, 0, len(vars)*len(times))
	for _, v := range vars {
		for _, t := range times {
			loc, err := r.ResolveValidity(v, t)
			if err != nil {
				return nil, err
			}
			locs = append(locs, loc)
		}
	}
	return locs, nil
}

// FileNames expands variables, times and streams into the sorted set of
// distinct archive file names.
func (r *Resolver) FileNames(vars []Variable, times []time.Time, streams []Stream) ([]string, error) {
	seen := make(map[string]struct{})
	for _, v := range vars {
		c, err := r.table.Resolve(v)
		if err != nil {
			return nil, err
		}
		for _, t := range times {
			t = t.UTC()
			for _, s := range streams {
				seen[NewFileName(c, t.Year(), int(t.Month()), s).String()] = struct{}{}
			}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
