package mera

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// MonthlyCounts tabulates dates per calendar month over a span of years.
type MonthlyCounts struct {
	FirstYear int
	// Counts[i][m-1] is the count for year FirstYear+i and month m. When
	// Difference is set it holds available minus expected.
	Counts     [][12]int
	Difference bool
}

// CountMonths counts available dates per month. When expected is non-empty
// each cell is the number of available dates minus the number of expected
// dates, and the year span is taken from expected.
func CountMonths(available, expected []time.Time) MonthlyCounts {
	span := available
	if len(expected) > 0 {
		span = expected
	}
	if len(span) == 0 {
		return MonthlyCounts{Difference: len(expected) > 0}
	}

	first, last := span[0].UTC().Year(), span[0].UTC().Year()
	for _, t := range span[1:] {
		y := t.UTC().Year()
		first = min(first, y)
		last = max(last, y)
	}

	mc := MonthlyCounts{
		FirstYear:  first,
		Counts:     make([][12]int, last-first+1),
		Difference: len(expected) > 0,
	}
	mc.add(available, 1)
	mc.add(expected, -1)
	return mc
}

func (mc *MonthlyCounts) add(dates []time.Time, sign int) {
	for _, t := range dates {
		t = t.UTC()
		i := t.Year() - mc.FirstYear
		if i < 0 || i >= len(mc.Counts) {
			continue
		}
		mc.Counts[i][t.Month()-1] += sign
	}
}

// Count returns the cell for a year and month, 0 outside the table.
func (mc MonthlyCounts) Count(year int, month time.Month) int {
	i := year - mc.FirstYear
	if i < 0 || i >= len(mc.Counts) || month < time.January || month > time.December {
		return 0
	}
	return mc.Counts[i][month-1]
}

// Total sums every cell.
func (mc MonthlyCounts) Total() int {
	var n int
	for _, row := range mc.Counts {
		for _, c := range row {
			n += c
		}
	}
	return n
}

// Format writes the table as fixed-width text, one row per year.
func (mc MonthlyCounts) Format(w io.Writer) error {
	var b strings.Builder
	if mc.Difference {
		b.WriteString("  Counting #(dates available) - #(dates expected) for each month\n")
	} else {
		b.WriteString("  Counting number of dates available for each month\n")
	}

	rule := "-----+" + strings.TrimSuffix(strings.Repeat("------", 12), "-") + "\n"
	b.WriteString("     |")
	for m := 1; m <= 12; m++ {
		if m > 1 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%-5d", m)
	}
	b.WriteString("\n" + rule)

	for i, row := range mc.Counts {
		fmt.Fprintf(&b, "%-5d|", mc.FirstYear+i)
		for m, c := range row {
			if m > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "%-5d", c)
		}
		b.WriteByte('\n')
	}
	b.WriteString(rule)

	_, err := io.WriteString(w, b.String())
	return err
}
