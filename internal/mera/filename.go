package mera

import (
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"
)

// Stream is the archive partition a file belongs to.
type Stream string

const (
	StreamAnalysis   Stream = "ANALYSIS"
	StreamForecast3  Stream = "FC3hr"
	StreamForecast33 Stream = "FC33hr"
)

// Streams lists every stream, analysis first.
var Streams = []Stream{StreamAnalysis, StreamForecast3, StreamForecast33}

// ParseStream validates a stream label.
func ParseStream(s string) (Stream, error) {
	for _, st := range Streams {
		if string(st) == s {
			return st, nil
		}
	}
	return "", newError(KindMalformedName, s, "unknown stream")
}

const (
	ArchiveTag        = "MERA"
	ProductYearTag    = "PRODYEAR"
	CompressionSuffix = ".bz2"

	// RootDir is the top directory of the archive tree on every medium.
	RootDir = "mera"

	fileNameFields = 9
)

// FileName identifies one monthly archive file:
// MERA_PRODYEAR_<YYYY>_<MM>_<param>_<leveltype>_<level>_<timerange>_<STREAM>.
type FileName struct {
	Year   int
	Month  int
	Code   Code
	Stream Stream
}

// NewFileName builds the file name for a code, month and stream.
func NewFileName(c Code, year, month int, stream Stream) FileName {
	return FileName{Year: year, Month: month, Code: c, Stream: stream}
}

func (f FileName) String() string {
	return fmt.Sprintf("%s_%s_%d_%02d_%d_%d_%d_%d_%s",
		ArchiveTag, ProductYearTag, f.Year, f.Month,
		f.Code.Parameter, f.Code.LevelType, f.Code.Level, f.Code.TimeRange,
		f.Stream)
}

// Dir returns the directory holding the file relative to the medium root,
// one level per code component so no directory grows unbounded.
func (f FileName) Dir() string {
	return path.Join(RootDir,
		strconv.Itoa(f.Code.Parameter),
		strconv.Itoa(f.Code.LevelType),
		strconv.Itoa(f.Code.Level),
		strconv.Itoa(f.Code.TimeRange))
}

// PathFromRoot returns the file path relative to the medium root.
func (f FileName) PathFromRoot() string {
	return path.Join(f.Dir(), f.String())
}

// MonthStart returns midnight UTC on the first day of the file's month.
func (f FileName) MonthStart() time.Time {
	return time.Date(f.Year, time.Month(f.Month), 1, 0, 0, 0, 0, time.UTC)
}

// ParseFileName is the inverse of FileName.String. It accepts a path and an
// optional compression suffix; anything String would not produce is rejected.
func ParseFileName(name string) (FileName, error) {
	base := strings.TrimSuffix(path.Base(name), CompressionSuffix)
	fields := strings.Split(base, "_")
	if len(fields) != fileNameFields {
		return FileName{}, newError(KindMalformedName, name, "expected %d fields, got %d", fileNameFields, len(fields))
	}
	if fields[0] != ArchiveTag || fields[1] != ProductYearTag {
		return FileName{}, newError(KindMalformedName, name, "missing %s_%s prefix", ArchiveTag, ProductYearTag)
	}

	nums := make([]int, 6)
	for i := range nums {
		n, err := strconv.Atoi(fields[i+2])
		if err != nil {
			return FileName{}, newError(KindMalformedName, name, "field %d is not an integer", i+2)
		}
		nums[i] = n
	}
	if nums[1] < 1 || nums[1] > 12 {
		return FileName{}, newError(KindMalformedName, name, "month %d out of range", nums[1])
	}

	stream, err := ParseStream(fields[8])
	if err != nil {
		return FileName{}, newError(KindMalformedName, name, "unknown stream %q", fields[8])
	}

	f := FileName{
		Year:   nums[0],
		Month:  nums[1],
		Code:   Code{Parameter: nums[2], LevelType: nums[3], Level: nums[4], TimeRange: nums[5]},
		Stream: stream,
	}
	if f.String() != base {
		return FileName{}, newError(KindMalformedName, name, "not in canonical form %s", f.String())
	}
	return f, nil
}

// ExpandPathFromRoot maps a bare (or already nested) file name to its path
// relative to the medium root. A compression suffix is preserved.
func ExpandPathFromRoot(name string) (string, error) {
	f, err := ParseFileName(name)
	if err != nil {
		return "", err
	}
	return path.Join(f.Dir(), path.Base(name)), nil
}
