// Package mera maps CF standard names to files of the MERA reanalysis
// archive (Met Éireann ReAnalysis, 1981 onwards, GRIB1 on a 2.5 km grid).
//
// # Archive Layout
//
// Every field is stored in one GRIB1 file per calendar month and stream.
// Fields are identified by four GRIB1 header values rather than by name:
//
//	indicatorOfParameter, indicatorOfTypeOfLevel, level, timeRangeIndicator
//
// The file name encodes that code together with the month and stream:
//
//	MERA_PRODYEAR_2017_01_11_105_2_0_ANALYSIS
//	              year mm p  t   l r stream
//
// Month is zero padded, every other number is plain decimal. Files live in a
// tree keyed by the same code so that no directory grows without bound:
//
//	mera/11/105/2/0/MERA_PRODYEAR_2017_01_11_105_2_0_ANALYSIS
//
// Some media hold bzip2-compressed copies with a ".bz2" suffix.
//
// # Streams
//
//	ANALYSIS  3-hourly analyses, instantaneous fields (timeRangeIndicator 0)
//	FC3hr     3-hour forecasts, used for accumulated fields (timeRangeIndicator 4)
//	FC33hr    33-hour forecasts
//
// Records inside a monthly file are 3 hours apart starting at 00 UTC on the
// first day, so the slot of an instant is its offset from the month start in
// units of 3 hours. An accumulation valid at T is the 3-hour forecast started
// at T-3h, which means the accumulation valid at 00 UTC on the first of a
// month is read from the previous month's FC3hr file.
//
// # Names
//
// Variables use CF standard names. A vertical level is appended as
//
//	<name>_at_<value>_<unit>   e.g. air_temperature_at_850_hPa
//
// where unit is hPa (isobaric), metres (height above ground), kelvin
// (isotherm) or "level" with value "sea" or "surface". The suffix overrides
// the level type and level of the table default; parameter and time range
// always come from the table, which transcribes MERA technical note 65.
package mera
