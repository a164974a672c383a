// Package epoch implements the three CDF time encodings and their
// conversion to a common axis: 64-bit signed nanoseconds since
// 1970-01-01T00:00:00 UTC (NS1970).
//
//   - Epoch: float64 milliseconds since 0000-01-01T00:00:00
//   - Epoch16: two float64, seconds since 0000-01-01 plus picoseconds
//     within that second
//   - TT2000: int64 TAI nanoseconds since J2000 (2000-01-01T12:00:00 TT)
//
// Epoch and Epoch16 conversions are affine. TT2000 additionally crosses
// the TAI-UTC leap-second table; see leap.go. During an inserted leap
// second the NS1970 axis repeats one second, so an NS1970 value in that
// second matches two TT2000 instants. Conversion back to TT2000 returns
// the earlier one for leap seconds inserted after J2000 and the inserted
// second itself for those before.
//
// Batch conversion with a CPU-dispatched kernel lives in batch.go.
package epoch

import (
	"math"
	"time"
)

const (
	// nsPerSec is one second on the NS1970 axis.
	nsPerSec = int64(1_000_000_000)

	// epochOffsetMs is 1970-01-01T00:00:00 on the Epoch axis.
	epochOffsetMs = 62167219200000.0

	// epoch16OffsetSec is 1970-01-01T00:00:00 on the Epoch16 seconds axis.
	epoch16OffsetSec = 62167219200.0

	// tt2000Shift maps TT2000 zero (J2000, 2000-01-01T11:58:55.816 UTC)
	// onto NS1970 under the 32 leap seconds in effect at that instant.
	tt2000Shift = int64(946727935816000000)

	// j2000LeapSeconds is the cumulative TAI-UTC offset at J2000.
	j2000LeapSeconds = int64(32)
)

type (
	// Epoch is the CDF_EPOCH encoding.
	Epoch float64

	// TT2000 is the CDF_TIME_TT2000 encoding.
	TT2000 int64
)

// Epoch16 is the CDF_EPOCH16 encoding.
type Epoch16 struct {
	Seconds     float64
	Picoseconds float64
}

// Ns1970 converts the epoch value to nanoseconds since 1970 UTC.
func (e Epoch) Ns1970() int64 {
	return int64((float64(e) - epochOffsetMs) * 1e6)
}

// EpochFromNs1970 converts nanoseconds since 1970 UTC to an epoch value.
// Sub-millisecond precision is lost; CDF_EPOCH carries milliseconds.
func EpochFromNs1970(ns int64) Epoch {
	return Epoch(float64(ns)/1e6 + epochOffsetMs)
}

// Time returns the epoch value as a time.Time in UTC.
func (e Epoch) Time() time.Time {
	return time.Unix(0, e.Ns1970()).UTC()
}

// EpochFromTime converts a time.Time to the epoch encoding.
func EpochFromTime(t time.Time) Epoch {
	return EpochFromNs1970(t.UnixNano())
}

// Ns1970 converts the epoch16 value to nanoseconds since 1970 UTC.
// Picoseconds are rounded to the nearest nanosecond.
func (e Epoch16) Ns1970() int64 {
	sec := int64(e.Seconds) - int64(epoch16OffsetSec)
	return sec*nsPerSec + int64(math.Round(e.Picoseconds/1e3))
}

// Epoch16FromNs1970 converts nanoseconds since 1970 UTC to an epoch16 value.
func Epoch16FromNs1970(ns int64) Epoch16 {
	sec := ns / nsPerSec
	rem := ns % nsPerSec
	if rem < 0 {
		sec--
		rem += nsPerSec
	}

	return Epoch16{
		Seconds:     float64(sec) + epoch16OffsetSec,
		Picoseconds: float64(rem) * 1e3,
	}
}

// Time returns the epoch16 value as a time.Time in UTC.
func (e Epoch16) Time() time.Time {
	return time.Unix(0, e.Ns1970()).UTC()
}

// Epoch16FromTime converts a time.Time to the epoch16 encoding.
func Epoch16FromTime(t time.Time) Epoch16 {
	return Epoch16FromNs1970(t.UnixNano())
}

// Ns1970 converts the tt2000 value to nanoseconds since 1970 UTC,
// subtracting the leap seconds accumulated since J2000.
func (t TT2000) Ns1970() int64 {
	return int64(t) + tt2000Shift - (LeapSeconds(t)-j2000LeapSeconds)*nsPerSec
}

// TT2000FromNs1970 converts nanoseconds since 1970 UTC to tt2000 by
// solving x = ns + (leap(x) - 32)s through fixed-point iteration; the leap
// count moves by at most one per step, so three iterations always settle.
func TT2000FromNs1970(ns int64) TT2000 {
	x := ns - tt2000Shift
	for range 3 {
		x = ns - tt2000Shift + (LeapSeconds(TT2000(x))-j2000LeapSeconds)*nsPerSec
	}

	return TT2000(x)
}

// Time returns the tt2000 value as a time.Time in UTC.
func (t TT2000) Time() time.Time {
	return time.Unix(0, t.Ns1970()).UTC()
}

// TT2000FromTime converts a time.Time to the tt2000 encoding.
func TT2000FromTime(t time.Time) TT2000 {
	return TT2000FromNs1970(t.UnixNano())
}
