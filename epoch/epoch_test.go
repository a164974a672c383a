package epoch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEpochUnixOrigin(t *testing.T) {
	// 1970-01-01T00:00:00 UTC on the CDF_EPOCH axis.
	e := Epoch(62167219200000.0)
	require.Equal(t, int64(0), e.Ns1970())
	require.Equal(t, time.Unix(0, 0).UTC(), e.Time())
}

func TestTT2000J2000(t *testing.T) {
	require := require.New(t)

	// J2000 noon TT is 2000-01-01T11:58:55.816 UTC.
	require.Equal(int64(946727935816), TT2000(0).Ns1970()/1_000_000)

	// 2020-01-01T00:00:00 UTC, 37 leap seconds in effect.
	require.Equal(int64(1577836800000), TT2000(631108869184000000).Ns1970()/1_000_000)
}

func TestTT2000LeapBoundary2017(t *testing.T) {
	require := require.New(t)

	// Start of the inserted second 2016-12-31T23:59:60 UTC.
	leap60 := TT2000(536500868184000000)
	require.Equal(int64(1483228799000000000), leap60.Ns1970())

	// First nanosecond of 2017.
	midnight := TT2000(536500869184000000)
	require.Equal(int64(1483228800000000000), midnight.Ns1970())

	// Last instant before the inserted second.
	require.Equal(int64(1483228799999999999), TT2000(536500868184000000-1).Ns1970())
}

func TestLeapTableFixpoint(t *testing.T) {
	require := require.New(t)

	for _, entry := range LeapSecondTable() {
		require.Equal(entry.Seconds, LeapSeconds(entry.Threshold),
			"at threshold the new offset applies")
		require.Equal(entry.Seconds, LeapSeconds(entry.Threshold+TT2000(nsPerSec)))

		before := LeapSeconds(entry.Threshold - 1)
		if entry.Seconds == 10 {
			require.Equal(int64(0), before, "before the 1972 alignment no offset applies")
		} else {
			require.Equal(entry.Seconds-1, before)
		}
	}
}

func TestBranchlessMatchesBinarySearch(t *testing.T) {
	require := require.New(t)

	table := LeapSecondTable()

	probes := []TT2000{
		-900000000000000000,
		0,
		536500868184000000,
		536500868184000000 - 1,
		631108869184000000,
		900000000000000000,
	}
	for _, entry := range table {
		probes = append(probes,
			entry.Threshold-1,
			entry.Threshold,
			entry.Threshold+1,
			entry.Threshold+TT2000(nsPerSec),
		)
	}

	for _, p := range probes {
		require.Equal(LeapSeconds(p), LeapSecondsBranchless(p), "probe %d", int64(p))
	}
}

func TestTT2000RoundTrip(t *testing.T) {
	require := require.New(t)

	values := []TT2000{
		0,
		631108869184000000,
		-31579136816000000, // 1999-01-01 threshold
		536500869184000000, // 2017-01-01T00:00:00
		123456789,
		-500000000000000000,
	}

	for _, v := range values {
		require.Equal(v, TT2000FromNs1970(v.Ns1970()), "tt2000 %d", int64(v))
	}
}

func TestEpochRoundTrip(t *testing.T) {
	require := require.New(t)

	values := []Epoch{
		62167219200000.0,
		63745056000000.0, // 2020-01-01
		0.0,
		62167219200000.0 + 1234567.0,
	}

	for _, v := range values {
		restored := EpochFromNs1970(v.Ns1970())
		require.InDelta(float64(v), float64(restored), 0.5, "identity modulo ms resolution")
	}
}

func TestEpoch16RoundTrip(t *testing.T) {
	require := require.New(t)

	values := []Epoch16{
		{Seconds: 62167219200.0, Picoseconds: 0},
		{Seconds: 63745056000.0, Picoseconds: 123456789000.0},
		{Seconds: 62167219200.0 + 86400.0, Picoseconds: 999999999000.0},
	}

	for _, v := range values {
		restored := Epoch16FromNs1970(v.Ns1970())
		require.Equal(v.Seconds, restored.Seconds)
		require.InDelta(v.Picoseconds, restored.Picoseconds, 1000.0, "identity modulo ns resolution")
	}
}

func TestBatchMatchesScalar(t *testing.T) {
	require := require.New(t)

	// 2048 consecutive seconds in mid-1972 exercise the lookup path; the
	// three appended instants around and after the 2017 threshold exercise
	// the affine tail.
	in := make([]TT2000, 2048)
	for i := range in {
		in[i] = TT2000(-869399957816000000 + int64(i)*nsPerSec)
	}
	in = append(in, 536500868184000000-1, 536500868184000000, 631108869184000000)

	expected := make([]int64, len(in))
	toNs1970TT2000Scalar(in, expected)

	got := make([]int64, len(in))
	toNs1970TT2000Wide(in, got)
	require.Equal(expected, got, "wide kernel must match scalar reference")

	got2 := make([]int64, len(in))
	ToNs1970TT2000(in, got2)
	require.Equal(expected, got2)

	for i, v := range in {
		require.Equal(v.Ns1970(), expected[i])
	}
}

func TestBatchUnsortedInput(t *testing.T) {
	require := require.New(t)

	// Unordered input defeats the sorted fast-path assumption; results
	// must still match element-wise conversion.
	in := []TT2000{
		631108869184000000,
		0,
		536500868184000000,
		-500000000000000000,
		536500869184000000,
	}

	out := make([]int64, len(in))
	ToNs1970TT2000(in, out)

	for i, v := range in {
		require.Equal(v.Ns1970(), out[i])
	}
}

func TestBatchEpochKernels(t *testing.T) {
	require := require.New(t)

	epochs := []Epoch{62167219200000.0, 63745056000000.0}
	out := make([]int64, len(epochs))
	ToNs1970Epoch(epochs, out)
	require.Equal(int64(0), out[0])
	require.Equal(int64(1577836800000000000), out[1])

	epoch16s := []Epoch16{{Seconds: 62167219200.0, Picoseconds: 500.0}}
	out16 := make([]int64, 1)
	ToNs1970Epoch16(epoch16s, out16)
	require.Equal(int64(1), out16[0], "500 ps rounds up to 1 ns")
}

func TestReplaceLeapSeconds(t *testing.T) {
	require := require.New(t)

	original := LeapSecondTable()
	defer func() {
		require.NoError(ReplaceLeapSeconds(original))
	}()

	// A hypothetical announcement appended to the table.
	updated := append(LeapSecondTable(), LeapSecond{Threshold: 800000000184000000, Seconds: 38})
	require.NoError(ReplaceLeapSeconds(updated))
	require.Equal(int64(38), LeapSeconds(TT2000(800000000184000000)))
	require.Equal(int64(37), LeapSeconds(TT2000(800000000184000000-1)))
	require.Equal(LeapSeconds(800000000184000000), LeapSecondsBranchless(800000000184000000))

	require.Error(ReplaceLeapSeconds(nil))
	require.Error(ReplaceLeapSeconds([]LeapSecond{{0, 10}, {-5, 11}}))
	require.Error(ReplaceLeapSeconds([]LeapSecond{{0, 10}, {5, 12}}))
}

func TestTimeBridge(t *testing.T) {
	require := require.New(t)

	tm := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	require.Equal(TT2000(631108869184000000), TT2000FromTime(tm))
	require.Equal(tm, TT2000(631108869184000000).Time())

	e := EpochFromTime(tm)
	require.Equal(tm, e.Time())

	e16 := Epoch16FromTime(tm)
	require.Equal(tm, e16.Time())
}
