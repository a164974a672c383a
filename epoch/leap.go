package epoch

import (
	"fmt"
	"sort"
	"sync/atomic"
)

// LeapSecond is one row of the leap-second table: the TT2000 instant at
// which a new cumulative TAI-UTC offset takes effect, and that offset in
// seconds. Thresholds sit at the start of the inserted second, so the
// instant 23:59:60.000 already carries the new offset.
type LeapSecond struct {
	Threshold TT2000
	Seconds   int64
}

// defaultLeapTable is derived from the IERS bulletin: every leap second
// announced since the 1972 alignment of UTC, expressed on the TT2000 axis.
var defaultLeapTable = []LeapSecond{
	{-883655958816000000, 10}, // 1972-01-01
	{-867931157816000000, 11}, // 1972-07-01
	{-852033556816000000, 12}, // 1973-01-01
	{-820497555816000000, 13}, // 1974-01-01
	{-788961554816000000, 14}, // 1975-01-01
	{-757425553816000000, 15}, // 1976-01-01
	{-725803152816000000, 16}, // 1977-01-01
	{-694267151816000000, 17}, // 1978-01-01
	{-662731150816000000, 18}, // 1979-01-01
	{-631195149816000000, 19}, // 1980-01-01
	{-583934348816000000, 20}, // 1981-07-01
	{-552398347816000000, 21}, // 1982-07-01
	{-520862346816000000, 22}, // 1983-07-01
	{-457703945816000000, 23}, // 1985-07-01
	{-378734344816000000, 24}, // 1988-01-01
	{-315575943816000000, 25}, // 1990-01-01
	{-284039942816000000, 26}, // 1991-01-01
	{-236779141816000000, 27}, // 1992-07-01
	{-205243140816000000, 28}, // 1993-07-01
	{-173707139816000000, 29}, // 1994-07-01
	{-126273538816000000, 30}, // 1996-01-01
	{-79012737816000000, 31},  // 1997-07-01
	{-31579136816000000, 32},  // 1999-01-01
	{189345664184000000, 33},  // 2006-01-01
	{284040065184000000, 34},  // 2009-01-01
	{394372866184000000, 35},  // 2012-07-01
	{488980867184000000, 36},  // 2015-07-01
	{536500868184000000, 37},  // 2017-01-01
}

// leapTable is the active table. It is read on every tt2000 conversion and
// replaced, never mutated: ReplaceLeapSeconds swaps in a fresh slice.
var leapTable atomic.Pointer[[]LeapSecond]

func init() {
	table := defaultLeapTable
	leapTable.Store(&table)
}

// LeapSeconds returns the cumulative TAI-UTC offset in effect at the given
// tt2000 instant, using binary search over the active table. Instants
// before the first table entry return 0.
func LeapSeconds(t TT2000) int64 {
	table := *leapTable.Load()

	i := sort.Search(len(table), func(i int) bool {
		return table[i].Threshold > t
	})
	if i == 0 {
		return 0
	}

	return table[i-1].Seconds
}

// LeapSecondsBranchless computes the same lookup without data-dependent
// branches: it counts crossed thresholds with sign-bit arithmetic. The
// result is bit-identical to LeapSeconds for any table whose offsets grow
// by exactly one second per entry, which holds for every IERS announcement
// since 1972.
func LeapSecondsBranchless(t TT2000) int64 {
	table := *leapTable.Load()
	if len(table) == 0 {
		return 0
	}

	var crossed int64
	for i := range table {
		// (t - threshold) has its sign bit clear exactly when t >= threshold.
		crossed += int64(uint64(int64(t)-int64(table[i].Threshold))>>63) ^ 1
	}

	if crossed == 0 {
		return 0
	}

	return table[0].Seconds - 1 + crossed
}

// LeapSecondTable returns a copy of the active table.
func LeapSecondTable() []LeapSecond {
	table := *leapTable.Load()
	out := make([]LeapSecond, len(table))
	copy(out, table)

	return out
}

// ReplaceLeapSeconds atomically swaps the active leap-second table, for
// callers tracking IERS announcements at runtime. Entries must be strictly
// ascending in threshold with offsets growing by one second per entry.
func ReplaceLeapSeconds(entries []LeapSecond) error {
	if len(entries) == 0 {
		return fmt.Errorf("leap second table must not be empty")
	}

	for i := 1; i < len(entries); i++ {
		if entries[i].Threshold <= entries[i-1].Threshold {
			return fmt.Errorf("leap second thresholds must be strictly ascending at index %d", i)
		}
		if entries[i].Seconds != entries[i-1].Seconds+1 {
			return fmt.Errorf("leap second offsets must grow by one second at index %d", i)
		}
	}

	table := make([]LeapSecond, len(entries))
	copy(table, entries)
	leapTable.Store(&table)

	return nil
}
