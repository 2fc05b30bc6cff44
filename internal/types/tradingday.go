package types

import "time"

// Trading-day arithmetic shared by the historical simulator's horizon and the
// live tracker's expected-exit computation. Only weekends are skipped; there
// is no holiday calendar, a documented limitation inherited from the data
// source (a holiday simply has no bar, so pending fills and horizon expiry
// fire on the next session's bar instead).

// NextTradingDay returns the next weekday strictly after d.
func NextTradingDay(d time.Time) time.Time {
	nd := d.AddDate(0, 0, 1)
	for nd.Weekday() == time.Saturday || nd.Weekday() == time.Sunday {
		nd = nd.AddDate(0, 0, 1)
	}

	return nd
}

// AddTradingDays advances d by n trading days (weekends skipped).
func AddTradingDays(d time.Time, n int) time.Time {
	current := d
	for i := 0; i < n; i++ {
		current = NextTradingDay(current)
	}

	return current
}

// SameDay reports whether a and b fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()

	return ay == by && am == bm && ad == bd
}
