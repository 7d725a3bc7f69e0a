package ledger

import "time"

// DateLayout is the wire format of all entry/posting/due dates
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD wire date
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// FormatDate renders a time as a YYYY-MM-DD wire date
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// FiscalPeriodOf derives the fiscal year and period (month-of-year, 1-12)
// from a wire date. Pure: reproducible from the event payload alone, no
// reliance on wall-clock time at projection time.
func FiscalPeriodOf(date string) (year int, period int, err error) {
	t, err := ParseDate(date)
	if err != nil {
		return 0, 0, err
	}
	return t.Year(), int(t.Month()), nil
}
