package entity

// MonthCount is the number of distinct stay dates stored for one month.
type MonthCount struct {
	Month string // "2006-01"
	Count int
}

// DateCoverage compares the stay dates stored for one city and month in a single
// retrieval batch against the dates the calendar expects.
type DateCoverage struct {
	City     string   `json:"city"`
	Month    string   `json:"month"`
	AsOf     string   `json:"as_of"`
	Expected int      `json:"expected"`
	Actual   int      `json:"actual"`
	Missing  []string `json:"missing,omitempty"`
}

// Complete reports whether no expected date is missing.
func (c DateCoverage) Complete() bool {
	return len(c.Missing) == 0
}
