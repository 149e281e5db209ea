package billing

import "fmt"

// Period identifies one invoicing cycle: a calendar (month, year) pair.
type Period struct {
	Month int
	Year  int
}

// NewPeriod validates month and year and builds a Period.
func NewPeriod(month, year int) (Period, error) {
	if month < 1 || month > 12 {
		return Period{}, ErrInvalidMonth
	}
	if year < 1 {
		return Period{}, ErrInvalidYear
	}
	return Period{Month: month, Year: year}, nil
}

// Previous returns the immediately preceding calendar month, rolling
// January back into December of the prior year.
func (p Period) Previous() Period {
	if p.Month == 1 {
		return Period{Month: 12, Year: p.Year - 1}
	}
	return Period{Month: p.Month - 1, Year: p.Year}
}

// Next returns the immediately following calendar month, rolling December
// forward into January of the next year.
func (p Period) Next() Period {
	if p.Month == 12 {
		return Period{Month: 1, Year: p.Year + 1}
	}
	return Period{Month: p.Month + 1, Year: p.Year}
}

// Compare orders periods chronologically: year first, then month.
// It returns -1, 0 or 1.
func (p Period) Compare(other Period) int {
	if p.Year != other.Year {
		if p.Year < other.Year {
			return -1
		}
		return 1
	}
	if p.Month != other.Month {
		if p.Month < other.Month {
			return -1
		}
		return 1
	}
	return 0
}

// String formats the period as month/year.
func (p Period) String() string {
	return fmt.Sprintf("%d/%d", p.Month, p.Year)
}
