package billing

import "errors"

var (
	// ErrBillNotFound is returned when a bill id does not resolve.
	ErrBillNotFound = errors.New("billing: bill not found")
	// ErrDuplicateBillingPeriod is returned when the tenant already has a
	// bill for the requested month and year.
	ErrDuplicateBillingPeriod = errors.New("billing: bill already exists for period")
	// ErrMissingBillID is returned when an update is attempted without an id.
	ErrMissingBillID = errors.New("billing: bill id required for update")
	// ErrInvalidMonth is returned when a month is outside 1..12.
	ErrInvalidMonth = errors.New("billing: month must be between 1 and 12")
	// ErrInvalidYear is returned when a year is not positive.
	ErrInvalidYear = errors.New("billing: invalid year")
	// ErrNilBill is returned when a nil bill is passed to a write.
	ErrNilBill = errors.New("billing: nil bill")
)
