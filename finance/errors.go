package finance

import "errors"

// ErrNoData marks a calculation whose upstream data was empty.
var ErrNoData = errors.New("no data")

// NoDataError carries the user-facing reason for an empty result.
type NoDataError struct {
	Reason string
}

func (e *NoDataError) Error() string {
	return e.Reason
}

func (e *NoDataError) Is(target error) bool {
	return target == ErrNoData
}

func noData(reason string) error {
	return &NoDataError{Reason: reason}
}
