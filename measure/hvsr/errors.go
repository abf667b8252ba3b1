package hvsr

import "errors"

var (
	// ErrConfiguration reports an invalid analysis setting.
	ErrConfiguration = errors.New("hvsr: invalid configuration")
	// ErrUnsupportedMethod reports a combination method that is declared
	// but has no implementation. It also matches [ErrConfiguration].
	ErrUnsupportedMethod = errors.New("hvsr: unsupported combination method")
	// ErrDataShape reports channel arrays that disagree in bin or window count.
	ErrDataShape = errors.New("hvsr: inconsistent data shape")
	// ErrNumeric reports a non-finite or zero power that cannot be divided by.
	ErrNumeric = errors.New("hvsr: numeric degeneracy")
	// ErrNoPeak is returned by [Result.Best] when no peak survived
	// initialization.
	ErrNoPeak = errors.New("hvsr: no peak")
)
