package model

import "errors"

var (
	// ErrConfiguration marks fatal setup problems: unresolved headers,
	// out-of-range occurrences, unset selectors. The run aborts before any
	// mutation when one of these surfaces.
	ErrConfiguration = errors.New("configuration error")

	// ErrHeaderNotFound is returned when a header never appeared in the header row
	ErrHeaderNotFound = errors.New("header not found")

	// ErrOccurrenceOutOfRange is returned when a duplicated header is asked
	// for an occurrence it does not have
	ErrOccurrenceOutOfRange = errors.New("header occurrence out of range")

	// ErrHeaderMapMissing is returned when a persisted header map is loaded before setup ran
	ErrHeaderMapMissing = errors.New("header index map not found")

	// ErrNotOnPage is returned by page collaborators when an expected element is absent
	ErrNotOnPage = errors.New("not present on page")

	// ErrIO is returned when the spreadsheet or the findings store is unreachable
	ErrIO = errors.New("io error")

	// ErrWorkersPending is returned when check processes had not reported
	// done before the reconcile wait timed out
	ErrWorkersPending = errors.New("check workers still pending")

	// ErrUnknownCategory is returned for note categories outside the fixed set
	ErrUnknownCategory = errors.New("unknown note category")
)

// IsConfiguration reports whether err belongs to the configuration class.
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrConfiguration) ||
		errors.Is(err, ErrHeaderNotFound) ||
		errors.Is(err, ErrOccurrenceOutOfRange) ||
		errors.Is(err, ErrHeaderMapMissing)
}
