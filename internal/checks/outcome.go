package checks

import (
	"slices"
	"strings"

	"pdp-recon/internal/model"
	"pdp-recon/internal/normalize"
)

// Status is the result class of one comparison
type Status int

const (
	Matched Status = iota
	Mismatched
	NotFound
)

func (s Status) String() string {
	switch s {
	case Matched:
		return "matched"
	case Mismatched:
		return "mismatched"
	case NotFound:
		return "not-found"
	}
	return "unknown"
}

// Outcome is a comparison result. Callers decide the note text and whether
// the pricing flag is affected.
type Outcome struct {
	Status   Status
	Observed string
}

// CompareColor compares a swatch title with the expected colour description
func CompareColor(expected, title string) Outcome {
	observed := normalize.Color(title)
	switch {
	case observed == "":
		return Outcome{Status: NotFound}
	case observed == strings.TrimSpace(expected):
		return Outcome{Status: Matched, Observed: observed}
	}
	return Outcome{Status: Mismatched, Observed: observed}
}

// CompareName compares product names after name normalization
func CompareName(expected, observed string) Outcome {
	o := normalize.Name(observed)
	switch {
	case o == "":
		return Outcome{Status: NotFound}
	case o == normalize.Name(expected):
		return Outcome{Status: Matched, Observed: o}
	}
	return Outcome{Status: Mismatched, Observed: o}
}

// ComparePrice compares a raw price label with an expected sheet price.
// An unparseable label is reported as a mismatch carrying the cleaned text.
func ComparePrice(expected, raw string, region model.Region) Outcome {
	observed, ok := normalize.Price(raw, region)
	if !ok {
		cleaned := normalize.Collapse(raw)
		if cleaned == "" {
			return Outcome{Status: NotFound}
		}
		return Outcome{Status: Mismatched, Observed: cleaned}
	}
	if observed == normalize.ExpectedPrice(expected) {
		return Outcome{Status: Matched, Observed: observed}
	}
	return Outcome{Status: Mismatched, Observed: observed}
}

// CompareSizes diffs an expected size run with the labels on the page.
// Both sides are canonicalized first; order is preserved.
func CompareSizes(expectedRun string, labels []string) (extra, missing []string) {
	expected := normalize.Sizes(expectedRun)
	observed := make([]string, 0, len(labels))
	for _, l := range labels {
		if s := normalize.Size(l); s != "" {
			observed = append(observed, s)
		}
	}

	for _, s := range observed {
		if !slices.Contains(expected, s) {
			extra = append(extra, s)
		}
	}
	for _, s := range expected {
		if !slices.Contains(observed, s) {
			missing = append(missing, s)
		}
	}
	return extra, missing
}
