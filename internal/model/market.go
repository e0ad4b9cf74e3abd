package model

import (
	"fmt"
	"strings"
)

// Section is the storefront section whose sheet is being validated
type Section string

const (
	SectionMarkdowns Section = "MARKDOWNS"
	SectionNewness   Section = "NEWNESS"
)

// Region is the crawl locale a check run targets
type Region string

const (
	RegionUSA   Region = "USA"
	RegionCANEN Region = "CAN-EN"
	RegionCANFR Region = "CAN-FR"
)

// HeaderGroup is the sheet family shared by one or more regions.
// CAN-EN and CAN-FR read the same sheet and therefore share a header map.
type HeaderGroup string

const (
	GroupUSA HeaderGroup = "USA"
	GroupCAN HeaderGroup = "CAN"
)

// Regions lists every known region in crawl order
var Regions = []Region{RegionUSA, RegionCANEN, RegionCANFR}

// ParseSection validates a section selector
func ParseSection(s string) (Section, error) {
	switch Section(strings.ToUpper(strings.TrimSpace(s))) {
	case SectionMarkdowns:
		return SectionMarkdowns, nil
	case SectionNewness:
		return SectionNewness, nil
	case "":
		return "", fmt.Errorf("%w: section selector is not set", ErrConfiguration)
	}
	return "", fmt.Errorf("%w: unknown section %q (want MARKDOWNS or NEWNESS)", ErrConfiguration, s)
}

// ParseRegion validates a region selector
func ParseRegion(s string) (Region, error) {
	r := Region(strings.ToUpper(strings.TrimSpace(s)))
	if r == "" {
		return "", fmt.Errorf("%w: region selector is not set", ErrConfiguration)
	}
	for _, known := range Regions {
		if r == known {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: unknown region %q (want USA, CAN-EN or CAN-FR)", ErrConfiguration, s)
}

// HeaderGroup returns the sheet family for the region
func (r Region) HeaderGroup() HeaderGroup {
	if r == RegionUSA {
		return GroupUSA
	}
	return GroupCAN
}

// FrenchPricing reports whether prices render as "49,50 $"
func (r Region) FrenchPricing() bool {
	return r == RegionCANFR
}

// LocaleSuffix reports whether findings carry a " for <region>" suffix.
// Only the secondary locale of a shared sheet is suffixed, so the primary
// run's wording wins when both runs report the same thing.
func (r Region) LocaleSuffix() bool {
	return r == RegionCANFR
}

// ChecksSizes reports whether the size run is validated for the region
func (r Region) ChecksSizes() bool {
	return r != RegionCANFR
}

// Suffix decorates a finding message for the region
func (r Region) Suffix(message string) string {
	if message == "" || !r.LocaleSuffix() {
		return message
	}
	return message + " for " + string(r)
}

// Lower is used to build file names
func (r Region) Lower() string { return strings.ToLower(string(r)) }

// Lower is used to build file names
func (g HeaderGroup) Lower() string { return strings.ToLower(string(g)) }
