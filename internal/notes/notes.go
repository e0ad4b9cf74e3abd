// Package notes implements the duplicate-suppressing append rules shared by
// the findings store (space-joined fragments) and the spreadsheet writer
// (newline-separated lines).
package notes

import (
	"regexp"
	"strings"

	"pdp-recon/internal/model"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	localeSuffix  = buildLocaleSuffix()
)

func buildLocaleSuffix() *regexp.Regexp {
	alts := make([]string, 0, len(model.Regions))
	for _, r := range model.Regions {
		alts = append(alts, regexp.QuoteMeta(string(r)))
	}
	return regexp.MustCompile(`(?i)\s*for\s+(` + strings.Join(alts, "|") + `)$`)
}

// Clean makes a message newline-free and collapses whitespace runs
func Clean(message string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(message, " "))
}

// HasLocaleSuffix reports whether message ends with " for <region>"
func HasLocaleSuffix(message string) bool {
	return localeSuffix.MatchString(strings.TrimSpace(message))
}

// StripLocale removes a trailing " for <region>"
func StripLocale(message string) string {
	return strings.TrimSpace(localeSuffix.ReplaceAllString(strings.TrimSpace(message), ""))
}

// Suppressed reports whether incoming adds nothing to existing.
//
// A locale-suffixed message is redundant when any existing entry matches
// it once both have their suffix stripped. The check only looks backward:
// an unsuffixed message arriving after its suffixed form is kept.
func Suppressed(existing []string, incoming string) bool {
	if incoming == "" {
		return true
	}
	if HasLocaleSuffix(incoming) {
		base := StripLocale(incoming)
		for _, e := range existing {
			if StripLocale(e) == base {
				return true
			}
		}
	}
	for _, e := range existing {
		if e == incoming {
			return true
		}
	}
	return false
}

// Merge appends incoming to fragments unless Suppressed says otherwise.
// The bool result reports whether anything was appended.
func Merge(fragments []string, incoming string) ([]string, bool) {
	incoming = Clean(incoming)
	if Suppressed(fragments, incoming) {
		return fragments, false
	}
	return append(fragments, incoming), true
}

// Lines splits a spreadsheet cell into its trimmed, non-empty lines
func Lines(cell string) []string {
	raw := strings.Split(strings.TrimSpace(cell), "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// AppendLine applies the suppression rules to a newline-separated cell.
// It returns the new cell value and whether it changed.
func AppendLine(cell, incoming string) (string, bool) {
	incoming = strings.TrimSpace(incoming)
	if incoming == "" {
		return cell, false
	}
	existing := Lines(cell)
	if Suppressed(existing, incoming) {
		return cell, false
	}
	if len(existing) == 0 {
		return incoming, true
	}
	return strings.Join(existing, "\n") + "\n" + incoming, true
}
