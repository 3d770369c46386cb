package address

import (
	"errors"
	"regexp"
	"strings"
)

var (
	ErrLine1Required      = errors.New("Address Line 1 is required")
	ErrLine1InvalidChars  = errors.New("Address contains invalid characters")
	ErrLine1Punctuation   = errors.New("Invalid punctuation")
	ErrLine1TrailingPunct = errors.New("Cannot end with punctuation")

	ErrLine2InvalidChars  = errors.New("Address Line 2 contains invalid characters")
	ErrLine2Punctuation   = errors.New("Address Line 2 has invalid punctuation")
	ErrLine2TrailingPunct = errors.New("Address Line 2 cannot end with punctuation")
)

var (
	lineAllowed   = regexp.MustCompile(`^[0-9A-Za-z\s#\-.,/]+$`)
	doublePunct   = regexp.MustCompile(`[#\-.,/]{2,}`)
	trailingPunct = regexp.MustCompile(`[#\-.,/]$`)
	innerSpaces   = regexp.MustCompile(`\s+`)

	// Leading unit designators are ignored when deciding whether line 2 is a
	// reworded copy of line 1.
	unitPrefix = regexp.MustCompile(`^(apt|apartment|unit|suite|ste|no|number)\s*[0-9]+\s*`)
)

// ValidateLine1 checks the first street-address line against the character
// allow-list and punctuation rules, returning the whitespace-collapsed value.
func ValidateLine1(raw string) (string, error) {
	s := innerSpaces.ReplaceAllString(strings.TrimSpace(raw), " ")
	if s == "" {
		return "", ErrLine1Required
	}
	if !lineAllowed.MatchString(s) {
		return "", ErrLine1InvalidChars
	}
	if doublePunct.MatchString(s) {
		return "", ErrLine1Punctuation
	}
	if trailingPunct.MatchString(s) {
		return "", ErrLine1TrailingPunct
	}

	return s, nil
}

// ValidateLine2 checks the optional second line. Empty input is valid and
// yields an empty string.
func ValidateLine2(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", nil
	}
	s = innerSpaces.ReplaceAllString(s, " ")
	if !lineAllowed.MatchString(s) {
		return "", ErrLine2InvalidChars
	}
	if doublePunct.MatchString(s) {
		return "", ErrLine2Punctuation
	}
	if trailingPunct.MatchString(s) {
		return "", ErrLine2TrailingPunct
	}

	return s, nil
}

// LinesEqual reports whether line2 is effectively a restatement of line1.
// True when both lines normalize identically, or when, after stripping a
// leading unit-designator token ("apt 4", "unit 12", "#3" and the like) from
// each side, one normalized line contains the other and the shorter side is
// longer than 5 characters. Blocks submissions that reword line 1 into line 2
// to slip past the reuse window.
func LinesEqual(line1, line2 string) bool {
	n1 := Normalize(line1)
	n2 := Normalize(line2)
	if n1 == n2 {
		return n1 != ""
	}

	s1 := stripUnitPrefix(line1)
	s2 := stripUnitPrefix(line2)

	shorter, longer := s1, s2
	if len(s2) < len(s1) {
		shorter, longer = s2, s1
	}
	if len(shorter) <= 5 {
		return false
	}

	return strings.Contains(longer, shorter)
}

// stripUnitPrefix removes a leading unit designator followed by digits from
// the spaced normal form, then collapses to the dense fingerprint. A leading
// "#" disappears during normalization, so a bare leading number is treated as
// a unit designator too.
func stripUnitPrefix(line string) string {
	spaced := normalizeSpaced(line)
	if m := unitPrefix.FindString(spaced); m != "" {
		spaced = spaced[len(m):]
	} else if strings.HasPrefix(strings.TrimSpace(line), "#") {
		if i := strings.IndexByte(spaced, ' '); i >= 0 && isDigits(spaced[:i]) {
			spaced = spaced[i+1:]
		}
	}

	return strings.ReplaceAll(spaced, " ", "")
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}

	return true
}
