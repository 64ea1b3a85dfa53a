package runtime

import (
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// StringUnits returns the UTF-16 code units of s, which is how string length and
// indices are measured.
func StringUnits(s string) []uint16 {
	if isASCII(s) {
		units := make([]uint16, len(s))
		for i := 0; i < len(s); i++ {
			units[i] = uint16(s[i])
		}
		return units
	}
	return utf16.Encode([]rune(s))
}

// UnitsString converts UTF-16 code units back to a Go string. Unpaired surrogates
// become U+FFFD.
func UnitsString(units []uint16) string {
	return string(utf16.Decode(units))
}

// CompareStrings orders a and b by their UTF-16 code units, returning -1, 0 or +1.
func CompareStrings(a, b string) int {
	if isASCII(a) && isASCII(b) {
		return strings.Compare(a, b)
	}
	ua, ub := StringUnits(a), StringUnits(b)
	for i := 0; i < len(ua) && i < len(ub); i++ {
		if ua[i] != ub[i] {
			if ua[i] < ub[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(ua) < len(ub):
		return -1
	case len(ua) > len(ub):
		return 1
	}
	return 0
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
