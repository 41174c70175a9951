// Package format implements the duration parsing/formatting helpers of
// spec §4.12.
package format

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/drgolem/tmediago/internal/mediaerr"
)

var (
	hmsPattern    = regexp.MustCompile(`^(\d+):([0-5]\d):([0-5]\d)$`)
	msPattern     = regexp.MustCompile(`^(\d+):([0-5]\d)$`)
	secondsPattern = regexp.MustCompile(`^\d+$`)
)

// IsHMSDuration reports whether s matches exactly "H:MM:SS" with no
// surrounding whitespace.
func IsHMSDuration(s string) bool { return hmsPattern.MatchString(s) }

// IsMSDuration reports whether s matches exactly "M:SS" with no
// surrounding whitespace.
func IsMSDuration(s string) bool { return msPattern.MatchString(s) }

// IsSecondsDuration reports whether s is a plain non-negative integer.
func IsSecondsDuration(s string) bool { return secondsPattern.MatchString(s) }

// ParseDuration accepts exactly the three syntaxes named above and returns
// the duration in seconds.
func ParseDuration(s string) (float64, error) {
	switch {
	case IsHMSDuration(s):
		m := hmsPattern.FindStringSubmatch(s)
		h, _ := strconv.Atoi(m[1])
		mi, _ := strconv.Atoi(m[2])
		sec, _ := strconv.Atoi(m[3])
		return float64(h*3600 + mi*60 + sec), nil
	case IsMSDuration(s):
		m := msPattern.FindStringSubmatch(s)
		mi, _ := strconv.Atoi(m[1])
		sec, _ := strconv.Atoi(m[2])
		return float64(mi*60 + sec), nil
	case IsSecondsDuration(s):
		sec, _ := strconv.Atoi(s)
		return float64(sec), nil
	default:
		return 0, mediaerr.ErrInvalidArgument
	}
}

// FormatDuration renders seconds as "HH:MM:SS" when seconds >= 3600,
// otherwise "MM:SS".
func FormatDuration(seconds float64) string {
	total := int(seconds + 0.5)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60

	if total >= 3600 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
