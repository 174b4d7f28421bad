package utils

import (
	"fmt"
	"regexp"
	"strconv"
)

var timeSpecRegex = regexp.MustCompile(`^(?:(\d+)h)?(?:(\d+)m)?(?:(\d+)s)?$`)

// ParseTimeParam scans text for an inline "<param>=<value>" token and converts
// the value to seconds. The value ends at whitespace, at the other recognized
// time token, or at the end of the text.
// Returns nil when the token is absent; a present but malformed value is an error.
func ParseTimeParam(text, param string) (*int, error) {
	other := "t"
	if param == "t" {
		other = "n"
	}

	tokenRegex := regexp.MustCompile(regexp.QuoteMeta(param) + `=(.*?)(?:\s|` + other + `=|$)`)
	match := tokenRegex.FindStringSubmatch(text)
	if match == nil {
		return nil, nil
	}

	seconds, err := timeToSeconds(match[1])
	if err != nil {
		return nil, err
	}
	return &seconds, nil
}

// timeToSeconds converts a "1h2m3s"-style spec to seconds. All components are
// optional; anything outside the h/m/s grammar is rejected.
func timeToSeconds(spec string) (int, error) {
	match := timeSpecRegex.FindStringSubmatch(spec)
	if match == nil {
		return 0, fmt.Errorf("invalid time format: %q", spec)
	}

	total := 0
	multipliers := []int{3600, 60, 1}
	for i, part := range match[1:] {
		if part == "" {
			continue
		}
		value, err := strconv.Atoi(part)
		if err != nil {
			return 0, fmt.Errorf("invalid time format: %q", spec)
		}
		total += value * multipliers[i]
	}
	return total, nil
}
