package domain

import (
	"fmt"
	"strings"
)

// Bucket classifies a video duration for catalog filtering.
type Bucket string

const (
	BucketAny    Bucket = "any"
	BucketShort  Bucket = "short"
	BucketMedium Bucket = "medium"
	BucketLong   Bucket = "long"
)

const (
	shortUpperBound  = 4 * 60  // seconds, exclusive
	mediumUpperBound = 20 * 60 // seconds, exclusive
	shortFormLimit   = 60      // seconds, exclusive
	shortFormMarker  = "#shorts"
)

// ParseBucket normalizes a caller-supplied bucket string. Unrecognized
// values fall back to BucketAny so malformed input never reaches the
// ranking path as an error.
func ParseBucket(s string) Bucket {
	switch Bucket(strings.ToLower(strings.TrimSpace(s))) {
	case BucketShort:
		return BucketShort
	case BucketMedium:
		return BucketMedium
	case BucketLong:
		return BucketLong
	default:
		return BucketAny
	}
}

// Classify maps a duration in seconds to its bucket. Every duration belongs
// to exactly one of short, medium or long; the boundary values 240 and 1200
// belong to the upper bucket.
func Classify(seconds int) Bucket {
	switch {
	case seconds < shortUpperBound:
		return BucketShort
	case seconds < mediumUpperBound:
		return BucketMedium
	default:
		return BucketLong
	}
}

// Contains reports whether a duration falls inside the bucket. BucketAny
// matches everything.
func (b Bucket) Contains(seconds int) bool {
	switch b {
	case BucketShort:
		return seconds < shortUpperBound
	case BucketMedium:
		return seconds >= shortUpperBound && seconds < mediumUpperBound
	case BucketLong:
		return seconds >= mediumUpperBound
	default:
		return true
	}
}

// Range returns the half-open [min, max) second range for the bucket.
// max < 0 means unbounded. BucketAny returns (0, -1).
func (b Bucket) Range() (min, max int) {
	switch b {
	case BucketShort:
		return 0, shortUpperBound
	case BucketMedium:
		return shortUpperBound, mediumUpperBound
	case BucketLong:
		return mediumUpperBound, -1
	default:
		return 0, -1
	}
}

// IsShortForm reports whether a candidate is short-form content rejected at
// ingestion time: under 60 seconds, or explicitly tagged "#shorts" in its
// title or description. Independent of the bucket filter.
func IsShortForm(durationSeconds int, title, description string) bool {
	if durationSeconds < shortFormLimit {
		return true
	}
	lower := strings.ToLower(title) + " " + strings.ToLower(description)
	return strings.Contains(lower, shortFormMarker)
}

// ParseISODuration converts an ISO-8601 duration (the upstream
// contentDetails encoding, e.g. "PT1H2M3S" or "P1DT12H") into whole
// seconds. Fractional components are not supported; unparseable input
// returns an error so callers can fail closed.
func ParseISODuration(s string) (int, error) {
	if len(s) < 2 || s[0] != 'P' {
		return 0, fmt.Errorf("invalid ISO8601 duration %q", s)
	}

	total := 0
	num := 0
	haveNum := false
	haveComponent := false
	inTime := false

	for _, r := range s[1:] {
		switch {
		case r >= '0' && r <= '9':
			num = num*10 + int(r-'0')
			haveNum = true
		case r == 'T':
			if inTime || haveNum {
				return 0, fmt.Errorf("invalid ISO8601 duration %q", s)
			}
			inTime = true
		default:
			if !haveNum {
				return 0, fmt.Errorf("invalid ISO8601 duration %q", s)
			}
			mult, ok := isoUnitSeconds(r, inTime)
			if !ok {
				return 0, fmt.Errorf("invalid ISO8601 duration %q: unit %q", s, r)
			}
			total += num * mult
			num = 0
			haveNum = false
			haveComponent = true
		}
	}
	if haveNum || !haveComponent {
		return 0, fmt.Errorf("invalid ISO8601 duration %q", s)
	}
	return total, nil
}

func isoUnitSeconds(unit rune, inTime bool) (int, bool) {
	if inTime {
		switch unit {
		case 'H':
			return 3600, true
		case 'M':
			return 60, true
		case 'S':
			return 1, true
		}
		return 0, false
	}
	switch unit {
	case 'W':
		return 7 * 86400, true
	case 'D':
		return 86400, true
	}
	return 0, false
}
