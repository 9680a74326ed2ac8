package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Timestamp is a validated HOUR:MINUTE:SECOND value. Hour and minute are
// integers, second may carry a fractional part. The raw text is kept so
// output file names can be derived from exactly what the user typed.
type Timestamp struct {
	raw     string
	hours   int
	minutes int
	seconds float64
}

// ParseTimestamp validates s and returns the parsed Timestamp.
//
// The checks run in the same order the error messages are worded:
//  1. exactly three colon-separated fields
//  2. HOUR/MINUTE are integers, SECOND is an integer or float
//  3. MINUTE and SECOND are at most 60
func ParseTimestamp(s string) (Timestamp, error) {
	fields := strings.Split(s, ":")
	if len(fields) != 3 {
		return Timestamp{}, fmt.Errorf(
			"%q is not an acceptable time stamp format. "+
				"Time stamp requires the following format: HOUR:MINUTE:SECOND", s)
	}

	hours, errH := strconv.Atoi(strings.TrimSpace(fields[0]))
	minutes, errM := strconv.Atoi(strings.TrimSpace(fields[1]))
	seconds, errS := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
	if errH != nil || errM != nil || errS != nil {
		return Timestamp{}, fmt.Errorf(
			"%q are not the correct numeric type. "+
				"HOUR/MINUTE must be integer, while SECOND can be integer or float", s)
	}

	// Written as !(seconds <= 60) so NaN and +Inf are rejected too.
	if minutes > 60 || !(seconds <= 60) {
		return Timestamp{}, fmt.Errorf(
			"%q are not within the correct range. "+
				"MINUTE/SECOND must be less than or equal to 60 (i.e. m/s <= 60)", s)
	}

	return Timestamp{raw: s, hours: hours, minutes: minutes, seconds: seconds}, nil
}

// String returns the time stamp as it was given.
func (t Timestamp) String() string {
	return t.raw
}

// Seconds converts the time stamp to a number of seconds.
func (t Timestamp) Seconds() float64 {
	return float64(t.hours)*3600 + float64(t.minutes)*60 + t.seconds
}

// Compact returns the time stamp with the colons removed. It is the form
// embedded in clip file names ("00:00:05" → "000005").
func (t Timestamp) Compact() string {
	return strings.ReplaceAll(t.raw, ":", "")
}

// IsZero reports whether t is the zero value (never parsed).
func (t Timestamp) IsZero() bool {
	return t.raw == ""
}
