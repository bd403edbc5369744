package domain

import (
	"fmt"
	"strings"
)

// Term is an academic term. Combined with an academic year it scopes all
// conflict and aggregation queries.
type Term string

const (
	TermFall   Term = "FALL"
	TermSpring Term = "SPRING"
)

// ParseTerm parses "FALL" or "SPRING" (case-insensitive).
func ParseTerm(s string) (Term, error) {
	switch Term(strings.ToUpper(strings.TrimSpace(s))) {
	case TermFall:
		return TermFall, nil
	case TermSpring:
		return TermSpring, nil
	}
	return "", fmt.Errorf("invalid term %q", s)
}

// CourseListing identifies a course in the catalog, e.g. prefix "CS" number
// "50". Numbers are strings because the catalog has suffixed numbers like
// "109a".
type CourseListing struct {
	Prefix string `json:"prefix"`
	Number string `json:"number"`
}

// Less orders listings by prefix, then by number. Numbers compare by their
// leading integer first so "9" sorts before "10", with any suffix breaking
// ties lexicographically.
func (c CourseListing) Less(other CourseListing) bool {
	if c.Prefix != other.Prefix {
		return c.Prefix < other.Prefix
	}
	an, as := splitCourseNumber(c.Number)
	bn, bs := splitCourseNumber(other.Number)
	if an != bn {
		return an < bn
	}
	return as < bs
}

// splitCourseNumber splits a course number into its leading integer and the
// remaining suffix ("109a" -> 109, "a").
func splitCourseNumber(s string) (int, string) {
	n := 0
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		n = n*10 + int(s[i]-'0')
		i++
	}
	return n, s[i:]
}

// CourseMeeting is one meeting row of an offered course instance, as loaded
// for schedule aggregation.
type CourseMeeting struct {
	Interval TimeInterval  `json:"interval"`
	Course   CourseListing `json:"course"`
}
