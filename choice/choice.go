// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package choice checks pluralised translation strings such as
"{0} none|{1} one|[2,*] many".

Each "|" separated segment starts with a condition in braces or brackets
(the two are equivalent): "*", a single integer, or "from,to" where either
bound may be "*". The union of all conditions must cover every value the
count argument can take.
*/
package choice

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"codeberg.org/pixivfe/i18ncheck/diagnostic"
)

var (
	segmentPattern = regexp.MustCompile(`(?s)^[{\[]([^\[\]{}]*)[}\]](.*)`)
	bracketStart   = regexp.MustCompile(`^[\[{]`)
	numericPattern = regexp.MustCompile(`^[+-]?(?:\d+(?:\.\d*)?|\.\d+)(?:[eE][+-]?\d+)?$`)
)

// Problem is one finding about a choice string.
type Problem struct {
	Identifier diagnostic.Identifier
	Message    string
}

// Segment is one parsed "{cond}text" unit.
type Segment struct {
	Condition string
	Text      string

	// Wildcard is set for "{*}" and "{*,*}", which select nothing in particular.
	Wildcard bool
	Interval Domain
}

// Parse splits value into segments, collecting problems for the ones that
// cannot be parsed. Parsing always continues with the next segment.
//
// A value with exactly two segments is often a plain "singular|plural" pair,
// so an unbracketed segment in such a value is skipped without a problem.
func Parse(value string) ([]Segment, []Problem) {
	parts := strings.Split(value, "|")

	var (
		segments []Segment
		problems []Problem
	)

	for _, part := range parts {
		m := segmentPattern.FindStringSubmatch(part)
		if m == nil {
			if len(parts) == 2 && !bracketStart.MatchString(strings.TrimLeft(part, " \t\n\r\v\x00")) {
				continue
			}

			problems = append(problems, Problem{
				Identifier: diagnostic.InvalidChoiceMalformed,
				Message:    "Failed to parse translation choice: " + diagnostic.Quote(part),
			})

			continue
		}

		seg, problem, ok := parseCondition(m[1])
		if !ok {
			problems = append(problems, problem)

			continue
		}

		seg.Text = m[2]
		segments = append(segments, seg)
	}

	return segments, problems
}

func parseCondition(cond string) (Segment, Problem, bool) {
	from, to, found := strings.Cut(cond, ",")
	if !found {
		to = from
	}

	lo, loWild, ok := parseBound(from)
	if !ok {
		return Segment{}, nonNumeric(from), false
	}

	hi, hiWild, ok := parseBound(to)
	if !ok {
		return Segment{}, nonNumeric(to), false
	}

	seg := Segment{Condition: cond}

	switch {
	case loWild && hiWild:
		seg.Wildcard = true
	case loWild:
		seg.Interval = AtMost(hi)
	case hiWild:
		seg.Interval = AtLeast(lo)
	case from == to:
		seg.Interval = Constant(lo)
	default:
		seg.Interval = Between(lo, hi)
	}

	return seg, Problem{}, true
}

func nonNumeric(bound string) Problem {
	return Problem{
		Identifier: diagnostic.InvalidChoiceNonNumeric,
		Message:    "Translation choice has non-numeric value: " + diagnostic.Quote(bound),
	}
}

// parseBound accepts "*" or a decimal number, optionally in exponent form and
// surrounded by whitespace. Fractions are truncated toward zero.
func parseBound(s string) (value int64, wildcard, ok bool) {
	if s == "*" {
		return 0, true, true
	}

	trimmed := strings.Trim(s, " \t\n\r\v\f")
	if !numericPattern.MatchString(trimmed) {
		return 0, false, false
	}

	if n, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return n, false, true
	}

	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false, false
	}

	switch {
	case f >= math.MaxInt64:
		return math.MaxInt64, false, true
	case f <= math.MinInt64:
		return math.MinInt64, false, true
	}

	return int64(f), false, true
}

// Coverage unions the intervals of segments. ok is false when no segment
// constrains anything.
func Coverage(segments []Segment) (Set, bool) {
	var set Set

	for _, seg := range segments {
		if seg.Wildcard {
			continue
		}

		set.Add(seg.Interval)
	}

	return set, !set.Empty()
}

// GapFor reports a problem when the segments of value leave some value of
// domain uncovered. Values without any constraining segment are not checked.
func GapFor(value string, domain Domain) (Problem, bool) {
	segments, _ := Parse(value)

	return gap(segments, domain)
}

func gap(segments []Segment, domain Domain) (Problem, bool) {
	set, ok := Coverage(segments)
	if !ok || set.Covers(domain) {
		return Problem{}, false
	}

	return Problem{
		Identifier: diagnostic.InvalidChoiceMissingCase,
		Message:    fmt.Sprintf("Translation choice does not cover all possible cases for number of type: %s", domain),
	}, true
}

// Analyze returns every problem of value for a count argument ranging over
// domain: segment problems in order, then the coverage gap if any. A nil
// domain means the call is not pluralised and nothing is checked.
func Analyze(value string, domain *Domain) []Problem {
	if domain == nil {
		return nil
	}

	segments, problems := Parse(value)

	if p, found := gap(segments, *domain); found {
		problems = append(problems, p)
	}

	return problems
}
