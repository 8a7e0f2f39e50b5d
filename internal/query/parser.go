// Package query recognizes months, years, comparison requests, and category
// mentions inside free-form text. It is deliberately a fixed, ordered chain
// of pattern matchers with early exit on the first hit, not a general parser:
// when a required piece is missing the failure says exactly which piece, so
// the caller can ask for clarification instead of guessing.
package query

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Parse failures. Each one names the element that could not be extracted.
var (
	ErrYearNotFound  = errors.New("could not identify the year (expected a 4-digit year like 2025)")
	ErrMonthNotFound = errors.New("could not identify the month")
	ErrNotComparison = errors.New("not a comparison request")
)

type (
	// MonthYear is a recognized (month, year) pair.
	MonthYear struct {
		Month int
		Year  int
	}

	// ComparisonQuery is a recognized two-month comparison. Months and years
	// are assigned in encounter order, not by any earlier/later inference.
	ComparisonQuery struct {
		Month1 int
		Year1  int
		Month2 int
		Year2  int
	}
)

// yearPattern accepts 4-digit years 2000-2099 as standalone tokens.
var yearPattern = regexp.MustCompile(`\b(20\d{2})\b`)

// monthNumberPattern accepts a bare 1-12 or 01-12 token.
var monthNumberPattern = regexp.MustCompile(`\b(0?[1-9]|1[0-2])\b`)

// monthMatcher pairs one precompiled month token pattern with its month number.
type monthMatcher struct {
	pattern *regexp.Regexp
	month   int
}

func buildMonthMatchers(tokens []string) []monthMatcher {
	matchers := make([]monthMatcher, len(tokens))
	for i, token := range tokens {
		matchers[i] = monthMatcher{
			pattern: regexp.MustCompile(`\b` + token + `\b`),
			month:   i + 1,
		}
	}
	return matchers
}

var (
	monthNameMatchers = buildMonthMatchers([]string{
		"january", "february", "march", "april", "may", "june",
		"july", "august", "september", "october", "november", "december",
	})
	monthAbbrevMatchers = buildMonthMatchers([]string{
		"jan", "feb", "mar", "apr", "may", "jun",
		"jul", "aug", "sep", "oct", "nov", "dec",
	})

	comparisonKeywordPattern = regexp.MustCompile(`\b(compare|vs|versus|between|comparison|and)\b`)
)

// ParseMonthYear extracts a (month, year) pair from free text. A 4-digit year
// is required first; the month is then matched by full name, 3-letter
// abbreviation, and finally a bare numeric token, in that order, first
// pattern wins.
func ParseMonthYear(text string) (MonthYear, error) {
	lower := strings.ToLower(text)

	yearMatch := yearPattern.FindString(lower)
	if yearMatch == "" {
		return MonthYear{}, ErrYearNotFound
	}
	year, _ := strconv.Atoi(yearMatch)

	if hits := monthMentions(lower, monthNameMatchers); len(hits) > 0 {
		return MonthYear{Month: hits[0].month, Year: year}, nil
	}
	if hits := monthMentions(lower, monthAbbrevMatchers); len(hits) > 0 {
		return MonthYear{Month: hits[0].month, Year: year}, nil
	}

	// Strip the year token before looking for a numeric month so "2025" is
	// never misread as a month.
	withoutYear := strings.Replace(lower, yearMatch, " ", 1)
	if m := monthNumberPattern.FindString(withoutYear); m != "" {
		month, _ := strconv.Atoi(m)
		return MonthYear{Month: month, Year: year}, nil
	}

	return MonthYear{}, fmt.Errorf("%w: year %d was recognized", ErrMonthNotFound, year)
}

type monthHit struct {
	position int
	month    int
}

// monthMentions finds every whole-word occurrence of the given month tokens,
// ordered by position in the text.
func monthMentions(lower string, matchers []monthMatcher) []monthHit {
	var hits []monthHit
	for _, m := range matchers {
		for _, loc := range m.pattern.FindAllStringIndex(lower, -1) {
			hits = append(hits, monthHit{position: loc[0], month: m.month})
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].position < hits[j].position })
	return hits
}

// ParseComparison recognizes a two-month comparison request. It requires a
// comparison keyword, at least one year token, and at least two month
// mentions; the first two months and years found (in encounter order) fill
// the result, with year2 defaulting to year1 when only one year appears.
func ParseComparison(text string) (ComparisonQuery, error) {
	lower := strings.ToLower(text)

	if !comparisonKeywordPattern.MatchString(lower) {
		return ComparisonQuery{}, ErrNotComparison
	}

	years := yearPattern.FindAllString(lower, -1)
	if len(years) == 0 {
		return ComparisonQuery{}, ErrYearNotFound
	}

	hits := monthMentions(lower, monthNameMatchers)
	// Abbreviations fill in only where a full name did not already match:
	// "january" starts with "jan" at the same offset, so same-position
	// abbreviation hits are duplicates, not extra months.
	for _, abbrev := range monthMentions(lower, monthAbbrevMatchers) {
		if !coveredBy(hits, abbrev.position) {
			hits = append(hits, abbrev)
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].position < hits[j].position })

	if len(hits) < 2 {
		return ComparisonQuery{}, fmt.Errorf("%w: found %d month(s), need 2 for a comparison", ErrMonthNotFound, len(hits))
	}

	q := ComparisonQuery{Month1: hits[0].month, Month2: hits[1].month}
	q.Year1, _ = strconv.Atoi(years[0])
	q.Year2 = q.Year1
	if len(years) > 1 {
		q.Year2, _ = strconv.Atoi(years[1])
	}
	return q, nil
}

func coveredBy(hits []monthHit, position int) bool {
	for _, h := range hits {
		if h.position == position {
			return true
		}
	}
	return false
}

// categoryTokenSplit breaks a label on non-alphanumeric boundaries.
var categoryTokenSplit = regexp.MustCompile(`[^a-z0-9]+`)

// DetectCategory finds the first category from the snapshot's vocabulary
// mentioned in the message, either by case-insensitive substring containment
// of the whole label or by any label token longer than 2 characters appearing
// as a whole word. The FIRST match in iteration order wins, not the longest
// or most specific one; see DESIGN.md for why that behavior is preserved.
func DetectCategory(text string, categories []string) (string, bool) {
	lower := strings.ToLower(text)

	for _, category := range categories {
		categoryLower := strings.ToLower(strings.TrimSpace(category))
		if categoryLower == "" {
			continue
		}
		if strings.Contains(lower, categoryLower) {
			return category, true
		}
		for _, token := range categoryTokenSplit.Split(categoryLower, -1) {
			if len(token) <= 2 {
				continue
			}
			if wholeWord(lower, token) {
				return category, true
			}
		}
	}
	return "", false
}

// wholeWord reports whether token appears in text bounded by non-alphanumeric
// characters (or the string edges).
func wholeWord(text, token string) bool {
	for from := 0; ; {
		i := strings.Index(text[from:], token)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(token)
		if (start == 0 || !isWordByte(text[start-1])) && (end == len(text) || !isWordByte(text[end])) {
			return true
		}
		from = start + 1
	}
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}
