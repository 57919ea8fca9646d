// Package quantity extracts a quantity from a free-text utterance, either
// as literal digits or as spelled-out number words.
package quantity

import (
	"regexp"
	"strconv"
	"strings"
)

// digitRun matches the first standalone run of decimal digits.
var digitRun = regexp.MustCompile(`\b\d+\b`)

// maxWindow is the longest number-word phrase considered ("one hundred five").
const maxWindow = 3

// units, teens and tens cover spelled-out cardinals up to ninety-nine;
// "hundred" extends the reach to 999.
var units = map[string]int{
	"zero": 0, "one": 1, "two": 2, "three": 3, "four": 4,
	"five": 5, "six": 6, "seven": 7, "eight": 8, "nine": 9,
}

var teens = map[string]int{
	"ten": 10, "eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14,
	"fifteen": 15, "sixteen": 16, "seventeen": 17, "eighteen": 18, "nineteen": 19,
}

var tens = map[string]int{
	"twenty": 20, "thirty": 30, "forty": 40, "fifty": 50,
	"sixty": 60, "seventy": 70, "eighty": 80, "ninety": 90,
}

// Extract parses a quantity out of an utterance. Digits win over words;
// longer word phrases win over shorter ones so "twenty one" is not read as
// "one". The boolean is false when no number is present. Zero is a valid
// extraction; callers enforce positivity.
func Extract(s string) (int, bool) {
	if m := digitRun.FindString(s); m != "" {
		n, err := strconv.Atoi(m)
		if err == nil {
			return n, true
		}
	}

	tokens := tokenize(s)
	for size := maxWindow; size >= 1; size-- {
		for i := 0; i+size <= len(tokens); i++ {
			if n, ok := parseCardinal(tokens[i : i+size]); ok {
				return n, true
			}
		}
	}

	return 0, false
}

// tokenize lowercases, splits on whitespace and hyphens, and strips
// punctuation, so "Twenty-one, please!" yields [twenty one please].
func tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == '-'
	})

	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".,!?;:'\"()")
		if f != "" {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// parseCardinal parses a full token window as one spelled-out number.
// Every token must participate; "three dogs" is not a cardinal.
func parseCardinal(tokens []string) (int, bool) {
	switch len(tokens) {
	case 1:
		return parseSimple(tokens[0])

	case 2:
		// "twenty one"
		if t, ok := tens[tokens[0]]; ok {
			if u, ok := units[tokens[1]]; ok && u > 0 {
				return t + u, true
			}
			return 0, false
		}
		// "a hundred" / "one hundred"
		if tokens[1] == "hundred" {
			if h, ok := hundredsCount(tokens[0]); ok {
				return h * 100, true
			}
		}
		return 0, false

	case 3:
		// "one hundred five", "two hundred twenty"
		if tokens[1] != "hundred" {
			return 0, false
		}
		h, ok := hundredsCount(tokens[0])
		if !ok {
			return 0, false
		}
		rest, ok := parseSimple(tokens[2])
		if !ok {
			return 0, false
		}
		return h*100 + rest, true

	default:
		return 0, false
	}
}

// parseSimple handles a single number word up to nineteen or a tens word.
func parseSimple(token string) (int, bool) {
	if n, ok := units[token]; ok {
		return n, true
	}
	if n, ok := teens[token]; ok {
		return n, true
	}
	if n, ok := tens[token]; ok {
		return n, true
	}
	return 0, false
}

// hundredsCount parses the multiplier before "hundred"; "a hundred" means one.
func hundredsCount(token string) (int, bool) {
	if token == "a" {
		return 1, true
	}
	if n, ok := units[token]; ok && n > 0 {
		return n, true
	}
	return 0, false
}
