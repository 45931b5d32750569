package editor

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"evalforge/internal/model"
)

const (
	maxVariableIDLen   = 50
	fallbackVariableID = "question"
)

// baseLetters folds letters that have no canonical decomposition onto the ASCII letter
// they are read as, so NFD plus mark removal can treat them like accented letters.
var baseLetters = map[rune]rune{
	'∂': 'd',
	'đ': 'd', 'Đ': 'D',
	'ø': 'o', 'Ø': 'O',
	'ł': 'l', 'Ł': 'L',
	'ı': 'i',
	'ħ': 'h', 'Ħ': 'H',
}

func foldBaseLetter(r rune) rune {
	if b, ok := baseLetters[r]; ok {
		return b
	}
	return r
}

var (
	variableIDStrip      = regexp.MustCompile(`[^a-z0-9\s]`)
	variableIDWhitespace = regexp.MustCompile(`\s+`)
)

// NormalizeVariableID turns a label into a formula token: accents and undecomposable
// letters such as ∂ folded, lowercase,
// everything outside [a-z0-9] and whitespace dropped, whitespace runs joined with "_",
// and the result cut to 50 characters.
func NormalizeVariableID(label string) string {
	folded, _, err := transform.String(transform.Chain(runes.Map(foldBaseLetter), norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), label)
	if err != nil {
		folded = label
	}

	s := strings.ToLower(folded)
	s = variableIDStrip.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	s = variableIDWhitespace.ReplaceAllString(s, "_")
	if len(s) > maxVariableIDLen {
		s = s[:maxVariableIDLen]
	}
	if s == "" {
		return fallbackVariableID
	}
	return s
}

// UniqueVariableID appends _1, _2, ... to base until no item in existing uses it.
func UniqueVariableID(base string, existing []model.Item) string {
	taken := make(map[string]bool, len(existing))
	for _, it := range existing {
		taken[it.VariableID] = true
	}
	if !taken[base] {
		return base
	}
	for n := 1; ; n++ {
		candidate := base + "_" + strconv.Itoa(n)
		if !taken[candidate] {
			return candidate
		}
	}
}
