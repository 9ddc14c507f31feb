// Package parser extracts values from the free-form text a language model
// returns. Both engines go through these helpers so that they accept exactly
// the same shapes.
package parser

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

var integerPattern = regexp.MustCompile(`-?\d+`)

// ExtractSingleInteger returns the first signed integer literal in text.
// Later integers are ignored. A literal that does not fit in an int64 is
// treated as absent.
func ExtractSingleInteger(text string) (int64, bool) {
	match := integerPattern.FindString(text)
	if match == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(match, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ExtractObject finds the JSON object embedded in text. Models like to wrap
// JSON in prose or markdown fences, so everything outside the outermost
// braces is dropped.
func ExtractObject(text string) (gjson.Result, bool) {
	text = strings.TrimSpace(text)
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end <= start {
		return gjson.Result{}, false
	}

	raw := text[start : end+1]
	if !gjson.Valid(raw) {
		return gjson.Result{}, false
	}
	doc := gjson.Parse(raw)
	if !doc.IsObject() {
		return gjson.Result{}, false
	}
	return doc, true
}

// ExtractNumber reads field from doc, or the first alias present when field
// is missing. Numbers are returned as is and numeric strings are parsed.
// Anything else, including a present but unusable field, yields false.
func ExtractNumber(doc gjson.Result, field string, aliases ...string) (float64, bool) {
	value := doc.Get(field)
	for _, alias := range aliases {
		if value.Exists() {
			break
		}
		value = doc.Get(alias)
	}
	if !value.Exists() {
		return 0, false
	}

	switch value.Type {
	case gjson.Number:
		return value.Num, true
	case gjson.String:
		n, err := strconv.ParseFloat(strings.TrimSpace(value.Str), 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
