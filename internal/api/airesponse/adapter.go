// Package airesponse converts raw language-model output into typed
// records. It is pure: no I/O, no clock reads, deterministic on its
// inputs, so it can be tested with canned model transcripts.
package airesponse

import (
	"encoding/json"
	"strconv"
	"strings"
)

// FieldType enumerates the primitive shapes a schema field may take.
type FieldType int

const (
	Number FieldType = iota
	Integer
	String
	StringList
)

// Field describes one expected key: its shape and the value used when
// the key is missing or cannot be coerced.
type Field struct {
	Type    FieldType
	Default any
}

// Schema is the set of keys a caller expects the model to emit.
type Schema map[string]Field

// Record holds the projected values, one entry per schema key.
type Record map[string]any

// ExtractJSON strips markdown fences and trims the text to the
// substring between the first '{' and the last '}'. Input with no
// parseable object yields the literal "{}".
func ExtractJSON(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return "{}"
	}

	cleaned := raw
	for _, marker := range []string{"```json", "```JSON", "```"} {
		cleaned = strings.ReplaceAll(cleaned, marker, "")
	}
	cleaned = strings.TrimSpace(cleaned)

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start < 0 || end <= start {
		return "{}"
	}

	candidate := cleaned[start : end+1]
	if !json.Valid([]byte(candidate)) {
		return "{}"
	}
	return candidate
}

// ParseObject extracts and unmarshals the embedded JSON object.
// Non-parseable input yields an empty map.
func ParseObject(raw string) map[string]any {
	var obj map[string]any
	if err := json.Unmarshal([]byte(ExtractJSON(raw)), &obj); err != nil {
		return map[string]any{}
	}
	if obj == nil {
		obj = map[string]any{}
	}
	return obj
}

// Project extracts the JSON object from raw and coerces each schema
// key into its declared shape. The second return reports whether the
// extraction produced a non-empty object; callers use it to decide
// whether a text-analysis fallback is warranted.
func (s Schema) Project(raw string) (Record, bool) {
	obj := ParseObject(raw)
	rec := make(Record, len(s))
	for key, field := range s {
		switch field.Type {
		case Number:
			rec[key] = CoerceFloat(obj[key], field.Default.(float64))
		case Integer:
			rec[key] = CoerceInt(obj[key], field.Default.(int))
		case String:
			rec[key] = CoerceString(obj[key], field.Default.(string))
		case StringList:
			rec[key] = CoerceStringList(obj[key])
		}
	}
	return rec, len(obj) > 0
}

func (r Record) Float(key string) float64 {
	v, _ := r[key].(float64)
	return v
}

func (r Record) Int(key string) int {
	v, _ := r[key].(int)
	return v
}

func (r Record) String(key string) string {
	v, _ := r[key].(string)
	return v
}

func (r Record) StringList(key string) []string {
	v, _ := r[key].([]string)
	return v
}

// CoerceFloat accepts JSON numbers and numeric strings; anything else
// takes the default.
func CoerceFloat(v any, def float64) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case string:
		if f, err := strconv.ParseFloat(n, 64); err == nil {
			return f
		}
	}
	return def
}

// CoerceInt truncates JSON numbers and parses integral strings.
func CoerceInt(v any, def int) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case string:
		if i, err := strconv.Atoi(n); err == nil {
			return i
		}
	}
	return def
}

// CoerceString stringifies any present value.
func CoerceString(v any, def string) string {
	if v == nil {
		return def
	}
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return def
		}
		return string(b)
	}
}

// CoerceStringList stringifies every element of a JSON array. Non-list
// values yield an empty slice.
func CoerceStringList(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(list))
	for _, el := range list {
		out = append(out, CoerceString(el, ""))
	}
	return out
}

// ObjectList returns the object-typed elements of a JSON array,
// skipping anything that is not an object.
func ObjectList(v any) []map[string]any {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(list))
	for _, el := range list {
		if obj, ok := el.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out
}

// ModeFromText scans free text for transport keywords. Checks run in a
// fixed order so a later keyword overrides an earlier one; absent any
// hit the mode stays "car".
func ModeFromText(text string) string {
	lower := strings.ToLower(text)
	mode := "car"
	if strings.Contains(lower, "train") {
		mode = "train"
	}
	if strings.Contains(lower, "bus") {
		mode = "bus"
	}
	if strings.Contains(lower, "flight") || strings.Contains(lower, "plane") {
		mode = "flight"
	}
	if strings.Contains(lower, "car") || strings.Contains(lower, "drive") {
		mode = "car"
	}
	return mode
}

// DistanceFromText pulls the first integer preceding a "km" marker out
// of free text, falling back to def when none is present.
func DistanceFromText(text string, def float64) float64 {
	lower := strings.ToLower(text)
	idx := strings.Index(lower, "km")
	if idx < 0 {
		return def
	}
	before := lower[:idx]

	start := -1
	for i, r := range before {
		if r >= '0' && r <= '9' {
			if start < 0 {
				start = i
			}
		} else if start >= 0 {
			if n, err := strconv.ParseFloat(before[start:i], 64); err == nil {
				return n
			}
			start = -1
		}
	}
	if start >= 0 {
		if n, err := strconv.ParseFloat(before[start:], 64); err == nil {
			return n
		}
	}
	return def
}

// placeKeywords are the category terms scanned for when a place
// response carries no parseable JSON.
var placeKeywords = []string{"Beach", "Fort", "Temple", "Market", "Falls", "Church", "Food", "Museum"}

// PlaceKeywordFromText returns the first place-category keyword found
// in the text, case-insensitively.
func PlaceKeywordFromText(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, kw := range placeKeywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return kw, true
		}
	}
	return "", false
}
