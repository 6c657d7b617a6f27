package core

// mapper.go infers which file column feeds which target field.
//
// Header cells and field names are compared after normalization (lowercase,
// letters and digits only), so "Company Name", "company_name" and
// "COMPANY-NAME" are the same. Matching runs in two passes:
//
//  1. Exact: a header equal to a field name claims that field.
//  2. Containment: a remaining header claims the first unclaimed field, in
//     catalog order, whose name contains the header or is contained in it.
//
// A field is claimed by at most one column. Anything the heuristic could
// not decide cleanly is reported as a MappingAmbiguity; the caller's
// explicit mapping always wins over inference.

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// FieldMapping maps a target field name to a 0-based column index.
type FieldMapping map[string]int

// Ambiguity reasons.
const (
	ReasonNoMatch        = "no matching field"
	ReasonMultipleFields = "multiple candidate fields"
	ReasonFieldTaken     = "matching field already mapped"
)

// MappingAmbiguity describes a header cell the heuristic could not map
// cleanly. Chosen is empty when the column was left unmapped.
type MappingAmbiguity struct {
	Column     int      `json:"column"`
	Header     string   `json:"header"`
	Candidates []string `json:"candidates,omitempty"`
	Chosen     string   `json:"chosen,omitempty"`
	Reason     string   `json:"reason"`
}

// MappingResult is the outcome of InferMapping.
type MappingResult struct {
	Mapping     FieldMapping
	Ambiguities []MappingAmbiguity
}

// normalizeName lowercases s and drops everything but letters and digits.
func normalizeName(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// InferMapping proposes a mapping from header cells to catalog fields.
func InferMapping(header RawRow, catalog []string) MappingResult {
	result := MappingResult{Mapping: make(FieldMapping)}

	fields := make([]string, len(catalog))
	byNorm := make(map[string]int, len(catalog))
	for j, f := range catalog {
		fields[j] = normalizeName(f)
		if _, dup := byNorm[fields[j]]; !dup {
			byNorm[fields[j]] = j
		}
	}

	claimed := make([]bool, len(catalog))
	mapped := make([]bool, len(header))
	heads := make([]string, len(header))

	for i, h := range header {
		heads[i] = normalizeName(h)
		if heads[i] == "" {
			mapped[i] = true
			continue
		}
		if j, ok := byNorm[heads[i]]; ok && !claimed[j] {
			claimed[j] = true
			mapped[i] = true
			result.Mapping[catalog[j]] = i
		}
	}

	for i, h := range heads {
		if mapped[i] {
			continue
		}

		var candidates []string
		chosen := -1
		for j, f := range fields {
			if f == "" || !(strings.Contains(f, h) || strings.Contains(h, f)) {
				continue
			}
			candidates = append(candidates, catalog[j])
			if chosen < 0 && !claimed[j] {
				chosen = j
			}
		}

		amb := MappingAmbiguity{Column: i, Header: header[i], Candidates: candidates}
		switch {
		case len(candidates) == 0:
			amb.Reason = ReasonNoMatch
		case chosen < 0:
			amb.Reason = ReasonFieldTaken
		default:
			claimed[chosen] = true
			result.Mapping[catalog[chosen]] = i
			if len(candidates) == 1 {
				continue
			}
			amb.Chosen = catalog[chosen]
			amb.Reason = ReasonMultipleFields
		}
		result.Ambiguities = append(result.Ambiguities, amb)
	}

	return result
}

// Clone returns an independent copy of the mapping.
func (m FieldMapping) Clone() FieldMapping {
	out := make(FieldMapping, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Apply returns m with override layered on top. A negative column in the
// override removes the field from the mapping.
func (m FieldMapping) Apply(override FieldMapping) FieldMapping {
	out := m.Clone()
	for field, col := range override {
		if col < 0 {
			delete(out, field)
			continue
		}
		out[field] = col
	}
	return out
}

// Cell returns the value mapped to field, or "" when the field is unmapped
// or the row is too short.
func (m FieldMapping) Cell(row RawRow, field string) string {
	col, ok := m[field]
	if !ok || col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}

// Validate checks that every field is in the catalog and every column is
// inside the header.
func (m FieldMapping) Validate(header RawRow, catalog []string) error {
	known := make(map[string]bool, len(catalog))
	for _, f := range catalog {
		known[f] = true
	}

	var problems []string
	for _, field := range m.Fields() {
		col := m[field]
		if !known[field] {
			problems = append(problems, fmt.Sprintf("unknown field %q", field))
		}
		if col < 0 || col >= len(header) {
			problems = append(problems, fmt.Sprintf("field %q column %d outside header of %d columns", field, col, len(header)))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidMapping, strings.Join(problems, "; "))
	}
	return nil
}

// Fields returns the mapped field names in sorted order.
func (m FieldMapping) Fields() []string {
	fields := make([]string, 0, len(m))
	for f := range m {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// Unmapped returns the catalog fields absent from m, in catalog order.
func (m FieldMapping) Unmapped(catalog []string) []string {
	var out []string
	for _, f := range catalog {
		if _, ok := m[f]; !ok {
			out = append(out, f)
		}
	}
	return out
}
