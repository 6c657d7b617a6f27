package core

// templates.go handles saved mapping profiles.
//
// A profile remembers which header text feeds which field for a recurring
// export (a CRM dump, a trade-show list). Profiles live in a YAML file:
//
//	profiles:
//	  - name: hubspot-contacts
//	    kind: contact
//	    columns:
//	      name: Full Name
//	      job_title: Role
//	      company_name: Associated Company
//
// An incoming header is scored against each profile of the same kind; the
// best profile at or above ProfileMatchThreshold supplies the explicit
// mapping for the run.

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// ProfileMatchThreshold is the minimum share of a profile's headers that
// must appear in a file for the profile to match.
const ProfileMatchThreshold = 0.7

// MappingProfile is a saved mapping from header text to fields.
type MappingProfile struct {
	Name    string            `yaml:"name"`
	Kind    EntityKind        `yaml:"kind"`
	Columns map[string]string `yaml:"columns"` // field -> header text
}

// ProfileMatch is a profile scored against a header.
type ProfileMatch struct {
	Profile MappingProfile
	Score   float64
}

type profileFile struct {
	Profiles []MappingProfile `yaml:"profiles"`
}

// LoadProfiles decodes and validates profiles from r. An empty document
// yields no profiles.
func LoadProfiles(r io.Reader) ([]MappingProfile, error) {
	var f profileFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode profiles: %w", err)
	}

	seen := make(map[string]bool, len(f.Profiles))
	for i, p := range f.Profiles {
		if p.Name == "" {
			return nil, fmt.Errorf("profile %d: name is required", i)
		}
		if seen[p.Name] {
			return nil, fmt.Errorf("profile %q: duplicate name", p.Name)
		}
		seen[p.Name] = true

		def, err := Lookup(p.Kind)
		if err != nil {
			return nil, fmt.Errorf("profile %q: %w", p.Name, err)
		}
		catalog := make(map[string]bool, len(def.Fields))
		for _, name := range def.Catalog() {
			catalog[name] = true
		}
		for field := range p.Columns {
			if !catalog[field] {
				return nil, fmt.Errorf("profile %q: %w: unknown field %q", p.Name, ErrInvalidMapping, field)
			}
		}
	}

	return f.Profiles, nil
}

// LoadProfilesFile reads profiles from the YAML file at path.
func LoadProfilesFile(path string) ([]MappingProfile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open profiles: %w", err)
	}
	defer f.Close()

	return LoadProfiles(f)
}

// Headers returns the profile's header texts in sorted order.
func (p MappingProfile) Headers() []string {
	headers := make([]string, 0, len(p.Columns))
	for _, h := range p.Columns {
		headers = append(headers, h)
	}
	sort.Strings(headers)
	return headers
}

// Resolve maps the profile onto header. Fields whose header text is absent
// from the file are left out.
func (p MappingProfile) Resolve(header RawRow) FieldMapping {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		key := normalizeName(h)
		if _, dup := cols[key]; !dup && key != "" {
			cols[key] = i
		}
	}

	m := make(FieldMapping, len(p.Columns))
	for field, text := range p.Columns {
		if i, ok := cols[normalizeName(text)]; ok {
			m[field] = i
		}
	}
	return m
}

// MatchProfiles returns the profiles of kind that match header, best first.
func MatchProfiles(kind EntityKind, header RawRow, profiles []MappingProfile) []ProfileMatch {
	var matches []ProfileMatch
	for _, p := range profiles {
		if p.Kind != kind {
			continue
		}
		score := matchProfileHeaders(header, p.Headers())
		if score >= ProfileMatchThreshold {
			matches = append(matches, ProfileMatch{Profile: p, Score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	return matches
}

// matchProfileHeaders returns the share of profile headers present in the
// file header.
func matchProfileHeaders(fileHeaders []string, profileHeaders []string) float64 {
	if len(profileHeaders) == 0 {
		return 0
	}

	present := make(map[string]bool, len(fileHeaders))
	for _, h := range fileHeaders {
		present[normalizeName(h)] = true
	}

	matched := 0
	for _, h := range profileHeaders {
		if present[normalizeName(h)] {
			matched++
		}
	}

	return float64(matched) / float64(len(profileHeaders))
}
