package core

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

const profilesYAML = `
profiles:
  - name: hubspot-contacts
    kind: contact
    columns:
      name: Full Name
      job_title: Role
      company_name: Associated Company
  - name: crunchbase
    kind: company
    columns:
      company_name: Organization Name
      headcount: Number of Employees
`

func TestLoadProfiles(t *testing.T) {
	profiles, err := LoadProfiles(strings.NewReader(profilesYAML))
	if err != nil {
		t.Fatalf("LoadProfiles() error = %v", err)
	}
	if len(profiles) != 2 {
		t.Fatalf("len(profiles) = %d, want 2", len(profiles))
	}

	p := profiles[0]
	if p.Name != "hubspot-contacts" || p.Kind != KindContact {
		t.Errorf("profile = %+v, want hubspot-contacts/contact", p)
	}
	if want := []string{"Associated Company", "Full Name", "Role"}; !reflect.DeepEqual(p.Headers(), want) {
		t.Errorf("Headers() = %v, want %v", p.Headers(), want)
	}
}

func TestLoadProfiles_Empty(t *testing.T) {
	profiles, err := LoadProfiles(strings.NewReader(""))
	if err != nil {
		t.Fatalf("LoadProfiles() error = %v", err)
	}
	if len(profiles) != 0 {
		t.Errorf("len(profiles) = %d, want 0", len(profiles))
	}
}

func TestLoadProfiles_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{
			name:    "missing name",
			doc:     "profiles:\n  - kind: contact\n",
			wantErr: "name is required",
		},
		{
			name:    "unknown kind",
			doc:     "profiles:\n  - name: x\n    kind: deal\n",
			wantErr: "unknown entity kind",
		},
		{
			name:    "unknown field",
			doc:     "profiles:\n  - name: x\n    kind: contact\n    columns:\n      nickname: Nick\n",
			wantErr: "unknown field",
		},
		{
			name:    "duplicate name",
			doc:     "profiles:\n  - name: x\n    kind: contact\n  - name: x\n    kind: company\n",
			wantErr: "duplicate name",
		},
		{
			name:    "malformed yaml",
			doc:     "profiles: [\n",
			wantErr: "decode profiles",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadProfiles(strings.NewReader(tt.doc))
			if err == nil {
				t.Fatal("LoadProfiles() expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestMappingProfile_Resolve(t *testing.T) {
	profiles, err := LoadProfiles(strings.NewReader(profilesYAML))
	if err != nil {
		t.Fatalf("LoadProfiles() error = %v", err)
	}

	header := RawRow{"Role", "full name", "Email", "Associated-Company"}
	got := profiles[0].Resolve(header)
	want := FieldMapping{"job_title": 0, "name": 1, "company_name": 3}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Resolve() = %v, want %v", got, want)
	}
}

func TestMatchProfiles(t *testing.T) {
	profiles, err := LoadProfiles(strings.NewReader(profilesYAML))
	if err != nil {
		t.Fatalf("LoadProfiles() error = %v", err)
	}

	tests := []struct {
		name      string
		kind      EntityKind
		header    RawRow
		wantNames []string
	}{
		{
			name:      "full match",
			kind:      KindContact,
			header:    RawRow{"Full Name", "Role", "Associated Company", "Email"},
			wantNames: []string{"hubspot-contacts"},
		},
		{
			name:   "below threshold",
			kind:   KindContact,
			header: RawRow{"Full Name", "Title", "Company"},
		},
		{
			name:   "other kind ignored",
			kind:   KindCompany,
			header: RawRow{"Full Name", "Role", "Associated Company"},
		},
		{
			name:      "company profile",
			kind:      KindCompany,
			header:    RawRow{"Organization Name", "Number of Employees"},
			wantNames: []string{"crunchbase"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var names []string
			for _, m := range MatchProfiles(tt.kind, tt.header, profiles) {
				names = append(names, m.Profile.Name)
			}
			if !reflect.DeepEqual(names, tt.wantNames) {
				t.Errorf("MatchProfiles() = %v, want %v", names, tt.wantNames)
			}
		})
	}
}

func TestMatchProfileHeaders(t *testing.T) {
	tests := []struct {
		file    []string
		profile []string
		want    float64
	}{
		{[]string{"a", "b", "c"}, []string{"a", "b"}, 1},
		{[]string{"A ", "b"}, []string{"a", "b", "c", "d"}, 0.5},
		{[]string{"a"}, nil, 0},
	}

	for _, tt := range tests {
		if got := matchProfileHeaders(tt.file, tt.profile); got != tt.want {
			t.Errorf("matchProfileHeaders(%v, %v) = %v, want %v", tt.file, tt.profile, got, tt.want)
		}
	}
}

func TestLoadProfilesFile_Missing(t *testing.T) {
	_, err := LoadProfilesFile("/nonexistent/profiles.yaml")
	if err == nil {
		t.Fatal("LoadProfilesFile() expected error")
	}
	if errors.Is(err, ErrInvalidMapping) {
		t.Errorf("missing file should not be a mapping error: %v", err)
	}
}
