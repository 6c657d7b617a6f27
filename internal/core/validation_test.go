package core

import (
	"reflect"
	"testing"
)

func mustDef(t *testing.T, kind EntityKind) EntityDefinition {
	t.Helper()
	def, err := Lookup(kind)
	if err != nil {
		t.Fatalf("Lookup(%s) error = %v", kind, err)
	}
	return def
}

func TestValidateRow_Contact(t *testing.T) {
	def := mustDef(t, KindContact)
	mapping := FieldMapping{"name": 0, "job_title": 1, "company_name": 2, "tags": 3}
	v := NewRowValidator(def, mapping, ";")

	outcome := v.ValidateRow(4, RawRow{"Ada Lovelace", "CTO", "Acme", "vip; ; board"})
	if !outcome.OK() {
		t.Fatalf("ValidateRow() errors = %v", outcome.Errors)
	}

	draft, ok := outcome.Draft.(ContactDraft)
	if !ok {
		t.Fatalf("Draft type = %T, want ContactDraft", outcome.Draft)
	}
	want := ContactDraft{
		Name:        "Ada Lovelace",
		JobTitle:    "CTO",
		CompanyName: "Acme",
		Tags:        []string{"vip", "board"},
	}
	if !reflect.DeepEqual(draft, want) {
		t.Errorf("Draft = %+v, want %+v", draft, want)
	}
	if outcome.RowIndex != 4 {
		t.Errorf("RowIndex = %d, want 4", outcome.RowIndex)
	}
}

func TestValidateRow_CollectsAllRequiredErrors(t *testing.T) {
	def := mustDef(t, KindContact)
	v := NewRowValidator(def, FieldMapping{"name": 0, "job_title": 1, "email": 2}, "")

	outcome := v.ValidateRow(2, RawRow{"", "  ", "ada@example.com"})
	if outcome.OK() {
		t.Fatal("ValidateRow() expected failure")
	}
	if outcome.Draft != nil {
		t.Errorf("Draft = %v, want nil on failure", outcome.Draft)
	}

	var fields []string
	for _, e := range outcome.Errors {
		fields = append(fields, e.Field)
		if e.Kind != ErrorKindValidation {
			t.Errorf("error kind = %q, want %q", e.Kind, ErrorKindValidation)
		}
		if e.RowIndex != 2 {
			t.Errorf("error row = %d, want 2", e.RowIndex)
		}
	}
	if want := []string{"name", "job_title"}; !reflect.DeepEqual(fields, want) {
		t.Errorf("error fields = %v, want %v", fields, want)
	}
}

func TestValidateRow_UnmappedRequiredField(t *testing.T) {
	def := mustDef(t, KindContact)
	v := NewRowValidator(def, FieldMapping{"name": 0}, ";")

	outcome := v.ValidateRow(0, RawRow{"Ada"})
	if len(outcome.Errors) != 1 || outcome.Errors[0].Field != "job_title" {
		t.Errorf("Errors = %v, want one job_title error", outcome.Errors)
	}
}

func TestValidateRow_Company(t *testing.T) {
	def := mustDef(t, KindCompany)
	mapping := FieldMapping{
		"company_name":   0,
		"headcount":      1,
		"annual_revenue": 2,
		"website":        3,
	}
	v := NewRowValidator(def, mapping, ";")

	tests := []struct {
		name          string
		row           RawRow
		wantHeadcount *int64
		wantRevenue   *float64
	}{
		{
			name:          "parsed numbers",
			row:           RawRow{"Acme", "1,200", "$2,500,000.50", "acme.io"},
			wantHeadcount: ptr(int64(1200)),
			wantRevenue:   ptr(2500000.50),
		},
		{
			name: "unparseable numbers tolerated",
			row:  RawRow{"Acme", "about fifty", "n/k", "acme.io"},
		},
		{
			name:          "short row",
			row:           RawRow{"Acme", "12"},
			wantHeadcount: ptr(int64(12)),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome := v.ValidateRow(0, tt.row)
			if !outcome.OK() {
				t.Fatalf("ValidateRow() errors = %v", outcome.Errors)
			}
			d := outcome.Draft.(CompanyDraft)
			if !reflect.DeepEqual(d.Headcount, tt.wantHeadcount) {
				t.Errorf("Headcount = %v, want %v", deref(d.Headcount), deref(tt.wantHeadcount))
			}
			if !reflect.DeepEqual(d.AnnualRevenue, tt.wantRevenue) {
				t.Errorf("AnnualRevenue = %v, want %v", deref(d.AnnualRevenue), deref(tt.wantRevenue))
			}
			if d.Name != "Acme" {
				t.Errorf("Name = %q, want Acme", d.Name)
			}
		})
	}
}

func TestValidateRow_CustomListDelimiter(t *testing.T) {
	def := mustDef(t, KindCompany)
	v := NewRowValidator(def, FieldMapping{"company_name": 0, "tags": 1}, "|")

	outcome := v.ValidateRow(0, RawRow{"Acme", "saas|b2b"})
	d := outcome.Draft.(CompanyDraft)
	if want := []string{"saas", "b2b"}; !reflect.DeepEqual(d.Tags, want) {
		t.Errorf("Tags = %v, want %v", d.Tags, want)
	}
}

func TestFieldTypeString(t *testing.T) {
	tests := []struct {
		ft   FieldType
		want string
	}{
		{FieldText, "text"},
		{FieldInteger, "integer"},
		{FieldDecimal, "decimal"},
		{FieldList, "list"},
		{FieldType(99), "value"},
	}
	for _, tt := range tests {
		if got := tt.ft.String(); got != tt.want {
			t.Errorf("FieldType(%d).String() = %q, want %q", tt.ft, got, tt.want)
		}
	}
}

func ptr[T any](v T) *T { return &v }

func deref[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
