package core

import (
	"errors"
	"reflect"
	"testing"
)

func TestRegisteredKinds(t *testing.T) {
	want := []EntityKind{KindCompany, KindContact}
	if got := Kinds(); !reflect.DeepEqual(got, want) {
		t.Errorf("Kinds() = %v, want %v", got, want)
	}
}

func TestCatalogs(t *testing.T) {
	tests := []struct {
		kind         EntityKind
		wantCatalog  []string
		wantRequired []string
	}{
		{
			kind:         KindCompany,
			wantCatalog:  []string{"company_name", "industry", "website", "headcount", "annual_revenue", "location", "tags"},
			wantRequired: []string{"company_name"},
		},
		{
			kind:         KindContact,
			wantCatalog:  []string{"name", "job_title", "email", "phone", "company_name", "tags"},
			wantRequired: []string{"name", "job_title"},
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			def := mustDef(t, tt.kind)
			if got := def.Catalog(); !reflect.DeepEqual(got, tt.wantCatalog) {
				t.Errorf("Catalog() = %v, want %v", got, tt.wantCatalog)
			}
			if got := def.RequiredFields(); !reflect.DeepEqual(got, tt.wantRequired) {
				t.Errorf("RequiredFields() = %v, want %v", got, tt.wantRequired)
			}
		})
	}
}

func TestLookup_UnknownKind(t *testing.T) {
	_, err := Lookup("deal")
	if !errors.Is(err, ErrUnknownKind) {
		t.Errorf("Lookup(deal) error = %v, want ErrUnknownKind", err)
	}
}

func TestRegister_DuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Register() of a duplicate kind should panic")
		}
	}()
	Register(EntityDefinition{Kind: KindCompany, Build: buildCompany})
}
