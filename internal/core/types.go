package core

import (
	"context"
	"fmt"
	"time"
)

// EntityKind names a kind of record the pipeline can import.
type EntityKind string

const (
	KindCompany EntityKind = "company"
	KindContact EntityKind = "contact"
)

// FieldType represents the declared type of a target field.
type FieldType int

const (
	FieldText FieldType = iota
	FieldInteger
	FieldDecimal
	FieldList
)

// FieldSpec defines one target field of an entity kind.
type FieldSpec struct {
	Name     string    // Canonical field name, also the template header
	Type     FieldType // Declared type, selects the parser
	Required bool      // Row fails when the mapped cell is empty
}

// RawRow is an ordered sequence of cells. Row 0 of a file is the header.
type RawRow []string

// ErrorKind classifies a row error by the stage that produced it.
type ErrorKind string

const (
	ErrorKindValidation ErrorKind = "validation"
	ErrorKindResolution ErrorKind = "resolution"
	ErrorKindStore      ErrorKind = "store"
)

// ValidationError is a single row-level error. RowIndex is 0-based over the
// non-blank data rows. Resolution and store failures use the same shape with
// a different Kind so the report carries one flat error list.
type ValidationError struct {
	RowIndex int       `json:"rowIndex"`
	Field    string    `json:"field,omitempty"`
	Value    string    `json:"value,omitempty"`
	Message  string    `json:"message"`
	Kind     ErrorKind `json:"kind"`
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("row %d: %s: %s", e.RowIndex, e.Field, e.Message)
	}
	return fmt.Sprintf("row %d: %s", e.RowIndex, e.Message)
}

// RowOutcome is the result of validating one data row: either a draft or
// the complete list of errors found on the row.
type RowOutcome struct {
	RowIndex int
	Draft    EntityDraft
	Errors   []ValidationError
}

// OK reports whether the row produced a draft.
func (o RowOutcome) OK() bool {
	return len(o.Errors) == 0 && o.Draft != nil
}

// FailedRow carries the raw cells and errors of a row that did not commit.
type FailedRow struct {
	RowIndex int               `json:"rowIndex"`
	RawCells []string          `json:"rawCells"`
	Errors   []ValidationError `json:"errors"`
}

// CreatedParent records a parent entity created while resolving a row.
// Parents are written before the batch commit and persist even if the batch
// of dependents later fails.
type CreatedParent struct {
	Kind     EntityKind `json:"kind"`
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	RowIndex int        `json:"rowIndex"`
}

// ExistingMatch flags a row whose natural key already exists in the store.
// The row is still inserted.
type ExistingMatch struct {
	RowIndex   int    `json:"rowIndex"`
	NaturalKey string `json:"naturalKey"`
	ExistingID string `json:"existingId"`
}

// ImportReport is the outcome of one run. It is returned to the caller and
// never persisted by the pipeline.
type ImportReport struct {
	RunID          string             `json:"runId"`
	Kind           EntityKind         `json:"kind"`
	FileName       string             `json:"fileName,omitempty"`
	TotalRows      int                `json:"totalRows"`
	Added          int                `json:"added"`
	Updated        int                `json:"updated"`
	Failed         int                `json:"failed"`
	Errors         []ValidationError  `json:"errors"`
	FailedRows     []FailedRow        `json:"failedRows"`
	CreatedParents []CreatedParent    `json:"createdParents,omitempty"`
	ExistingKeys   []ExistingMatch    `json:"existingKeys,omitempty"`
	Mapping        FieldMapping       `json:"mapping"`
	Ambiguities    []MappingAmbiguity `json:"ambiguities,omitempty"`
	Elapsed        time.Duration      `json:"elapsed"`
}

// Balanced reports whether TotalRows == Added + Updated + Failed.
func (r *ImportReport) Balanced() bool {
	return r.TotalRows == r.Added+r.Updated+r.Failed
}

// RecordStore is the persistence collaborator. Implementations wrap their
// own errors; lookups return ErrNotFound for a missing natural key. The
// batch calls are all-or-nothing.
type RecordStore interface {
	FindCompanyByName(ctx context.Context, name string) (*Company, error)
	CreateCompany(ctx context.Context, draft CompanyDraft) (*Company, error)
	CreateCompanies(ctx context.Context, drafts []CompanyDraft) ([]Company, error)

	FindContactByName(ctx context.Context, name string) (*Contact, error)
	CreateContact(ctx context.Context, draft ContactDraft) (*Contact, error)
	CreateContacts(ctx context.Context, drafts []ContactDraft) ([]Contact, error)
}
