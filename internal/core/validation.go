package core

// validation.go turns a mapped row into a draft or a list of errors.
//
// Every field spec is checked, so a row with three empty required fields
// reports three errors. Only required-ness fails a row: typed cells that do
// not parse are tolerated and left unset.

import "strings"

const msgRequired = "required field is empty"

// FieldValues holds the parsed values of one row keyed by field name.
type FieldValues map[string]any

// Text returns a text field, or "".
func (v FieldValues) Text(name string) string {
	s, _ := v[name].(string)
	return s
}

// Int returns an integer field, or nil.
func (v FieldValues) Int(name string) *int64 {
	i, _ := v[name].(*int64)
	return i
}

// Decimal returns a decimal field, or nil.
func (v FieldValues) Decimal(name string) *float64 {
	f, _ := v[name].(*float64)
	return f
}

// List returns a list field, or nil.
func (v FieldValues) List(name string) []string {
	l, _ := v[name].([]string)
	return l
}

// RowValidator validates rows of one entity kind under a fixed mapping.
type RowValidator struct {
	def       EntityDefinition
	mapping   FieldMapping
	listDelim string
}

// NewRowValidator creates a validator for def. listDelim splits list cells
// and defaults to ";".
func NewRowValidator(def EntityDefinition, mapping FieldMapping, listDelim string) *RowValidator {
	if listDelim == "" {
		listDelim = ";"
	}
	return &RowValidator{
		def:       def,
		mapping:   mapping,
		listDelim: listDelim,
	}
}

// ValidateRow validates the data row at index and returns all errors found.
func (v *RowValidator) ValidateRow(index int, row RawRow) RowOutcome {
	outcome := RowOutcome{RowIndex: index}
	values := make(FieldValues, len(v.def.Fields))

	for _, spec := range v.def.Fields {
		raw := strings.TrimSpace(v.mapping.Cell(row, spec.Name))

		if raw == "" {
			if spec.Required {
				outcome.Errors = append(outcome.Errors, ValidationError{
					RowIndex: index,
					Field:    spec.Name,
					Message:  msgRequired,
					Kind:     ErrorKindValidation,
				})
			}
			continue
		}

		switch spec.Type {
		case FieldInteger:
			if i := ParseInteger(raw); i != nil {
				values[spec.Name] = i
			}
		case FieldDecimal:
			if f := ParseDecimal(raw); f != nil {
				values[spec.Name] = f
			}
		case FieldList:
			if l := SplitList(raw, v.listDelim); l != nil {
				values[spec.Name] = l
			}
		default:
			values[spec.Name] = raw
		}
	}

	if len(outcome.Errors) > 0 {
		return outcome
	}

	outcome.Draft = v.def.Build(values)
	return outcome
}

// String returns a human-readable name for a field type.
func (t FieldType) String() string {
	switch t {
	case FieldText:
		return "text"
	case FieldInteger:
		return "integer"
	case FieldDecimal:
		return "decimal"
	case FieldList:
		return "list"
	default:
		return "value"
	}
}
