package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/bulkimport/internal/config"
	"github.com/JonMunkholm/bulkimport/internal/logging"
)

// Options tunes a Service.
type Options struct {
	Reader        ReaderOptions
	ListDelimiter string
	BatchSize     int
	Limiter       *RunLimiter
}

// OptionsFromConfig builds Options from the import section of the config.
func OptionsFromConfig(cfg config.ImportConfig) Options {
	tokens := make([]string, 0, len(cfg.EmptyTokens)+1)
	tokens = append(tokens, cfg.EmptyTokens...)
	tokens = append(tokens, `""`)

	return Options{
		Reader: ReaderOptions{
			Delimiter:   cfg.CellDelimiter(),
			EmptyTokens: tokens,
			MaxSize:     cfg.MaxFileSize,
		},
		ListDelimiter: cfg.ListItemDelimiter(),
		BatchSize:     cfg.BatchSize,
		Limiter:       NewRunLimiter(cfg.MaxConcurrent, cfg.MaxWaitTime),
	}
}

// SubmitRequest is one import run's input.
type SubmitRequest struct {
	Content    []byte
	Kind       EntityKind
	Mapping    FieldMapping      // Explicit field to column overrides; -1 unmaps a field
	Visibility VisibilityTierSet // Tier override for every record in the run
	FileName   string

	// FlagExisting looks up each valid row's natural key and lists rows that
	// match an existing record in the report. Matching rows are still inserted.
	FlagExisting bool
}

// MappingPreview shows how a file would be mapped without importing it.
type MappingPreview struct {
	Kind            EntityKind         `json:"kind"`
	Header          RawRow             `json:"header"`
	Mapping         FieldMapping       `json:"mapping"`
	Ambiguities     []MappingAmbiguity `json:"ambiguities,omitempty"`
	UnmappedFields  []string           `json:"unmappedFields,omitempty"`
	MissingRequired []string           `json:"missingRequired,omitempty"`
	DataRows        int                `json:"dataRows"`
	SampleRows      []RawRow           `json:"sampleRows,omitempty"`
}

// previewSampleSize is the number of data rows included in a preview.
const previewSampleSize = 5

// Service runs imports against a record store.
type Service struct {
	store     RecordStore
	resolver  *Resolver
	committer *Committer
	opts      Options
}

// NewService creates a Service backed by store.
func NewService(store RecordStore, opts Options) *Service {
	if opts.Reader.Delimiter == "" {
		opts.Reader.Delimiter = ","
	}
	return &Service{
		store:     store,
		resolver:  NewResolver(store),
		committer: NewCommitter(store, opts.BatchSize),
		opts:      opts,
	}
}

// Submit runs one import and returns its report. Row-level problems are
// reported, never returned. The returned error is a *ParseError for an
// unreadable file; ErrUnknownKind, ErrInvalidMapping, and limiter errors
// reject the request before any row is processed.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*ImportReport, error) {
	def, err := Lookup(req.Kind)
	if err != nil {
		return nil, err
	}

	if err := s.opts.Limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.opts.Limiter.Release()

	run := NewRunContext(req.Kind, req.Visibility)
	run.FileName = req.FileName
	ctx = logging.WithRunID(ctx, run.ID)
	logger := logging.FromContext(ctx)

	rows, err := ReadRows(req.Content, s.opts.Reader)
	if err != nil {
		logger.Warn("import rejected", "kind", req.Kind, "file", req.FileName, "error", err)
		return nil, err
	}

	header, data := rows[0], rows[1:]
	inferred := InferMapping(header, def.Catalog())
	mapping := inferred.Mapping.Apply(req.Mapping)
	if err := mapping.Validate(header, def.Catalog()); err != nil {
		return nil, err
	}

	logger.Info("import started", "kind", req.Kind, "file", req.FileName, "rows", len(data),
		"visibility", EffectiveVisibility(run.Visibility).String())

	report := newReportBuilder(run, len(data))

	// Validate
	validator := NewRowValidator(def, mapping, s.opts.ListDelimiter)
	pending := make([]PendingRow, 0, len(data))
	for i, row := range data {
		outcome := validator.ValidateRow(i, row)
		if !outcome.OK() {
			report.fail(i, row, outcome.Errors...)
			continue
		}
		pending = append(pending, PendingRow{RowIndex: i, Cells: row, Draft: outcome.Draft})
	}

	if req.FlagExisting {
		s.flagExisting(ctx, pending, report)
	}

	// Resolve and tag
	ready := pending[:0]
	for _, p := range pending {
		if ref, ok := p.Draft.(parentReferencer); ok {
			id, err := s.resolver.Resolve(ctx, run, p.RowIndex, ref.ParentName())
			if err != nil {
				report.fail(p.RowIndex, p.Cells, ValidationError{
					RowIndex: p.RowIndex,
					Field:    FieldCompanyName,
					Value:    ref.ParentName(),
					Message:  err.Error(),
					Kind:     ErrorKindResolution,
				})
				continue
			}
			p.Draft = ref.withParentID(id)
		}
		p.Draft = Tag(p.Draft, run.Visibility)
		ready = append(ready, p)
	}

	// Commit
	result := s.committer.Commit(ctx, ready)
	report.added(result.Committed)
	for _, f := range result.Failures {
		report.failBatch(f)
	}

	out := report.finish(ctx, run, mapping, inferred.Ambiguities)
	logger.Info("import finished", "kind", req.Kind, "total", out.TotalRows, "added", out.Added,
		"failed", out.Failed, "created_parents", len(out.CreatedParents), "elapsed", out.Elapsed)

	return out, nil
}

// flagExisting records rows whose natural key is already in the store.
// Lookup failures are logged and otherwise ignored.
func (s *Service) flagExisting(ctx context.Context, rows []PendingRow, report *reportBuilder) {
	logger := logging.FromContext(ctx)

	for _, p := range rows {
		key := p.Draft.NaturalKey()

		var id string
		var err error
		switch p.Draft.Kind() {
		case KindCompany:
			var c *Company
			if c, err = s.store.FindCompanyByName(ctx, key); err == nil && c != nil {
				id = c.ID
			}
		case KindContact:
			var c *Contact
			if c, err = s.store.FindContactByName(ctx, key); err == nil && c != nil {
				id = c.ID
			}
		}

		switch {
		case err != nil && !errors.Is(err, ErrNotFound):
			logger.Warn("existing-key lookup failed", "row", p.RowIndex, "key", key, "error", err)
		case id != "":
			report.existing(ExistingMatch{RowIndex: p.RowIndex, NaturalKey: key, ExistingID: id})
		}
	}
}

// Preview reads content and reports the inferred mapping for kind without
// touching the store.
func (s *Service) Preview(ctx context.Context, content []byte, kind EntityKind) (*MappingPreview, error) {
	def, err := Lookup(kind)
	if err != nil {
		return nil, err
	}

	rows, err := ReadRows(content, s.opts.Reader)
	if err != nil {
		return nil, err
	}

	header, data := rows[0], rows[1:]
	inferred := InferMapping(header, def.Catalog())

	preview := &MappingPreview{
		Kind:           kind,
		Header:         header,
		Mapping:        inferred.Mapping,
		Ambiguities:    inferred.Ambiguities,
		UnmappedFields: inferred.Mapping.Unmapped(def.Catalog()),
		DataRows:       len(data),
	}
	for _, f := range def.RequiredFields() {
		if _, ok := inferred.Mapping[f]; !ok {
			preview.MissingRequired = append(preview.MissingRequired, f)
		}
	}
	if n := min(len(data), previewSampleSize); n > 0 {
		preview.SampleRows = data[:n]
	}

	logging.FromContext(ctx).Debug("preview", "kind", kind, "mapped", len(inferred.Mapping),
		"ambiguities", len(inferred.Ambiguities))

	return preview, nil
}

// Template returns a header-only file for kind: the field names in
// catalog order joined by delimiter, followed by a newline.
func Template(kind EntityKind, delimiter string) (string, error) {
	def, err := Lookup(kind)
	if err != nil {
		return "", err
	}
	if delimiter == "" {
		delimiter = ","
	}
	return strings.Join(def.Catalog(), delimiter) + "\n", nil
}

// Describe lists the fields of kind with type and required flag, one per line.
func Describe(kind EntityKind) (string, error) {
	def, err := Lookup(kind)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, f := range def.Fields {
		req := ""
		if f.Required {
			req = " (required)"
		}
		fmt.Fprintf(&b, "%-16s %s%s\n", f.Name, f.Type, req)
	}
	return b.String(), nil
}
