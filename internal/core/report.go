package core

import (
	"context"
	"sort"

	"github.com/JonMunkholm/bulkimport/internal/logging"
)

// reportBuilder accumulates row outcomes for one run. A row is counted as
// failed once no matter how many errors it carries.
type reportBuilder struct {
	report ImportReport
	failed map[int]*FailedRow
}

func newReportBuilder(run *RunContext, totalRows int) *reportBuilder {
	return &reportBuilder{
		report: ImportReport{
			RunID:     run.ID,
			Kind:      run.Kind,
			FileName:  run.FileName,
			TotalRows: totalRows,
		},
		failed: make(map[int]*FailedRow),
	}
}

// fail records errs against the row at index.
func (b *reportBuilder) fail(index int, cells RawRow, errs ...ValidationError) {
	fr, ok := b.failed[index]
	if !ok {
		fr = &FailedRow{RowIndex: index, RawCells: append([]string(nil), cells...)}
		b.failed[index] = fr
	}
	fr.Errors = append(fr.Errors, errs...)
}

// failBatch records one store error per row of a rejected batch.
func (b *reportBuilder) failBatch(f BatchFailure) {
	for _, r := range f.Rows {
		b.fail(r.RowIndex, r.Cells, ValidationError{
			RowIndex: r.RowIndex,
			Message:  "batch rejected: " + f.Err.Error(),
			Kind:     ErrorKindStore,
		})
	}
}

func (b *reportBuilder) added(n int) {
	b.report.Added += n
}

func (b *reportBuilder) existing(m ExistingMatch) {
	b.report.ExistingKeys = append(b.report.ExistingKeys, m)
}

// finish orders failures by row, attaches run metadata, and checks that
// every row was counted exactly once.
func (b *reportBuilder) finish(ctx context.Context, run *RunContext, mapping FieldMapping, ambiguities []MappingAmbiguity) *ImportReport {
	r := b.report

	indexes := make([]int, 0, len(b.failed))
	for idx := range b.failed {
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)

	r.FailedRows = make([]FailedRow, 0, len(indexes))
	r.Errors = make([]ValidationError, 0, len(indexes))
	for _, idx := range indexes {
		fr := *b.failed[idx]
		r.FailedRows = append(r.FailedRows, fr)
		r.Errors = append(r.Errors, fr.Errors...)
	}
	r.Failed = len(r.FailedRows)

	r.Mapping = mapping
	r.Ambiguities = ambiguities
	r.CreatedParents = run.CreatedParents()
	r.Elapsed = run.Elapsed()

	if !r.Balanced() {
		logging.FromContext(ctx).Error("report counts do not balance",
			"total", r.TotalRows, "added", r.Added, "updated", r.Updated, "failed", r.Failed)
	}

	return &r
}
