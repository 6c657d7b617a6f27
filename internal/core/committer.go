package core

import (
	"context"
	"fmt"

	"github.com/JonMunkholm/bulkimport/internal/logging"
)

// PendingRow is a validated, resolved, and tagged row waiting for commit.
type PendingRow struct {
	RowIndex int
	Cells    RawRow
	Draft    EntityDraft
}

// BatchFailure is a chunk of rows the store rejected as a whole.
type BatchFailure struct {
	Rows []PendingRow
	Err  error
}

// CommitResult is the outcome of Committer.Commit.
type CommitResult struct {
	Committed int
	Failures  []BatchFailure
}

// Committer writes drafts through the store's batch calls. With a batch
// size of 0 every draft goes in one call; otherwise drafts are split into
// chunks that each commit or fail atomically.
type Committer struct {
	store     RecordStore
	batchSize int
}

// NewCommitter creates a committer backed by store.
func NewCommitter(store RecordStore, batchSize int) *Committer {
	if batchSize < 0 {
		batchSize = 0
	}
	return &Committer{store: store, batchSize: batchSize}
}

// Commit writes rows in order. It never calls the store with an empty
// batch.
func (c *Committer) Commit(ctx context.Context, rows []PendingRow) CommitResult {
	var result CommitResult
	logger := logging.FromContext(ctx)

	for _, chunk := range c.chunks(rows) {
		if err := c.writeBatch(ctx, chunk); err != nil {
			logger.Warn("batch rejected", "rows", len(chunk), "first_row", chunk[0].RowIndex, "error", err)
			result.Failures = append(result.Failures, BatchFailure{Rows: chunk, Err: err})
			continue
		}
		result.Committed += len(chunk)
		logger.Debug("batch committed", "rows", len(chunk), "first_row", chunk[0].RowIndex)
	}

	return result
}

func (c *Committer) chunks(rows []PendingRow) [][]PendingRow {
	if len(rows) == 0 {
		return nil
	}
	size := c.batchSize
	if size == 0 || size > len(rows) {
		size = len(rows)
	}

	var out [][]PendingRow
	for start := 0; start < len(rows); start += size {
		end := start + size
		if end > len(rows) {
			end = len(rows)
		}
		out = append(out, rows[start:end])
	}
	return out
}

func (c *Committer) writeBatch(ctx context.Context, chunk []PendingRow) error {
	switch chunk[0].Draft.Kind() {
	case KindCompany:
		drafts := make([]CompanyDraft, 0, len(chunk))
		for _, r := range chunk {
			d, ok := r.Draft.(CompanyDraft)
			if !ok {
				return fmt.Errorf("row %d: mixed kinds in company batch", r.RowIndex)
			}
			drafts = append(drafts, d)
		}
		if _, err := c.store.CreateCompanies(ctx, drafts); err != nil {
			return &StoreError{Op: "create companies", Err: err}
		}

	case KindContact:
		drafts := make([]ContactDraft, 0, len(chunk))
		for _, r := range chunk {
			d, ok := r.Draft.(ContactDraft)
			if !ok {
				return fmt.Errorf("row %d: mixed kinds in contact batch", r.RowIndex)
			}
			drafts = append(drafts, d)
		}
		if _, err := c.store.CreateContacts(ctx, drafts); err != nil {
			return &StoreError{Op: "create contacts", Err: err}
		}

	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, chunk[0].Draft.Kind())
	}

	return nil
}
