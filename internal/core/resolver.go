package core

import (
	"context"
	"errors"
	"strings"

	"github.com/JonMunkholm/bulkimport/internal/logging"
)

// Resolver turns a company name on a contact row into a company ID,
// creating a name-only company when none exists.
type Resolver struct {
	store RecordStore
}

// NewResolver creates a resolver backed by store.
func NewResolver(store RecordStore) *Resolver {
	return &Resolver{store: store}
}

// Resolve returns the ID of the company named name. An empty name resolves
// to "" with no store access. Each distinct name is looked up at most once
// per run: the first outcome, success or failure, is reused for every later
// row naming the same company.
func (r *Resolver) Resolve(ctx context.Context, run *RunContext, rowIndex int, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", nil
	}

	if e, ok := run.parents[name]; ok {
		return e.id, e.err
	}

	id, err := r.findOrCreate(ctx, run, rowIndex, name)
	run.parents[name] = parentEntry{id: id, err: err}
	return id, err
}

func (r *Resolver) findOrCreate(ctx context.Context, run *RunContext, rowIndex int, name string) (string, error) {
	existing, err := r.store.FindCompanyByName(ctx, name)
	if err == nil && existing != nil {
		return existing.ID, nil
	}
	if err != nil && !errors.Is(err, ErrNotFound) {
		return "", &ResolutionError{Kind: KindCompany, Name: name, Err: err}
	}

	draft := Tag(CompanyDraft{Name: name}, nil).(CompanyDraft)
	created, err := r.store.CreateCompany(ctx, draft)
	if err != nil {
		return "", &ResolutionError{Kind: KindCompany, Name: name, Err: err}
	}

	run.created = append(run.created, CreatedParent{
		Kind:     KindCompany,
		ID:       created.ID,
		Name:     created.Name,
		RowIndex: rowIndex,
	})
	logging.FromContext(ctx).Debug("created parent company", "name", name, "id", created.ID, "row", rowIndex)

	return created.ID, nil
}
