// Package memory provides an in-process RecordStore.
//
// Records live in slices guarded by a mutex and disappear with the process.
// It backs the "memory" store driver, dry runs from the CLI, and tests of
// callers that need a working store without a database file.
//
//	store := memory.New()
//	svc := core.NewService(store, opts)
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/bulkimport/internal/core"
)

var _ core.RecordStore = (*Store)(nil)

// Store is a mutex-guarded, insert-only record store.
type Store struct {
	mu        sync.RWMutex
	companies []core.Company
	contacts  []core.Contact
	now       func() time.Time
}

// New creates an empty store.
func New() *Store {
	return &Store{now: time.Now}
}

// FindCompanyByName returns the first company whose name equals name.
func (s *Store) FindCompanyByName(ctx context.Context, name string) (*core.Company, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.companies {
		if s.companies[i].Name == name {
			c := cloneCompany(s.companies[i])
			return &c, nil
		}
	}
	return nil, core.ErrNotFound
}

// CreateCompany inserts a single company.
func (s *Store) CreateCompany(ctx context.Context, d core.CompanyDraft) (*core.Company, error) {
	out, err := s.CreateCompanies(ctx, []core.CompanyDraft{d})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// CreateCompanies inserts every draft or none of them.
func (s *Store) CreateCompanies(ctx context.Context, drafts []core.CompanyDraft) ([]core.Company, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	now := s.now()

	out := make([]core.Company, len(drafts))
	for i, d := range drafts {
		out[i] = cloneCompany(core.Company{
			ID:            uuid.NewString(),
			Name:          d.Name,
			Industry:      d.Industry,
			Website:       d.Website,
			Location:      d.Location,
			Headcount:     d.Headcount,
			AnnualRevenue: d.AnnualRevenue,
			Tags:          d.Tags,
			Visibility:    d.Visibility,
			CreatedAt:     now,
		})
	}

	s.mu.Lock()
	s.companies = append(s.companies, out...)
	s.mu.Unlock()

	return out, nil
}

// FindContactByName returns the first contact whose name equals name.
func (s *Store) FindContactByName(ctx context.Context, name string) (*core.Contact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.contacts {
		if s.contacts[i].Name == name {
			c := cloneContact(s.contacts[i])
			return &c, nil
		}
	}
	return nil, core.ErrNotFound
}

// CreateContact inserts a single contact.
func (s *Store) CreateContact(ctx context.Context, d core.ContactDraft) (*core.Contact, error) {
	out, err := s.CreateContacts(ctx, []core.ContactDraft{d})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// CreateContacts inserts every draft or none of them. A non-empty
// CompanyID must name a stored company.
func (s *Store) CreateContacts(ctx context.Context, drafts []core.ContactDraft) ([]core.Contact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]core.Contact, len(drafts))
	for i, d := range drafts {
		if d.CompanyID != "" && !s.hasCompany(d.CompanyID) {
			return nil, fmt.Errorf("contact %q: foreign key company %q not found", d.Name, d.CompanyID)
		}
		out[i] = cloneContact(core.Contact{
			ID:         uuid.NewString(),
			Name:       d.Name,
			JobTitle:   d.JobTitle,
			Email:      d.Email,
			Phone:      d.Phone,
			CompanyID:  d.CompanyID,
			Tags:       d.Tags,
			Visibility: d.Visibility,
			CreatedAt:  now,
		})
	}

	s.contacts = append(s.contacts, out...)
	return out, nil
}

// Companies returns a snapshot of every stored company in insertion order.
func (s *Store) Companies() []core.Company {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.Company, len(s.companies))
	for i, c := range s.companies {
		out[i] = cloneCompany(c)
	}
	return out
}

// Contacts returns a snapshot of every stored contact in insertion order.
func (s *Store) Contacts() []core.Contact {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.Contact, len(s.contacts))
	for i, c := range s.contacts {
		out[i] = cloneContact(c)
	}
	return out
}

// hasCompany reports whether id is stored. Caller holds s.mu.
func (s *Store) hasCompany(id string) bool {
	for i := range s.companies {
		if s.companies[i].ID == id {
			return true
		}
	}
	return false
}

func cloneCompany(c core.Company) core.Company {
	c.Tags = append([]string(nil), c.Tags...)
	c.Visibility = c.Visibility.Clone()
	if c.Headcount != nil {
		v := *c.Headcount
		c.Headcount = &v
	}
	if c.AnnualRevenue != nil {
		v := *c.AnnualRevenue
		c.AnnualRevenue = &v
	}
	return c
}

func cloneContact(c core.Contact) core.Contact {
	c.Tags = append([]string(nil), c.Tags...)
	c.Visibility = c.Visibility.Clone()
	return c
}
