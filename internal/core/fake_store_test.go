package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// fakeStore is an in-package RecordStore that counts calls and can be told
// to fail specific operations.
type fakeStore struct {
	mu sync.Mutex

	companies []Company
	contacts  []Contact
	nextID    int

	findCompanyCalls   int
	createCompanyCalls int
	batchCalls         int
	batchSizes         []int

	// failCreateCompany fails CreateCompany for the named company.
	failCreateCompany map[string]error
	// failFind fails FindCompanyByName for the named company.
	failFind map[string]error
	// failBatch fails the batch call with this 1-based ordinal.
	failBatch map[int]error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		failCreateCompany: make(map[string]error),
		failFind:          make(map[string]error),
		failBatch:         make(map[int]error),
	}
}

func (s *fakeStore) id(prefix string) string {
	s.nextID++
	return fmt.Sprintf("%s-%d", prefix, s.nextID)
}

func (s *fakeStore) seedCompany(name string) Company {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := Company{ID: s.id("co"), Name: name, Visibility: DefaultVisibility, CreatedAt: time.Now()}
	s.companies = append(s.companies, c)
	return c
}

func (s *fakeStore) FindCompanyByName(ctx context.Context, name string) (*Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.findCompanyCalls++

	if err := s.failFind[name]; err != nil {
		return nil, err
	}
	for i := range s.companies {
		if s.companies[i].Name == name {
			c := s.companies[i]
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

func (s *fakeStore) CreateCompany(ctx context.Context, d CompanyDraft) (*Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createCompanyCalls++

	if err := s.failCreateCompany[d.Name]; err != nil {
		return nil, err
	}
	c := companyFromDraft(s.id("co"), d)
	s.companies = append(s.companies, c)
	return &c, nil
}

func (s *fakeStore) CreateCompanies(ctx context.Context, ds []CompanyDraft) ([]Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.batch(len(ds)); err != nil {
		return nil, err
	}

	out := make([]Company, 0, len(ds))
	for _, d := range ds {
		out = append(out, companyFromDraft(s.id("co"), d))
	}
	s.companies = append(s.companies, out...)
	return out, nil
}

func (s *fakeStore) FindContactByName(ctx context.Context, name string) (*Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.contacts {
		if s.contacts[i].Name == name {
			c := s.contacts[i]
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

func (s *fakeStore) CreateContact(ctx context.Context, d ContactDraft) (*Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := contactFromDraft(s.id("ct"), d)
	s.contacts = append(s.contacts, c)
	return &c, nil
}

func (s *fakeStore) CreateContacts(ctx context.Context, ds []ContactDraft) ([]Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.batch(len(ds)); err != nil {
		return nil, err
	}

	out := make([]Contact, 0, len(ds))
	for _, d := range ds {
		out = append(out, contactFromDraft(s.id("ct"), d))
	}
	s.contacts = append(s.contacts, out...)
	return out, nil
}

// batch records a batch call and returns the injected failure, if any.
func (s *fakeStore) batch(n int) error {
	s.batchCalls++
	s.batchSizes = append(s.batchSizes, n)
	if n == 0 {
		return errors.New("empty batch")
	}
	return s.failBatch[s.batchCalls]
}

func (s *fakeStore) companyByName(name string) (Company, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.companies {
		if c.Name == name {
			return c, true
		}
	}
	return Company{}, false
}

func companyFromDraft(id string, d CompanyDraft) Company {
	return Company{
		ID:            id,
		Name:          d.Name,
		Industry:      d.Industry,
		Website:       d.Website,
		Location:      d.Location,
		Headcount:     d.Headcount,
		AnnualRevenue: d.AnnualRevenue,
		Tags:          d.Tags,
		Visibility:    d.Visibility,
		CreatedAt:     time.Now(),
	}
}

func contactFromDraft(id string, d ContactDraft) Contact {
	return Contact{
		ID:         id,
		Name:       d.Name,
		JobTitle:   d.JobTitle,
		Email:      d.Email,
		Phone:      d.Phone,
		CompanyID:  d.CompanyID,
		Tags:       d.Tags,
		Visibility: d.Visibility,
		CreatedAt:  time.Now(),
	}
}
