// Package postgres provides a RecordStore backed by PostgreSQL through a
// pgx connection pool.
//
// Batch inserts stream rows with COPY inside a transaction, so a batch is
// committed whole or not at all. The schema in schema.sql is applied by
// Migrate and is safe to run repeatedly.
package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/bulkimport/internal/config"
	"github.com/JonMunkholm/bulkimport/internal/core"
)

//go:embed schema.sql
var schemaSQL string

var _ core.RecordStore = (*Store)(nil)

var (
	companyColumns = []string{"id", "name", "industry", "website", "location", "headcount", "annual_revenue", "tags", "visibility", "created_at"}
	contactColumns = []string{"id", "name", "job_title", "email", "phone", "company_id", "tags", "visibility", "created_at"}
)

const (
	selectCompanyByName = `SELECT id, name, industry, website, location, headcount, annual_revenue, tags, visibility, created_at
FROM companies WHERE name = $1 ORDER BY created_at, id LIMIT 1`

	selectContactByName = `SELECT id, name, job_title, email, phone, company_id, tags, visibility, created_at
FROM contacts WHERE name = $1 ORDER BY created_at, id LIMIT 1`

	insertCompany = `INSERT INTO companies (id, name, industry, website, location, headcount, annual_revenue, tags, visibility, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	insertContact = `INSERT INTO contacts (id, name, job_title, email, phone, company_id, tags, visibility, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
)

// Store implements core.RecordStore on a pgx pool.
type Store struct {
	pool *pgxpool.Pool
}

// New connects to cfg.URL with the configured pool limits, verifies the
// connection, and applies the schema.
func New(ctx context.Context, cfg config.StoreConfig) (*Store, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := NewFromPool(pool)
	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// NewFromPool wraps an existing pool. The caller owns the pool.
func NewFromPool(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Migrate creates the tables and indexes if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Close closes the pool.
func (s *Store) Close() {
	s.pool.Close()
}

// FindCompanyByName returns the oldest company named name.
func (s *Store) FindCompanyByName(ctx context.Context, name string) (*core.Company, error) {
	c, err := scanCompany(s.pool.QueryRow(ctx, selectCompanyByName, name))
	if err != nil {
		return nil, notFound(err)
	}
	return c, nil
}

// CreateCompany inserts one company.
func (s *Store) CreateCompany(ctx context.Context, d core.CompanyDraft) (*core.Company, error) {
	c := newCompany(d, time.Now())
	if _, err := s.pool.Exec(ctx, insertCompany, companyValues(c)...); err != nil {
		return nil, fmt.Errorf("insert company %q: %w", d.Name, err)
	}
	return &c, nil
}

// CreateCompanies copies every draft into companies in one transaction.
func (s *Store) CreateCompanies(ctx context.Context, drafts []core.CompanyDraft) ([]core.Company, error) {
	now := time.Now()
	out := make([]core.Company, len(drafts))
	for i, d := range drafts {
		out[i] = newCompany(d, now)
	}

	err := s.copyIn(ctx, "companies", companyColumns, len(out), func(i int) []any {
		return companyValues(out[i])
	})
	if err != nil {
		return nil, fmt.Errorf("insert %d companies: %w", len(out), err)
	}
	return out, nil
}

// FindContactByName returns the oldest contact named name.
func (s *Store) FindContactByName(ctx context.Context, name string) (*core.Contact, error) {
	c, err := scanContact(s.pool.QueryRow(ctx, selectContactByName, name))
	if err != nil {
		return nil, notFound(err)
	}
	return c, nil
}

// CreateContact inserts one contact.
func (s *Store) CreateContact(ctx context.Context, d core.ContactDraft) (*core.Contact, error) {
	c := newContact(d, time.Now())
	if _, err := s.pool.Exec(ctx, insertContact, contactValues(c)...); err != nil {
		return nil, fmt.Errorf("insert contact %q: %w", d.Name, err)
	}
	return &c, nil
}

// CreateContacts copies every draft into contacts in one transaction.
func (s *Store) CreateContacts(ctx context.Context, drafts []core.ContactDraft) ([]core.Contact, error) {
	now := time.Now()
	out := make([]core.Contact, len(drafts))
	for i, d := range drafts {
		out[i] = newContact(d, now)
	}

	err := s.copyIn(ctx, "contacts", contactColumns, len(out), func(i int) []any {
		return contactValues(out[i])
	})
	if err != nil {
		return nil, fmt.Errorf("insert %d contacts: %w", len(out), err)
	}
	return out, nil
}

// copyIn streams n rows into table with COPY and commits only if every
// row was accepted.
func (s *Store) copyIn(ctx context.Context, table string, columns []string, n int, row func(int) []any) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) // No-op if already committed

	copied, err := tx.CopyFrom(ctx, pgx.Identifier{table}, columns,
		pgx.CopyFromSlice(n, func(i int) ([]any, error) { return row(i), nil }))
	if err != nil {
		return err
	}
	if copied != int64(n) {
		return fmt.Errorf("copied %d of %d rows", copied, n)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return core.ErrNotFound
	}
	return err
}

func newCompany(d core.CompanyDraft, now time.Time) core.Company {
	return core.Company{
		ID:            uuid.NewString(),
		Name:          d.Name,
		Industry:      d.Industry,
		Website:       d.Website,
		Location:      d.Location,
		Headcount:     d.Headcount,
		AnnualRevenue: d.AnnualRevenue,
		Tags:          d.Tags,
		Visibility:    core.EffectiveVisibility(d.Visibility).Clone(),
		CreatedAt:     now,
	}
}

func companyValues(c core.Company) []any {
	return []any{
		toPgUUID(c.ID),
		c.Name,
		toPgText(c.Industry),
		toPgText(c.Website),
		toPgText(c.Location),
		toPgInt8(c.Headcount),
		toPgNumeric(c.AnnualRevenue),
		textArray(c.Tags),
		c.Visibility.Strings(),
		c.CreatedAt,
	}
}

func scanCompany(row pgx.Row) (*core.Company, error) {
	var (
		id                          pgtype.UUID
		c                           core.Company
		industry, website, location pgtype.Text
		headcount                   pgtype.Int8
		revenue                     pgtype.Numeric
		visibility                  []string
	)
	err := row.Scan(&id, &c.Name, &industry, &website, &location, &headcount, &revenue, &c.Tags, &visibility, &c.CreatedAt)
	if err != nil {
		return nil, err
	}

	c.ID = fromPgUUID(id)
	c.Industry = fromPgText(industry)
	c.Website = fromPgText(website)
	c.Location = fromPgText(location)
	c.Headcount = fromPgInt8(headcount)
	c.AnnualRevenue = fromPgNumeric(revenue)
	c.Visibility = tiers(visibility)
	if len(c.Tags) == 0 {
		c.Tags = nil
	}
	return &c, nil
}

func newContact(d core.ContactDraft, now time.Time) core.Contact {
	return core.Contact{
		ID:         uuid.NewString(),
		Name:       d.Name,
		JobTitle:   d.JobTitle,
		Email:      d.Email,
		Phone:      d.Phone,
		CompanyID:  d.CompanyID,
		Tags:       d.Tags,
		Visibility: core.EffectiveVisibility(d.Visibility).Clone(),
		CreatedAt:  now,
	}
}

func contactValues(c core.Contact) []any {
	return []any{
		toPgUUID(c.ID),
		c.Name,
		c.JobTitle,
		toPgText(c.Email),
		toPgText(c.Phone),
		toPgUUID(c.CompanyID),
		textArray(c.Tags),
		c.Visibility.Strings(),
		c.CreatedAt,
	}
}

func scanContact(row pgx.Row) (*core.Contact, error) {
	var (
		id, companyID pgtype.UUID
		c             core.Contact
		email, phone  pgtype.Text
		visibility    []string
	)
	err := row.Scan(&id, &c.Name, &c.JobTitle, &email, &phone, &companyID, &c.Tags, &visibility, &c.CreatedAt)
	if err != nil {
		return nil, err
	}

	c.ID = fromPgUUID(id)
	c.Email = fromPgText(email)
	c.Phone = fromPgText(phone)
	c.CompanyID = fromPgUUID(companyID)
	c.Visibility = tiers(visibility)
	if len(c.Tags) == 0 {
		c.Tags = nil
	}
	return &c, nil
}

func tiers(names []string) core.VisibilityTierSet {
	out := make(core.VisibilityTierSet, len(names))
	for i, n := range names {
		out[i] = core.Tier(n)
	}
	return out
}
