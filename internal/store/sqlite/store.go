// Package sqlite provides a RecordStore backed by an embedded SQLite file
// through GORM.
//
// # Usage
//
//	store, err := sqlite.Open("./records.db")
//	if err != nil { ... }
//	defer store.Close()
//	svc := core.NewService(store, opts)
//
// Batch inserts run in a single transaction, so a failed batch leaves no
// rows behind. Foreign keys are enforced on the connection.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/JonMunkholm/bulkimport/internal/core"
)

var _ core.RecordStore = (*Store)(nil)

// insertBatchSize keeps each INSERT under SQLite's bound-variable limit.
const insertBatchSize = 200

// companyRow is the companies table.
type companyRow struct {
	ID            string `gorm:"primaryKey;size:36"`
	Name          string `gorm:"index;size:255;not null"`
	Industry      string `gorm:"size:255"`
	Website       string `gorm:"size:500"`
	Location      string `gorm:"size:255"`
	Headcount     *int64
	AnnualRevenue *float64
	Tags          []string  `gorm:"serializer:json"`
	Visibility    []string  `gorm:"serializer:json"`
	CreatedAt     time.Time `gorm:"index"`
}

func (companyRow) TableName() string { return "companies" }

// contactRow is the contacts table.
type contactRow struct {
	ID         string      `gorm:"primaryKey;size:36"`
	Name       string      `gorm:"index;size:255;not null"`
	JobTitle   string      `gorm:"size:255;not null"`
	Email      string      `gorm:"size:255"`
	Phone      string      `gorm:"size:64"`
	CompanyID  *string     `gorm:"index;size:36"`
	Company    *companyRow `gorm:"foreignKey:CompanyID;constraint:OnDelete:SET NULL"`
	Tags       []string    `gorm:"serializer:json"`
	Visibility []string    `gorm:"serializer:json"`
	CreatedAt  time.Time   `gorm:"index"`
}

func (contactRow) TableName() string { return "contacts" }

// Store implements core.RecordStore on a GORM SQLite connection.
type Store struct {
	db *gorm.DB
}

// Open opens (or creates) the database at path and migrates the schema.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(dsn(path)), &gorm.Config{
		Logger: newLogger(os.Stderr),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	store, err := New(db)
	if err != nil {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			sqlDB.Close()
		}
		return nil, err
	}
	return store, nil
}

// newLogger writes slow queries and failed statements to w. Record-not-found
// is skipped: name lookups miss for every new company.
func newLogger(w io.Writer) logger.Interface {
	return logger.New(log.New(w, "", log.LstdFlags), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

// New wraps an open connection and migrates the schema.
func New(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&companyRow{}, &contactRow{}); err != nil {
		return nil, fmt.Errorf("migrate sqlite schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// dsn turns on foreign key enforcement unless the caller set it.
func dsn(path string) string {
	if strings.Contains(path, "_foreign_keys") || strings.Contains(path, "_fk=") {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=on"
}

// FindCompanyByName returns the oldest company named name.
func (s *Store) FindCompanyByName(ctx context.Context, name string) (*core.Company, error) {
	var row companyRow
	err := s.db.WithContext(ctx).
		Where("name = ?", name).
		Order("created_at ASC").
		First(&row).Error
	if err != nil {
		return nil, notFound(err)
	}
	c := row.toCompany()
	return &c, nil
}

// CreateCompany inserts one company.
func (s *Store) CreateCompany(ctx context.Context, d core.CompanyDraft) (*core.Company, error) {
	row := companyFromDraft(d, time.Now())
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("insert company %q: %w", d.Name, err)
	}
	c := row.toCompany()
	return &c, nil
}

// CreateCompanies inserts every draft in one transaction.
func (s *Store) CreateCompanies(ctx context.Context, drafts []core.CompanyDraft) ([]core.Company, error) {
	now := time.Now()
	rows := make([]companyRow, len(drafts))
	for i, d := range drafts {
		rows[i] = companyFromDraft(d, now)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(&rows, insertBatchSize).Error
	})
	if err != nil {
		return nil, fmt.Errorf("insert %d companies: %w", len(rows), err)
	}

	out := make([]core.Company, len(rows))
	for i := range rows {
		out[i] = rows[i].toCompany()
	}
	return out, nil
}

// FindContactByName returns the oldest contact named name.
func (s *Store) FindContactByName(ctx context.Context, name string) (*core.Contact, error) {
	var row contactRow
	err := s.db.WithContext(ctx).
		Where("name = ?", name).
		Order("created_at ASC").
		First(&row).Error
	if err != nil {
		return nil, notFound(err)
	}
	c := row.toContact()
	return &c, nil
}

// CreateContact inserts one contact.
func (s *Store) CreateContact(ctx context.Context, d core.ContactDraft) (*core.Contact, error) {
	row := contactFromDraft(d, time.Now())
	if err := s.db.WithContext(ctx).Omit("Company").Create(&row).Error; err != nil {
		return nil, fmt.Errorf("insert contact %q: %w", d.Name, err)
	}
	c := row.toContact()
	return &c, nil
}

// CreateContacts inserts every draft in one transaction.
func (s *Store) CreateContacts(ctx context.Context, drafts []core.ContactDraft) ([]core.Contact, error) {
	now := time.Now()
	rows := make([]contactRow, len(drafts))
	for i, d := range drafts {
		rows[i] = contactFromDraft(d, now)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit("Company").CreateInBatches(&rows, insertBatchSize).Error
	})
	if err != nil {
		return nil, fmt.Errorf("insert %d contacts: %w", len(rows), err)
	}

	out := make([]core.Contact, len(rows))
	for i := range rows {
		out[i] = rows[i].toContact()
	}
	return out, nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return core.ErrNotFound
	}
	return err
}

func companyFromDraft(d core.CompanyDraft, now time.Time) companyRow {
	return companyRow{
		ID:            uuid.NewString(),
		Name:          d.Name,
		Industry:      d.Industry,
		Website:       d.Website,
		Location:      d.Location,
		Headcount:     d.Headcount,
		AnnualRevenue: d.AnnualRevenue,
		Tags:          d.Tags,
		Visibility:    d.Visibility.Strings(),
		CreatedAt:     now,
	}
}

func (r companyRow) toCompany() core.Company {
	return core.Company{
		ID:            r.ID,
		Name:          r.Name,
		Industry:      r.Industry,
		Website:       r.Website,
		Location:      r.Location,
		Headcount:     r.Headcount,
		AnnualRevenue: r.AnnualRevenue,
		Tags:          r.Tags,
		Visibility:    tiers(r.Visibility),
		CreatedAt:     r.CreatedAt,
	}
}

func contactFromDraft(d core.ContactDraft, now time.Time) contactRow {
	row := contactRow{
		ID:         uuid.NewString(),
		Name:       d.Name,
		JobTitle:   d.JobTitle,
		Email:      d.Email,
		Phone:      d.Phone,
		Tags:       d.Tags,
		Visibility: d.Visibility.Strings(),
		CreatedAt:  now,
	}
	if d.CompanyID != "" {
		id := d.CompanyID
		row.CompanyID = &id
	}
	return row
}

func (r contactRow) toContact() core.Contact {
	c := core.Contact{
		ID:         r.ID,
		Name:       r.Name,
		JobTitle:   r.JobTitle,
		Email:      r.Email,
		Phone:      r.Phone,
		Tags:       r.Tags,
		Visibility: tiers(r.Visibility),
		CreatedAt:  r.CreatedAt,
	}
	if r.CompanyID != nil {
		c.CompanyID = *r.CompanyID
	}
	return c
}

func tiers(names []string) core.VisibilityTierSet {
	if len(names) == 0 {
		return nil
	}
	out := make(core.VisibilityTierSet, len(names))
	for i, n := range names {
		out[i] = core.Tier(n)
	}
	return out
}
