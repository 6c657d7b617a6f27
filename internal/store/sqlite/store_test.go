package sqlite

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/JonMunkholm/bulkimport/internal/core"
)

func setupTestStore(t *testing.T) (*gorm.DB, *Store) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "records.db")

	db, err := gorm.Open(sqlite.Open(dsn(dbPath)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	store, err := New(db)
	require.NoError(t, err)

	t.Cleanup(func() { store.Close() })
	return db, store
}

func TestStore_CreateAndFindCompany(t *testing.T) {
	_, store := setupTestStore(t)
	ctx := context.Background()

	revenue := 1.5
	created, err := store.CreateCompany(ctx, core.CompanyDraft{
		Name:          "Acme",
		Industry:      "Software",
		AnnualRevenue: &revenue,
		Tags:          []string{"saas", "b2b"},
		Visibility:    core.VisibilityTierSet{core.TierFree, core.TierPro},
	})
	require.NoError(t, err)
	assert.Len(t, created.ID, 36)

	found, err := store.FindCompanyByName(ctx, "Acme")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, "Software", found.Industry)
	assert.Nil(t, found.Headcount)
	require.NotNil(t, found.AnnualRevenue)
	assert.Equal(t, 1.5, *found.AnnualRevenue)
	assert.Equal(t, []string{"saas", "b2b"}, found.Tags)
	assert.Equal(t, core.VisibilityTierSet{core.TierFree, core.TierPro}, found.Visibility)
}

func TestStore_FindMissing(t *testing.T) {
	_, store := setupTestStore(t)
	ctx := context.Background()

	_, err := store.FindCompanyByName(ctx, "Nobody")
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = store.FindContactByName(ctx, "Nobody")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestStore_LoggerSkipsMisses(t *testing.T) {
	var logs bytes.Buffer
	db, err := gorm.Open(sqlite.Open(dsn(filepath.Join(t.TempDir(), "records.db"))), &gorm.Config{
		Logger: newLogger(&logs),
	})
	require.NoError(t, err)
	store, err := New(db)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	ctx := context.Background()

	_, err = store.FindCompanyByName(ctx, "NewCo")
	assert.ErrorIs(t, err, core.ErrNotFound)
	_, err = store.FindContactByName(ctx, "Nobody")
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.Empty(t, logs.String())

	_, err = store.CreateContacts(ctx, []core.ContactDraft{
		{Name: "Grace", JobTitle: "Admiral", CompanyID: "00000000-0000-0000-0000-000000000000"},
	})
	require.Error(t, err)
	assert.Contains(t, logs.String(), "FOREIGN KEY")
}

func TestStore_CreateCompaniesBatch(t *testing.T) {
	db, store := setupTestStore(t)
	ctx := context.Background()

	drafts := make([]core.CompanyDraft, insertBatchSize+5)
	for i := range drafts {
		drafts[i] = core.CompanyDraft{Name: "Co", Visibility: core.DefaultVisibility}
	}

	out, err := store.CreateCompanies(ctx, drafts)
	require.NoError(t, err)
	assert.Len(t, out, len(drafts))

	var count int64
	require.NoError(t, db.Model(&companyRow{}).Count(&count).Error)
	assert.Equal(t, int64(len(drafts)), count)
}

func TestStore_ContactsWithCompany(t *testing.T) {
	_, store := setupTestStore(t)
	ctx := context.Background()

	acme, err := store.CreateCompany(ctx, core.CompanyDraft{Name: "Acme"})
	require.NoError(t, err)

	out, err := store.CreateContacts(ctx, []core.ContactDraft{
		{Name: "Ada", JobTitle: "CTO", CompanyID: acme.ID, Email: "ada@acme.test"},
		{Name: "Grace", JobTitle: "Admiral"},
	})
	require.NoError(t, err)
	require.Len(t, out, 2)

	ada, err := store.FindContactByName(ctx, "Ada")
	require.NoError(t, err)
	assert.Equal(t, acme.ID, ada.CompanyID)
	assert.Equal(t, "ada@acme.test", ada.Email)

	grace, err := store.FindContactByName(ctx, "Grace")
	require.NoError(t, err)
	assert.Empty(t, grace.CompanyID)
}

func TestStore_ContactBatchRollsBack(t *testing.T) {
	db, store := setupTestStore(t)
	ctx := context.Background()

	_, err := store.CreateContacts(ctx, []core.ContactDraft{
		{Name: "Ada", JobTitle: "CTO"},
		{Name: "Grace", JobTitle: "Admiral", CompanyID: "00000000-0000-0000-0000-000000000000"},
	})
	require.Error(t, err)
	assert.Equal(t, "STO003", core.MapError(err).Code)

	var count int64
	require.NoError(t, db.Model(&contactRow{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestStore_WithService(t *testing.T) {
	_, store := setupTestStore(t)
	svc := core.NewService(store, core.Options{BatchSize: 1})

	report, err := svc.Submit(context.Background(), core.SubmitRequest{
		Content:    []byte("name,job_title,company_name,tags\nAda,CTO,NewCo,a;b\nGrace,CEO,NewCo,\n"),
		Kind:       core.KindContact,
		Visibility: core.VisibilityTierSet{core.TierEnterprise},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Added)
	assert.Zero(t, report.Failed)
	require.Len(t, report.CreatedParents, 1)

	parent, err := store.FindCompanyByName(context.Background(), "NewCo")
	require.NoError(t, err)
	assert.Equal(t, report.CreatedParents[0].ID, parent.ID)
	assert.Equal(t, core.DefaultVisibility, parent.Visibility)

	ada, err := store.FindContactByName(context.Background(), "Ada")
	require.NoError(t, err)
	assert.Equal(t, parent.ID, ada.CompanyID)
	assert.Equal(t, []string{"a", "b"}, ada.Tags)
	assert.Equal(t, core.VisibilityTierSet{core.TierEnterprise}, ada.Visibility)
}
