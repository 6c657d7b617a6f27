package core

import "time"

// EntityDraft is a validated, not-yet-persisted record.
type EntityDraft interface {
	Kind() EntityKind
	NaturalKey() string
	Tiers() VisibilityTierSet

	withVisibility(tiers VisibilityTierSet) EntityDraft
}

// parentReferencer is implemented by drafts that name a parent entity.
type parentReferencer interface {
	ParentName() string
	withParentID(id string) EntityDraft
}

// CompanyDraft is a company row ready to be written.
type CompanyDraft struct {
	Name          string
	Industry      string
	Website       string
	Location      string
	Headcount     *int64
	AnnualRevenue *float64
	Tags          []string
	Visibility    VisibilityTierSet
}

func (d CompanyDraft) Kind() EntityKind { return KindCompany }
func (d CompanyDraft) NaturalKey() string { return d.Name }
func (d CompanyDraft) Tiers() VisibilityTierSet { return d.Visibility }

func (d CompanyDraft) withVisibility(tiers VisibilityTierSet) EntityDraft {
	d.Visibility = tiers.Clone()
	return d
}

// ContactDraft is a contact row ready to be written. CompanyName is the raw
// reference from the file; CompanyID is filled by the resolver.
type ContactDraft struct {
	Name        string
	JobTitle    string
	Email       string
	Phone       string
	CompanyName string
	CompanyID   string
	Tags        []string
	Visibility  VisibilityTierSet
}

func (d ContactDraft) Kind() EntityKind { return KindContact }
func (d ContactDraft) NaturalKey() string { return d.Name }
func (d ContactDraft) Tiers() VisibilityTierSet { return d.Visibility }
func (d ContactDraft) ParentName() string { return d.CompanyName }

func (d ContactDraft) withVisibility(tiers VisibilityTierSet) EntityDraft {
	d.Visibility = tiers.Clone()
	return d
}

func (d ContactDraft) withParentID(id string) EntityDraft {
	d.CompanyID = id
	return d
}

// Company is a persisted company record.
type Company struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Industry      string            `json:"industry,omitempty"`
	Website       string            `json:"website,omitempty"`
	Location      string            `json:"location,omitempty"`
	Headcount     *int64            `json:"headcount,omitempty"`
	AnnualRevenue *float64          `json:"annualRevenue,omitempty"`
	Tags          []string          `json:"tags,omitempty"`
	Visibility    VisibilityTierSet `json:"visibility"`
	CreatedAt     time.Time         `json:"createdAt"`
}

// Contact is a persisted contact record. CompanyID is empty when the row
// named no company.
type Contact struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	JobTitle   string            `json:"jobTitle"`
	Email      string            `json:"email,omitempty"`
	Phone      string            `json:"phone,omitempty"`
	CompanyID  string            `json:"companyId,omitempty"`
	Tags       []string          `json:"tags,omitempty"`
	Visibility VisibilityTierSet `json:"visibility"`
	CreatedAt  time.Time         `json:"createdAt"`
}
