package core

// Field names shared by the entity kinds and the stores.
const (
	FieldCompanyName   = "company_name"
	FieldIndustry      = "industry"
	FieldWebsite       = "website"
	FieldHeadcount     = "headcount"
	FieldAnnualRevenue = "annual_revenue"
	FieldLocation      = "location"
	FieldTags          = "tags"

	FieldName     = "name"
	FieldJobTitle = "job_title"
	FieldEmail    = "email"
	FieldPhone    = "phone"
)

func init() {
	Register(EntityDefinition{
		Kind:  KindCompany,
		Label: "Companies",
		Fields: []FieldSpec{
			{Name: FieldCompanyName, Type: FieldText, Required: true},
			{Name: FieldIndustry, Type: FieldText},
			{Name: FieldWebsite, Type: FieldText},
			{Name: FieldHeadcount, Type: FieldInteger},
			{Name: FieldAnnualRevenue, Type: FieldDecimal},
			{Name: FieldLocation, Type: FieldText},
			{Name: FieldTags, Type: FieldList},
		},
		Build: buildCompany,
	})

	Register(EntityDefinition{
		Kind:  KindContact,
		Label: "Contacts",
		Fields: []FieldSpec{
			{Name: FieldName, Type: FieldText, Required: true},
			{Name: FieldJobTitle, Type: FieldText, Required: true},
			{Name: FieldEmail, Type: FieldText},
			{Name: FieldPhone, Type: FieldText},
			{Name: FieldCompanyName, Type: FieldText},
			{Name: FieldTags, Type: FieldList},
		},
		Build: buildContact,
	})
}

func buildCompany(v FieldValues) EntityDraft {
	return CompanyDraft{
		Name:          v.Text(FieldCompanyName),
		Industry:      v.Text(FieldIndustry),
		Website:       v.Text(FieldWebsite),
		Headcount:     v.Int(FieldHeadcount),
		AnnualRevenue: v.Decimal(FieldAnnualRevenue),
		Location:      v.Text(FieldLocation),
		Tags:          v.List(FieldTags),
	}
}

func buildContact(v FieldValues) EntityDraft {
	return ContactDraft{
		Name:        v.Text(FieldName),
		JobTitle:    v.Text(FieldJobTitle),
		Email:       v.Text(FieldEmail),
		Phone:       v.Text(FieldPhone),
		CompanyName: v.Text(FieldCompanyName),
		Tags:        v.List(FieldTags),
	}
}
