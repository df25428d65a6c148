package schema

// Field describes one metadata field the extractor may populate.
// Every field's value is a list of short keyword strings.
type Field struct {
	Name        string
	Description string
}

// commonFields apply to every document category.
var commonFields = []Field{
	{Name: "doc_category", Description: "General pool/category e.g. Insurance, HR, Legal"},
	{Name: "doc_type", Description: "Specific type e.g. Policy doc, Contract, Handbook"},
	{Name: "jurisdiction", Description: "Applicable jurisdictions/regions/countries"},
	{Name: "effective_date", Description: "Date from which the document is effective"},
	{Name: "expiry_date", Description: "Date until which the document is valid"},
	{Name: "parties", Description: "Involved parties (e.g., employer/employee, insurer/insured)"},
	{Name: "penalties", Description: "Penalties/non-compliance consequences"},
}

// categoryFields holds the category-specific fields, keyed by category tag.
// Government and Technical documents carry only the common fields.
var categoryFields = map[DocumentCategory][]Field{
	CategoryInsurance: {
		{Name: "policy_number", Description: "Policy number(s) referenced"},
		{Name: "coverage_type", Description: "Type(s) of coverage. Short keywords (1-3 words each)."},
		{Name: "exclusions", Description: "Normalized keywords representing exclusions (short, 2-5 words each, not full paragraphs)"},
	},
	CategoryHR: {
		{Name: "policy_type", Description: "Kind of HR policy (leave, conduct, termination)"},
		{Name: "applicable_roles", Description: "Roles/grades the policy applies to"},
		{Name: "notice_period", Description: "Notice period(s) stated"},
	},
	CategoryLegal: {
		{Name: "clause_type", Description: "Clause type(s) (indemnity, confidentiality, arbitration)"},
		{Name: "governing_law", Description: "Governing law/forum"},
		{Name: "duration", Description: "Term/duration of the agreement"},
	},
	CategoryFinancial: {
		{Name: "section", Description: "Regulation/act sections referenced"},
		{Name: "compliance_requirement", Description: "Compliance requirements stated"},
		{Name: "reporting_frequency", Description: "Reporting cadence (quarterly, annual)"},
	},
	CategoryGovernment: nil,
	CategoryTechnical:  nil,
	CategoryHealthcare: {
		{Name: "disease", Description: "Diseases/conditions referenced"},
		{Name: "treatment_limit", Description: "Treatment limits or sublimits"},
		{Name: "validity_period", Description: "Validity/waiting periods"},
	},
	CategoryProcurement: {
		{Name: "vendor_name", Description: "Vendor/supplier names"},
		{Name: "contract_value", Description: "Contract value(s)"},
		{Name: "payment_terms", Description: "Payment terms"},
		{Name: "sla_metrics", Description: "SLA metrics/targets"},
	},
}

// FieldsFor returns the full field set (common + category-specific) for a category.
func FieldsFor(category DocumentCategory) []Field {
	fields := make([]Field, 0, len(commonFields)+len(categoryFields[category]))
	fields = append(fields, commonFields...)
	fields = append(fields, categoryFields[category]...)
	return fields
}

// FieldNames returns just the field names for a category.
func FieldNames(category DocumentCategory) []string {
	fields := FieldsFor(category)
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names
}
