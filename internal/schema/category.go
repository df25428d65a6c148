package schema

import "strings"

// DocumentCategory is the closed set of domain categories a document can
// belong to. It is determined once per upload and selects which metadata
// fields the extractor looks for.
type DocumentCategory string

const (
	CategoryInsurance   DocumentCategory = "Insurance"
	CategoryHR          DocumentCategory = "HR/Employment"
	CategoryLegal       DocumentCategory = "Legal/Compliance"
	CategoryFinancial   DocumentCategory = "Financial/Regulatory"
	CategoryGovernment  DocumentCategory = "Government/Public Policy"
	CategoryTechnical   DocumentCategory = "Technical/IT Policies"
	CategoryHealthcare  DocumentCategory = "Healthcare"
	CategoryProcurement DocumentCategory = "Procurement"
)

// Categories lists every valid document category, in declaration order.
var Categories = []DocumentCategory{
	CategoryInsurance,
	CategoryHR,
	CategoryLegal,
	CategoryFinancial,
	CategoryGovernment,
	CategoryTechnical,
	CategoryHealthcare,
	CategoryProcurement,
}

// ParseCategory matches a raw label against the closed category set.
// Matching is case-insensitive and tolerates surrounding whitespace and
// quotes, but nothing fuzzier: an unrecognized label returns false.
func ParseCategory(raw string) (DocumentCategory, bool) {
	cleaned := strings.ToLower(strings.Trim(strings.TrimSpace(raw), `"'`))
	for _, c := range Categories {
		if cleaned == strings.ToLower(string(c)) {
			return c, true
		}
	}
	return "", false
}
