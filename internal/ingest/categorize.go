package ingest

import (
	"strings"

	"idx-disclosure-bot/internal/models"
)

// keywordRule pairs a category with the substrings that select it.
type keywordRule struct {
	category models.Category
	keywords []string
}

// Rule order is the tie-break: a title matching two categories resolves to
// whichever rule comes first.
var keywordRules = []keywordRule{
	{models.CategoryFinancialReport, []string{"laporan keuangan", "financial statement", "quarterly", "tahunan"}},
	{models.CategoryCorporateAction, []string{"dividen", "dividend", "stock split", "pemecahan saham", "rups", "agm"}},
	{models.CategoryRightsIssue, []string{"hmetd", "rights issue", "right issue", "penawaran umum terbatas"}},
	{models.CategoryMaterialInformation, []string{"informasi material", "material information", "keterbukaan informasi"}},
	{models.CategoryOwnership, []string{"kepemilikan saham", "perubahan kepemilikan", "ownership"}},
	{models.CategoryAcquisition, []string{"akuisisi", "acquisition", "merger", "penggabungan"}},
}

// Categorize maps a disclosure title to a category by keyword matching.
// Total function: titles matching no rule return CategoryOther.
func Categorize(title string) models.Category {
	lower := strings.ToLower(title)
	for _, rule := range keywordRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.category
			}
		}
	}
	return models.CategoryOther
}
