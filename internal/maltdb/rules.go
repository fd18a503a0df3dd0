package maltdb

import "strings"

// keywordRule maps a category whose name contains marker to the name
// keywords that select it.
type keywordRule struct {
	marker   string
	keywords []string
}

// Order matters: the first rule whose marker is in the category name wins.
var baseRules = []keywordRule{
	{marker: "Pilsner", keywords: []string{"pilsner", "pils", "lager", "2-row", "pale"}},
	{marker: "Munich", keywords: []string{"munich"}},
	{marker: "Vienna", keywords: []string{"vienna"}},
	{marker: "Wheat", keywords: []string{"wheat", "weizen"}},
	{marker: "Rye", keywords: []string{"rye"}},
}

var specialtyRules = []keywordRule{
	{marker: "Chocolate", keywords: []string{"chocolate", "carafa"}},
	{marker: "Black Patent", keywords: []string{"black", "patent", "carafa iii"}},
	{marker: "Victory", keywords: []string{"victory", "amber", "biscuit"}},
	{marker: "Special B", keywords: []string{"special b", "special w"}},
	{marker: "Acidulated", keywords: []string{"acid", "sour"}},
	{marker: "Dextrin", keywords: []string{"dextrin", "carapils", "carafoam"}},
}

var (
	crystalKeywords = []string{"crystal", "caramel", "cara"}
	smokedKeywords  = []string{"smoked", "peated", "rauch"}
)

// keywordsFor returns the keywords for a category name, or nil when no rule
// covers it. A category without keywords can never match.
func keywordsFor(rules []keywordRule, categoryName string) []string {
	for _, r := range rules {
		if strings.Contains(categoryName, r.marker) {
			return r.keywords
		}
	}
	return nil
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
