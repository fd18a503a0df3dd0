package maltdb

import "strings"

// Kind says which section of the table a classification came from.
type Kind string

const (
	KindBase      Kind = "base"
	KindCrystal   Kind = "crystal"
	KindSpecialty Kind = "specialty"
	KindSmoked    Kind = "smoked"
)

// Classification is the substitution category assigned to a grain.
type Classification struct {
	Category string    `json:"category"`
	Kind     Kind      `json:"kind"`
	Data     *Category `json:"-"`
}

// Grain is the subset of a fermentable that classification looks at.
type Grain struct {
	Name          string
	Color         float64
	GrainCategory string
}

// Classify assigns g to a substitution category. Sections are tried in the
// order base, crystal/caramel, specialty, smoked. ok is false when nothing
// matches, which excludes the grain from grouping.
func (t *Table) Classify(g Grain) (c Classification, ok bool) {
	name := strings.ToLower(g.Name)

	for i := range t.BaseMalts {
		cat := &t.BaseMalts[i]
		if containsAny(name, keywordsFor(baseRules, cat.Name)) && cat.ColorRange.Contains(g.Color) {
			return Classification{Category: cat.Name, Kind: KindBase, Data: cat}, true
		}
	}

	category := strings.ToLower(g.GrainCategory)
	if containsAny(category, crystalKeywords) || containsAny(name, crystalKeywords) {
		if t.CrystalCaramel.Name != "" && t.CrystalCaramel.ColorRange.Contains(g.Color) {
			return Classification{Category: t.CrystalCaramel.Name, Kind: KindCrystal, Data: &t.CrystalCaramel}, true
		}
	}

	for i := range t.SpecialtyMalts {
		cat := &t.SpecialtyMalts[i]
		if containsAny(name, keywordsFor(specialtyRules, cat.Name)) && cat.ColorRange.Contains(g.Color) {
			return Classification{Category: cat.Name, Kind: KindSpecialty, Data: cat}, true
		}
	}

	if t.SmokedMalts != nil && containsAny(name, smokedKeywords) {
		return Classification{Category: t.SmokedMalts.Name, Kind: KindSmoked, Data: t.SmokedMalts}, true
	}

	return Classification{}, false
}
