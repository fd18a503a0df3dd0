package maltdb

import "strings"

const (
	defaultUsage              = "Standard 1:1 replacement"
	maxAlternativesPerProduct = 3
	maxEquivalents            = 5
)

// Equivalent is one alternative product from another maltster.
type Equivalent struct {
	Manufacturer string `json:"manufacturer"`
	Alternative  string `json:"alternative"`
}

// Technical is rough reference data for the grain.
type Technical struct {
	DiastaticPower     string `json:"diastaticPower"`
	MaxBatchPercentage string `json:"maxBatchPercentage"`
}

// Advice is the substitution guidance shown next to a fermentable.
type Advice struct {
	FlavorImpact            string       `json:"flavorImpact,omitempty"`
	Usage                   string       `json:"usage,omitempty"`
	Notes                   string       `json:"notes,omitempty"`
	ManufacturerEquivalents []Equivalent `json:"manufacturerEquivalents"`
	TechnicalData           *Technical   `json:"technicalData,omitempty"`
}

// Advise builds advice for g. Sub-tier lookup tries crystal/caramel first,
// then base malts, then specialty malts.
func (t *Table) Advise(g Grain) Advice {
	var adv Advice
	if tier, ok := t.adviceTier(g); ok {
		adv.FlavorImpact = tier.FlavorImpact
		if adv.FlavorImpact == "" {
			adv.FlavorImpact = tier.Notes
		}
		adv.Usage = tier.Usage
		if adv.Usage == "" {
			adv.Usage = defaultUsage
		}
		adv.Notes = tier.Notes
	}
	adv.ManufacturerEquivalents = t.Equivalents(g.Name)
	adv.TechnicalData = t.Technical(g.Color, g.GrainCategory)
	return adv
}

func (t *Table) adviceTier(g Grain) (SubTier, bool) {
	name := strings.ToLower(g.Name)
	category := strings.ToLower(g.GrainCategory)

	if containsAny(category, crystalKeywords) || containsAny(name, crystalKeywords) {
		if tier, ok := t.CrystalCaramel.tierFor(g.Color); ok {
			return tier, true
		}
	}
	for _, cat := range t.BaseMalts {
		if containsAny(name, keywordsFor(baseRules, cat.Name)) {
			if tier, ok := cat.tierFor(g.Color); ok {
				return tier, true
			}
		}
	}
	for _, cat := range t.SpecialtyMalts {
		if containsAny(name, keywordsFor(specialtyRules, cat.Name)) {
			if tier, ok := cat.tierFor(g.Color); ok {
				return tier, true
			}
		}
	}
	return SubTier{}, false
}

// Equivalents lists alternatives for products matching grainName: the name
// contains the product name, or the product name contains the grain name's
// first word. At most three alternatives per product and five overall.
func (t *Table) Equivalents(grainName string) []Equivalent {
	out := []Equivalent{}
	name := strings.ToLower(strings.TrimSpace(grainName))
	if name == "" {
		return out
	}
	firstWord := strings.Fields(name)[0]

	for _, m := range t.ManufacturerEquivalents {
		for _, p := range m.Products {
			product := strings.ToLower(p.Name)
			if !strings.Contains(name, product) && !strings.Contains(product, firstWord) {
				continue
			}
			alts := p.Alternatives
			if len(alts) > maxAlternativesPerProduct {
				alts = alts[:maxAlternativesPerProduct]
			}
			for _, alt := range alts {
				out = append(out, Equivalent{Manufacturer: m.Manufacturer, Alternative: alt})
			}
		}
	}
	if len(out) > maxEquivalents {
		out = out[:maxEquivalents]
	}
	return out
}

// Technical estimates diastatic power and a sensible maximum share of the
// grist. It returns nil when the table carries no diastatic power ranges.
func (t *Table) Technical(color float64, grainCategory string) *Technical {
	ranges := t.TechnicalData.DiastaticPower.Ranges
	if len(ranges) == 0 {
		return nil
	}
	category := strings.ToLower(grainCategory)

	tier := "low"
	switch {
	case containsAny(category, []string{"base", "pilsner", "pale"}):
		tier = "high"
	case containsAny(category, []string{"munich", "vienna"}):
		tier = "medium"
	case color > 200:
		tier = "none"
	}
	power, ok := ranges[tier]
	if !ok {
		power = ranges["low"]
	}

	maxBatch := "5-15%"
	switch {
	case strings.Contains(category, "base"):
		maxBatch = "80-100%"
	case color > 500:
		maxBatch = "1-3%"
	case color > 200:
		maxBatch = "1-5%"
	case color > 100:
		maxBatch = "2-10%"
	}

	return &Technical{DiastaticPower: power, MaxBatchPercentage: maxBatch}
}
