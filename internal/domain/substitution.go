package domain

// SubstitutionGroup is a computed suggestion to consolidate interchangeable
// fermentables from different recipes into one purchase.
type SubstitutionGroup struct {
	ID          string       `json:"id"`
	Category    string       `json:"category"`
	Ingredients []Ingredient `json:"ingredients"`
	TotalAmount float64      `json:"totalAmount"`
	Unit        string       `json:"unit"`
}

// Member returns the group's snapshot of the ingredient with the given id.
func (g SubstitutionGroup) Member(id string) (Ingredient, bool) {
	for _, ing := range g.Ingredients {
		if ing.ID == id {
			return ing, true
		}
	}
	return Ingredient{}, false
}

// SubstitutionSet is the persisted set of pending groups.
type SubstitutionSet []SubstitutionGroup

// Find returns the group with the given id.
func (s SubstitutionSet) Find(id string) (SubstitutionGroup, bool) {
	for _, g := range s {
		if g.ID == id {
			return g, true
		}
	}
	return SubstitutionGroup{}, false
}

// Without returns the set minus the group with the given id.
func (s SubstitutionSet) Without(id string) SubstitutionSet {
	out := make(SubstitutionSet, 0, len(s))
	for _, g := range s {
		if g.ID != id {
			out = append(out, g)
		}
	}
	return out
}

// Selection pairs a substitution group with the member chosen to replace it.
type Selection struct {
	SubstitutionID     string `json:"substitutionId"`
	ChosenIngredientID string `json:"chosenIngredientId"`
}
