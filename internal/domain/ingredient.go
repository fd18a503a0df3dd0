// Package domain defines the shopping-list types, errors and ports shared by
// the rest of the service. It depends on nothing else in the module.
package domain

// IngredientType classifies a shopping-list entry.
type IngredientType string

const (
	TypeFermentable IngredientType = "fermentable"
	TypeHop         IngredientType = "hop"
	TypeYeast       IngredientType = "yeast"
)

// Fixed units assigned during extraction.
const (
	UnitKilograms = "kg"
	UnitGrams     = "g"
	UnitPackages  = "pkg"
)

// Ingredient is one ingredient record. Records fresh from extraction carry the
// singular RecipeID/RecipeName; once merged into a shopping list they also
// carry the parallel RecipeIDs/RecipeNames provenance arrays.
type Ingredient struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Amount float64        `json:"amount"`
	Unit   string         `json:"unit"`
	Type   IngredientType `json:"type"`

	RecipeID    string   `json:"recipeId,omitempty"`
	RecipeName  string   `json:"recipeName,omitempty"`
	RecipeIDs   []string `json:"recipeIds,omitempty"`
	RecipeNames []string `json:"recipeNames,omitempty"`

	// Fermentables.
	Origin        string  `json:"origin,omitempty"`
	Supplier      string  `json:"supplier,omitempty"`
	Color         float64 `json:"color,omitempty"`
	GrainCategory string  `json:"grainCategory,omitempty"`

	// Hops.
	Alpha   float64 `json:"alpha,omitempty"`
	HopType string  `json:"hopType,omitempty"`

	// Yeasts.
	Laboratory string `json:"laboratory,omitempty"`
	YeastType  string `json:"yeastType,omitempty"`
	Form       string `json:"form,omitempty"`
}

// IsFermentable reports whether the record is a grain/sugar source.
func (i Ingredient) IsFermentable() bool {
	return i.Type == TypeFermentable
}

// Provenance returns the recipe ids and names that contributed to the record.
// Records that never went through aggregation report their singular fields.
func (i Ingredient) Provenance() (ids []string, names []string) {
	if i.RecipeIDs != nil {
		return i.RecipeIDs, i.RecipeNames
	}
	if i.RecipeID == "" {
		return nil, nil
	}
	return []string{i.RecipeID}, []string{i.RecipeName}
}

// SharesRecipe reports whether two records have any source recipe in common.
func (i Ingredient) SharesRecipe(other Ingredient) bool {
	ids, _ := i.Provenance()
	otherIDs, _ := other.Provenance()
	for _, a := range ids {
		for _, b := range otherIDs {
			if a == b {
				return true
			}
		}
	}
	return false
}

// Clone returns a deep copy so callers can mutate provenance safely.
func (i Ingredient) Clone() Ingredient {
	out := i
	if i.RecipeIDs != nil {
		out.RecipeIDs = append([]string(nil), i.RecipeIDs...)
	}
	if i.RecipeNames != nil {
		out.RecipeNames = append([]string(nil), i.RecipeNames...)
	}
	return out
}

// ShoppingList is the ordered persisted list, unique by ingredient id.
type ShoppingList []Ingredient

// Index returns the position of the entry with the given id, or -1.
func (l ShoppingList) Index(id string) int {
	for i, item := range l {
		if item.ID == id {
			return i
		}
	}
	return -1
}

// Clone deep-copies the list.
func (l ShoppingList) Clone() ShoppingList {
	out := make(ShoppingList, len(l))
	for i, item := range l {
		out[i] = item.Clone()
	}
	return out
}

// Fermentables returns the fermentable entries in list order.
func (l ShoppingList) Fermentables() []Ingredient {
	var out []Ingredient
	for _, item := range l {
		if item.IsFermentable() {
			out = append(out, item)
		}
	}
	return out
}
