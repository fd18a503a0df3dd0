package service

import (
	"github.com/mwhite7112/woodpantry-brewlist/internal/clients"
	"github.com/mwhite7112/woodpantry-brewlist/internal/domain"
)

// Extract flattens a fetched recipe into typed ingredient records in the
// order fermentables, hops, yeasts. Hops that share an id within the recipe
// are summed into the first occurrence. Absent sections add nothing.
func Extract(recipe *clients.Recipe) []domain.Ingredient {
	if recipe == nil {
		return nil
	}
	out := make([]domain.Ingredient, 0, len(recipe.Fermentables)+len(recipe.Hops)+len(recipe.Yeasts))

	for _, f := range recipe.Fermentables {
		out = append(out, domain.Ingredient{
			ID:            f.ID,
			Name:          f.Name,
			Amount:        f.Amount,
			Unit:          domain.UnitKilograms,
			Type:          domain.TypeFermentable,
			Origin:        f.Origin,
			Supplier:      f.Supplier,
			Color:         f.Color,
			GrainCategory: f.GrainCategory,
			RecipeID:      recipe.ID,
			RecipeName:    recipe.Name,
		})
	}

	hopAt := make(map[string]int, len(recipe.Hops))
	for _, h := range recipe.Hops {
		if i, ok := hopAt[h.ID]; ok {
			out[i].Amount += h.Amount
			continue
		}
		hopAt[h.ID] = len(out)
		out = append(out, domain.Ingredient{
			ID:         h.ID,
			Name:       h.Name,
			Amount:     h.Amount,
			Unit:       domain.UnitGrams,
			Type:       domain.TypeHop,
			Alpha:      h.Alpha,
			HopType:    h.Type,
			Origin:     h.Origin,
			RecipeID:   recipe.ID,
			RecipeName: recipe.Name,
		})
	}

	for _, y := range recipe.Yeasts {
		unit := y.Unit
		if unit == "" {
			unit = domain.UnitPackages
		}
		out = append(out, domain.Ingredient{
			ID:         y.ID,
			Name:       y.Name,
			Amount:     y.Amount,
			Unit:       unit,
			Type:       domain.TypeYeast,
			Laboratory: y.Laboratory,
			YeastType:  y.Type,
			Form:       y.Form,
			RecipeID:   recipe.ID,
			RecipeName: recipe.Name,
		})
	}
	return out
}
