package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwhite7112/woodpantry-brewlist/internal/clients"
	"github.com/mwhite7112/woodpantry-brewlist/internal/domain"
)

func TestExtract(t *testing.T) {
	recipe := &clients.Recipe{
		ID:   "r1",
		Name: "Helles",
		Fermentables: []clients.Fermentable{
			{ID: "p1", Name: "Pilsner Malt", Amount: 5, Color: 3, GrainCategory: "Base Malt", Origin: "DE", Supplier: "Weyermann"},
		},
		Hops: []clients.Hop{
			{ID: "h1", Name: "Hallertau", Amount: 20, Alpha: 4.5, Type: "Pellet", Origin: "DE"},
			{ID: "h2", Name: "Saaz", Amount: 10, Alpha: 3.5},
			{ID: "h1", Name: "Hallertau late", Amount: 15, Alpha: 9, Type: "Leaf"},
		},
		Yeasts: []clients.Yeast{
			{ID: "y1", Name: "W-34/70", Amount: 1, Laboratory: "Fermentis", Type: "Lager", Form: "Dry"},
			{ID: "y2", Name: "Liquid Lager", Amount: 500, Unit: "ml"},
		},
	}

	got := Extract(recipe)
	require.Len(t, got, 5)

	assert.Equal(t, domain.Ingredient{
		ID: "p1", Name: "Pilsner Malt", Amount: 5, Unit: "kg", Type: domain.TypeFermentable,
		Origin: "DE", Supplier: "Weyermann", Color: 3, GrainCategory: "Base Malt",
		RecipeID: "r1", RecipeName: "Helles",
	}, got[0])

	assert.Equal(t, "h1", got[1].ID)
	assert.Equal(t, 35.0, got[1].Amount, "same hop within one recipe is summed")
	assert.Equal(t, "g", got[1].Unit)
	assert.Equal(t, 4.5, got[1].Alpha, "first occurrence keeps its metadata")
	assert.Equal(t, "Pellet", got[1].HopType)
	assert.Equal(t, "Hallertau", got[1].Name)
	assert.Equal(t, "h2", got[2].ID)

	assert.Equal(t, "pkg", got[3].Unit)
	assert.Equal(t, "Fermentis", got[3].Laboratory)
	assert.Equal(t, "Lager", got[3].YeastType)
	assert.Equal(t, "ml", got[4].Unit)
	for _, ing := range got {
		assert.Equal(t, "r1", ing.RecipeID)
		assert.Equal(t, "Helles", ing.RecipeName)
	}
}

func TestExtractMissingSections(t *testing.T) {
	assert.Empty(t, Extract(&clients.Recipe{ID: "r1", Name: "Water"}))
	assert.Nil(t, Extract(nil))
}

func rec(id, recipeID string, amount float64) domain.Ingredient {
	return domain.Ingredient{ID: id, Name: id, Amount: amount, Unit: "kg", Type: domain.TypeFermentable,
		RecipeID: recipeID, RecipeName: "Recipe " + recipeID}
}

func TestMergeBuildsProvenance(t *testing.T) {
	list := Merge(nil, []domain.Ingredient{rec("p1", "r1", 5)})
	require.Len(t, list, 1)
	assert.Equal(t, []string{"r1"}, list[0].RecipeIDs)
	assert.Equal(t, []string{"Recipe r1"}, list[0].RecipeNames)

	list = Merge(list, []domain.Ingredient{rec("p1", "r2", 2), rec("p2", "r2", 1)})
	require.Len(t, list, 2)
	assert.Equal(t, 7.0, list[0].Amount)
	assert.Equal(t, []string{"r1", "r2"}, list[0].RecipeIDs)
	assert.Equal(t, []string{"Recipe r1", "Recipe r2"}, list[0].RecipeNames)
	assert.Equal(t, "p2", list[1].ID)
}

func TestMergeInitializesArraysFromSingularFields(t *testing.T) {
	legacy := domain.ShoppingList{rec("p1", "r1", 1)}
	list := Merge(legacy, []domain.Ingredient{rec("p1", "r2", 1)})
	assert.Equal(t, []string{"r1", "r2"}, list[0].RecipeIDs)
	assert.Nil(t, legacy[0].RecipeIDs, "input list is not modified")
}

func TestReaddingSameRecipeStillAddsAmount(t *testing.T) {
	records := []domain.Ingredient{rec("p1", "r1", 5)}
	list := Merge(nil, records)
	list = Merge(list, records)

	require.Len(t, list, 1)
	assert.Equal(t, 10.0, list[0].Amount)
	assert.Equal(t, []string{"r1"}, list[0].RecipeIDs, "provenance is not duplicated")
	assert.Len(t, list[0].RecipeNames, len(list[0].RecipeIDs))
}

func TestMergeTotalsAreOrderIndependent(t *testing.T) {
	a := []domain.Ingredient{rec("p1", "r1", 5), rec("p2", "r1", 1.5), rec("h1", "r1", 0.02)}
	b := []domain.Ingredient{rec("p1", "r2", 4), rec("p3", "r2", 2), rec("h1", "r2", 0.03)}

	totals := func(l domain.ShoppingList) map[string]float64 {
		out := map[string]float64{}
		for _, item := range l {
			out[item.ID] = item.Amount
		}
		return out
	}
	ab := totals(Merge(Merge(nil, a), b))
	ba := totals(Merge(Merge(nil, b), a))
	require.Len(t, ab, 4)
	for id, amount := range ab {
		assert.InDelta(t, amount, ba[id], 1e-9, id)
	}
}

func TestRemoveOne(t *testing.T) {
	list := Merge(nil, []domain.Ingredient{rec("p1", "r1", 5), rec("p2", "r1", 1)})
	list = Merge(list, []domain.Ingredient{rec("p2", "r2", 1)})

	out := RemoveOne(list, "p1")
	require.Len(t, out, 1)
	assert.Equal(t, "p2", out[0].ID)
	assert.Equal(t, []string{"r1", "r2"}, out[0].RecipeIDs)
	assert.Len(t, RemoveOne(list, "missing"), 2)
}
