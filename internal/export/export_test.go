package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/mwhite7112/woodpantry-brewlist/internal/domain"
)

var exportDate = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

func sampleList() domain.ShoppingList {
	return domain.ShoppingList{
		{ID: "h1", Name: "Saaz", Amount: 30, Unit: "g", Type: domain.TypeHop, Alpha: 3.5, HopType: "Pellet",
			RecipeIDs: []string{"r1"}, RecipeNames: []string{"Helles"}},
		{ID: "m1", Name: "Irish Moss", Amount: 1, Unit: "pkg", Type: "misc"},
		{ID: "p2", Name: "munich Malt", Amount: 1.5, Unit: "kg", Type: domain.TypeFermentable, Color: 8},
		{ID: "p1", Name: "Pilsner Malt", Amount: 5, Unit: "kg", Type: domain.TypeFermentable, Supplier: "Weyermann", Color: 3,
			RecipeIDs: []string{"r1", "r2"}, RecipeNames: []string{"Helles", "Pils"}},
		{ID: "y1", Name: "W-34/70", Amount: 0.5, Unit: "pkg", Type: domain.TypeYeast, Laboratory: "Fermentis", YeastType: "Lager", Form: "Dry",
			RecipeID: "r2", RecipeName: "Pils"},
	}
}

func TestConvertColor(t *testing.T) {
	assert.Equal(t, "5.9", ConvertColor(3, "EBC"))
	assert.Equal(t, "3.0", ConvertColor(3, "SRM"))
	assert.Equal(t, "2.8", ConvertColor(3, "Lovibond"))
	assert.Equal(t, "5.9", ConvertColor(3, "bogus"))
	assert.Equal(t, "°L", ColorSymbol("Lovibond"))
	assert.Equal(t, "EBC", ColorSymbol(""))
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "1.23 kg", FormatAmount(1.2345, "kg"))
	assert.Equal(t, "0.123 kg", FormatAmount(0.12345, "kg"))
	assert.Equal(t, "30 g", FormatAmount(30, "g"))
}

func TestGroupedOrderAndSort(t *testing.T) {
	groups := Grouped(sampleList())
	require.Len(t, groups, 4)
	assert.Equal(t, domain.TypeFermentable, groups[0].Type)
	assert.Equal(t, "munich Malt", groups[0].Items[0].Name)
	assert.Equal(t, "Pilsner Malt", groups[0].Items[1].Name)
	assert.Equal(t, domain.TypeHop, groups[1].Type)
	assert.Equal(t, domain.TypeYeast, groups[2].Type)
	assert.Equal(t, TypeOther, groups[3].Type)
	assert.Equal(t, "Irish Moss", groups[3].Items[0].Name)
}

func TestDetailsAndRecipes(t *testing.T) {
	list := sampleList()
	assert.Equal(t, "Weyermann • 5.9 EBC", Details(list[3], "EBC"))
	assert.Equal(t, "3.5% AA • Pellet", Details(list[0], "EBC"))
	assert.Equal(t, "Fermentis • Lager • Dry", Details(list[4], "SRM"))
	assert.Equal(t, "From: Helles, Pils", RecipeInfo(list[3]))
	assert.Equal(t, "From: Pils", RecipeInfo(list[4]))
	assert.Equal(t, "", RecipeInfo(list[1]))
}

func TestRenderCSV(t *testing.T) {
	doc, err := Render(sampleList(), FormatCSV, Options{Now: exportDate})
	require.NoError(t, err)
	assert.Equal(t, "shopping-list-2026-03-14.csv", doc.Filename)
	assert.Contains(t, doc.ContentType, "text/csv")

	rows, err := csv.NewReader(bytes.NewReader(doc.Data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 6)
	assert.Equal(t, []string{"Name", "Amount", "Unit", "Type", "Details", "Recipes"}, rows[0])
	assert.Equal(t, []string{"Pilsner Malt", "5", "kg", "fermentable", "Weyermann • 5.9 EBC", "From: Helles, Pils"}, rows[2])
	assert.Equal(t, []string{"Irish Moss", "1", "pkg", "misc", "", ""}, rows[5])
}

func TestRenderCSVDoesNotReorderInput(t *testing.T) {
	list := sampleList()
	_, err := Render(list, FormatCSV, Options{Now: exportDate})
	require.NoError(t, err)
	assert.Equal(t, "h1", list[0].ID)
}

func TestRenderText(t *testing.T) {
	doc, err := Render(sampleList(), FormatText, Options{Now: exportDate, ColorUnit: "SRM"})
	require.NoError(t, err)
	assert.Equal(t, "shopping-list-2026-03-14.txt", doc.Filename)
	text := string(doc.Data)
	assert.Contains(t, text, "Generated: 2026-03-14")
	assert.Contains(t, text, "FERMENTABLES\n--------------------\n• munich Malt - 1.5 kg\n  8.0 SRM\n")
	assert.Contains(t, text, "• W-34/70 - 0.5 pkg\n  Fermentis • Lager • Dry\n  From: Pils\n")
	assert.Less(t, bytes.Index(doc.Data, []byte("HOPS")), bytes.Index(doc.Data, []byte("YEASTS")))
}

func TestRenderXLSX(t *testing.T) {
	doc, err := Render(sampleList(), FormatXLSX, Options{Now: exportDate})
	require.NoError(t, err)
	assert.Equal(t, "shopping-list-2026-03-14.xlsx", doc.Filename)

	f, err := excelize.OpenReader(bytes.NewReader(doc.Data))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 6)
	assert.Equal(t, "Name", rows[0][0])
	assert.Equal(t, "munich Malt", rows[1][0])
	assert.Equal(t, "Saaz", rows[3][0])
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatCSV, "CSV": FormatCSV, "xlsx": FormatXLSX, "txt": FormatText, "text": FormatText} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("pdf")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
