// Package export renders the shopping list as CSV, XLSX or plain text.
package export

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/mwhite7112/woodpantry-brewlist/internal/domain"
)

const detailSep = " • "

// TypeOther collects entries whose type is not one of the known ones.
const TypeOther domain.IngredientType = "other"

// groupOrder is the fixed section order of every export.
var groupOrder = []domain.IngredientType{domain.TypeFermentable, domain.TypeHop, domain.TypeYeast, TypeOther}

var groupTitles = map[domain.IngredientType]string{
	domain.TypeFermentable: "Fermentables",
	domain.TypeHop:         "Hops",
	domain.TypeYeast:       "Yeasts",
	TypeOther:              "Other",
}

// Group is one type section of an export.
type Group struct {
	Type  domain.IngredientType
	Title string
	Items []domain.Ingredient
}

// Grouped splits list into type sections in fixed order, each sorted by
// lowercased name. Empty sections are omitted.
func Grouped(list domain.ShoppingList) []Group {
	buckets := make(map[domain.IngredientType][]domain.Ingredient)
	for _, item := range list {
		t := item.Type
		if _, known := groupTitles[t]; !known {
			t = TypeOther
		}
		buckets[t] = append(buckets[t], item)
	}

	var out []Group
	for _, t := range groupOrder {
		items := buckets[t]
		if len(items) == 0 {
			continue
		}
		sort.SliceStable(items, func(i, j int) bool {
			return strings.ToLower(items[i].Name) < strings.ToLower(items[j].Name)
		})
		out = append(out, Group{Type: t, Title: groupTitles[t], Items: items})
	}
	return out
}

// ConvertColor converts a stored SRM value into unit (EBC, SRM or Lovibond)
// with one decimal. Unknown units convert to EBC.
func ConvertColor(srm float64, unit string) string {
	switch unit {
	case "SRM":
		return strconv.FormatFloat(srm, 'f', 1, 64)
	case "Lovibond":
		return strconv.FormatFloat((srm+0.76)/1.3546, 'f', 1, 64)
	default:
		return strconv.FormatFloat(srm*1.97, 'f', 1, 64)
	}
}

// ColorSymbol is the display suffix for unit.
func ColorSymbol(unit string) string {
	switch unit {
	case "SRM":
		return "SRM"
	case "Lovibond":
		return "°L"
	default:
		return "EBC"
	}
}

// Details joins the populated descriptive fields of item.
func Details(item domain.Ingredient, colorUnit string) string {
	var parts []string
	add := func(s string) {
		if s != "" {
			parts = append(parts, s)
		}
	}
	add(item.Origin)
	add(item.Supplier)
	add(item.Laboratory)
	if item.Alpha != 0 {
		add(formatNumber(item.Alpha) + "% AA")
	}
	if item.Color != 0 && item.IsFermentable() {
		add(ConvertColor(item.Color, colorUnit) + " " + ColorSymbol(colorUnit))
	}
	add(item.HopType)
	add(item.YeastType)
	add(item.Form)
	return strings.Join(parts, detailSep)
}

// RecipeInfo reads "From: a, b" or is empty without provenance.
func RecipeInfo(item domain.Ingredient) string {
	_, names := item.Provenance()
	if len(names) == 0 {
		return ""
	}
	return "From: " + strings.Join(names, ", ")
}

// FormatAmount rounds to 2 decimals from 1 upward and to 3 below.
func FormatAmount(amount float64, unit string) string {
	scale := 100.0
	if amount < 1 {
		scale = 1000
	}
	rounded := math.Round(amount*scale) / scale
	return fmt.Sprintf("%s %s", formatNumber(rounded), unit)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
