package service

import (
	"math"

	"github.com/google/uuid"

	"github.com/mwhite7112/woodpantry-brewlist/internal/domain"
	"github.com/mwhite7112/woodpantry-brewlist/internal/maltdb"
)

// Matcher groups interchangeable fermentables. With a nil Table it runs in
// fallback mode: grains are partitioned by their raw grain category and
// compared with a tolerance relative to the first grain's color.
type Matcher struct {
	Table *maltdb.Table
	NewID func() string
}

// Classify returns the substitution category of a fermentable, or false.
// It always reports false in fallback mode.
func (m Matcher) Classify(ing domain.Ingredient) (maltdb.Classification, bool) {
	if m.Table == nil {
		return maltdb.Classification{}, false
	}
	return m.Table.Classify(grainOf(ing))
}

// Interchangeable is the fallback pairwise test. It is not symmetric: the
// tolerance is a fraction of a's color.
func Interchangeable(a, b domain.Ingredient) bool {
	if a.SharesRecipe(b) || a.GrainCategory != b.GrainCategory {
		return false
	}
	return math.Abs(a.Color-b.Color) <= a.Color*relativeTolerance(a.Color)
}

func relativeTolerance(color float64) float64 {
	switch {
	case color <= 10:
		return 0.40
	case color <= 50:
		return 0.30
	case color <= 200:
		return 0.25
	default:
		return 0.20
	}
}

// InterchangeableEnhanced is the table-backed pairwise test: both grains
// classify into the same category and their absolute color difference is
// within the tier threshold for that difference.
func InterchangeableEnhanced(table *maltdb.Table, a, b domain.Ingredient) bool {
	if a.SharesRecipe(b) {
		return false
	}
	ca, ok := table.Classify(grainOf(a))
	if !ok {
		return false
	}
	cb, ok := table.Classify(grainOf(b))
	if !ok || ca.Category != cb.Category {
		return false
	}
	diff := math.Abs(a.Color - b.Color)
	return diff <= table.ColorThreshold(diff)
}

// FindSubstitutions computes the full substitution set for list. Only
// fermentables take part. Positive pairs are unioned into disjoint sets,
// except where the union would put two grains from one recipe together, and
// every set with at least two members becomes a group.
func (m Matcher) FindSubstitutions(list domain.ShoppingList) domain.SubstitutionSet {
	fermentables := list.Fermentables()

	var (
		order   []string
		members = make(map[string][]int)
	)
	for i, f := range fermentables {
		key, ok := m.partition(f)
		if !ok {
			continue
		}
		if _, seen := members[key]; !seen {
			order = append(order, key)
		}
		members[key] = append(members[key], i)
	}

	sets := newDisjointSets(fermentables)
	for _, key := range order {
		idx := members[key]
		for x := 0; x < len(idx); x++ {
			for y := x + 1; y < len(idx); y++ {
				a, b := fermentables[idx[x]], fermentables[idx[y]]
				if m.interchangeable(a, b) {
					sets.union(idx[x], idx[y])
				}
			}
		}
	}

	newID := m.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	out := domain.SubstitutionSet{}
	for _, key := range order {
		for _, root := range sets.roots(members[key]) {
			idx := sets.members(root, members[key])
			if len(idx) < 2 {
				continue
			}
			g := domain.SubstitutionGroup{
				ID:       newID(),
				Category: key,
				Unit:     fermentables[idx[0]].Unit,
			}
			for _, i := range idx {
				g.Ingredients = append(g.Ingredients, fermentables[i].Clone())
				g.TotalAmount += fermentables[i].Amount
			}
			out = append(out, g)
		}
	}
	return out
}

func (m Matcher) partition(f domain.Ingredient) (string, bool) {
	if m.Table == nil {
		return f.GrainCategory, true
	}
	c, ok := m.Table.Classify(grainOf(f))
	return c.Category, ok
}

func (m Matcher) interchangeable(a, b domain.Ingredient) bool {
	if m.Table == nil {
		return Interchangeable(a, b)
	}
	return InterchangeableEnhanced(m.Table, a, b)
}

func grainOf(ing domain.Ingredient) maltdb.Grain {
	return maltdb.Grain{Name: ing.Name, Color: ing.Color, GrainCategory: ing.GrainCategory}
}

// disjointSets is union-find over fermentable indexes. Each root also tracks
// the recipes of its set so that unions never mix grains of one recipe.
type disjointSets struct {
	parent  []int
	recipes []map[string]bool
}

func newDisjointSets(items []domain.Ingredient) *disjointSets {
	d := &disjointSets{parent: make([]int, len(items)), recipes: make([]map[string]bool, len(items))}
	for i, item := range items {
		d.parent[i] = i
		ids, _ := item.Provenance()
		d.recipes[i] = make(map[string]bool, len(ids))
		for _, id := range ids {
			d.recipes[i][id] = true
		}
	}
	return d
}

func (d *disjointSets) find(i int) int {
	for d.parent[i] != i {
		d.parent[i] = d.parent[d.parent[i]]
		i = d.parent[i]
	}
	return i
}

// union joins the sets of a and b unless they already share a recipe.
func (d *disjointSets) union(a, b int) bool {
	ra, rb := d.find(a), d.find(b)
	if ra == rb {
		return true
	}
	for id := range d.recipes[rb] {
		if d.recipes[ra][id] {
			return false
		}
	}
	// Keep the lower index as root so groups order by first appearance.
	if rb < ra {
		ra, rb = rb, ra
	}
	d.parent[rb] = ra
	for id := range d.recipes[rb] {
		d.recipes[ra][id] = true
	}
	d.recipes[rb] = nil
	return true
}

// roots lists the distinct roots of idx in order of first appearance.
func (d *disjointSets) roots(idx []int) []int {
	seen := make(map[int]bool)
	var out []int
	for _, i := range idx {
		r := d.find(i)
		if !seen[r] {
			seen[r] = true
			out = append(out, r)
		}
	}
	return out
}

func (d *disjointSets) members(root int, idx []int) []int {
	var out []int
	for _, i := range idx {
		if d.find(i) == root {
			out = append(out, i)
		}
	}
	return out
}
