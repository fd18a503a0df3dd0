package service

import "github.com/mwhite7112/woodpantry-brewlist/internal/domain"

// Merge folds records into list and returns the next list; list itself is
// not modified. A record whose id is already listed adds its amount to the
// entry and its recipe to the provenance arrays when not yet attributed.
// Re-adding the same recipe therefore still increases the amount.
func Merge(list domain.ShoppingList, records []domain.Ingredient) domain.ShoppingList {
	next := list.Clone()
	for _, rec := range records {
		if i := next.Index(rec.ID); i >= 0 {
			entry := &next[i]
			entry.Amount += rec.Amount
			if entry.RecipeIDs == nil {
				entry.RecipeIDs, entry.RecipeNames = singleton(entry.RecipeID, entry.RecipeName)
			}
			if rec.RecipeID != "" && !contains(entry.RecipeIDs, rec.RecipeID) {
				entry.RecipeIDs = append(entry.RecipeIDs, rec.RecipeID)
				entry.RecipeNames = append(entry.RecipeNames, rec.RecipeName)
			}
			continue
		}
		entry := rec.Clone()
		if entry.RecipeIDs == nil {
			entry.RecipeIDs, entry.RecipeNames = singleton(rec.RecipeID, rec.RecipeName)
		}
		next = append(next, entry)
	}
	return next
}

// RemoveOne drops the entry with the given id. Other entries are untouched.
func RemoveOne(list domain.ShoppingList, id string) domain.ShoppingList {
	next := make(domain.ShoppingList, 0, len(list))
	for _, item := range list {
		if item.ID != id {
			next = append(next, item.Clone())
		}
	}
	return next
}

func singleton(id, name string) ([]string, []string) {
	if id == "" {
		return []string{}, []string{}
	}
	return []string{id}, []string{name}
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
