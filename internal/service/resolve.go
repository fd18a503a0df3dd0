package service

import (
	"fmt"

	"github.com/mwhite7112/woodpantry-brewlist/internal/domain"
)

// Resolve collapses group subID into one entry built from chosenID. Every
// group member leaves the list and a copy of the chosen member is appended
// carrying the group total and the members' combined provenance, each recipe
// listed once. The resolved group is dropped from the set; other groups are
// kept as they are.
func Resolve(list domain.ShoppingList, set domain.SubstitutionSet, subID, chosenID string) (domain.ShoppingList, domain.SubstitutionSet, error) {
	group, ok := set.Find(subID)
	if !ok {
		return nil, nil, fmt.Errorf("substitution %s: %w", subID, domain.ErrNotFound)
	}
	chosen, ok := group.Member(chosenID)
	if !ok {
		return nil, nil, fmt.Errorf("ingredient %s in substitution %s: %w", chosenID, subID, domain.ErrNotFound)
	}

	replacement := chosen.Clone()
	replacement.Amount = group.TotalAmount
	replacement.RecipeIDs, replacement.RecipeNames = []string{}, []string{}
	seen := make(map[string]bool)
	for _, member := range group.Ingredients {
		ids, names := member.Provenance()
		for i, id := range ids {
			if seen[id] {
				continue
			}
			seen[id] = true
			replacement.RecipeIDs = append(replacement.RecipeIDs, id)
			name := ""
			if i < len(names) {
				name = names[i]
			}
			replacement.RecipeNames = append(replacement.RecipeNames, name)
		}
	}

	next := make(domain.ShoppingList, 0, len(list))
	for _, item := range list {
		if _, member := group.Member(item.ID); !member {
			next = append(next, item.Clone())
		}
	}
	next = append(next, replacement)
	return next, set.Without(subID), nil
}
