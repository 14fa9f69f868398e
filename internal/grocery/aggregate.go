package grocery

import (
	"strings"

	"meal-planner/internal/mealplan"

	"github.com/google/uuid"
)

// Aggregate merges the ingredients of every meal into one list, keyed by
// NormalizeKey. Meals are processed in order: main dish, side dishes, then
// cocktails when opts.IncludeBeverages is set. Wine is never itemized.
//
// Items come back in first-seen order; use Categorize for display order.
// Missing sub-structures contribute nothing, so the result may be empty.
func Aggregate(meals []mealplan.Meal, opts Options) []Item {
	agg := &aggregator{index: make(map[string]int)}

	for _, meal := range meals {
		if meal.MainDish != nil {
			agg.addAll(meal.ID, meal.MainDish.Name, meal.MainDish.Ingredients, CategoryOther)
		}
		for _, sd := range meal.SideDishes {
			agg.addAll(meal.ID, sd.Name, sd.Ingredients, CategoryOther)
		}
		if opts.IncludeBeverages {
			for _, c := range meal.Cocktails() {
				agg.addAll(meal.ID, c.Name, c.Ingredients, CategoryBeverages)
			}
		}
	}

	return agg.items
}

type aggregator struct {
	index map[string]int
	items []Item
}

func (a *aggregator) addAll(mealID, dish string, ingredients []mealplan.Ingredient, fallbackCategory string) {
	for _, ing := range ingredients {
		a.add(mealID, dish, ing, fallbackCategory)
	}
}

func (a *aggregator) add(mealID, dish string, ing mealplan.Ingredient, fallbackCategory string) {
	key := NormalizeKey(ing.Item)
	if key == "" {
		return
	}

	if idx, ok := a.index[key]; ok {
		existing := &a.items[idx]
		existing.Quantity = CombineQuantities(existing.Quantity, ing.Quantity)
		existing.Sources = appendUnique(existing.Sources, dish)
		existing.MealIDs = appendUnique(existing.MealIDs, mealID)
		return
	}

	category := strings.ToLower(strings.TrimSpace(ing.Category))
	if category == "" {
		category = fallbackCategory
	}

	a.index[key] = len(a.items)
	a.items = append(a.items, Item{
		ID:       uuid.NewString(),
		Item:     strings.TrimSpace(ing.Item),
		Quantity: ing.Quantity,
		Category: category,
		Sources:  appendUnique([]string{}, dish),
		MealIDs:  appendUnique([]string{}, mealID),
	})
}

func appendUnique(list []string, v string) []string {
	if v == "" {
		return list
	}
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}
