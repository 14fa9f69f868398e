package grocery

import (
	"strings"

	"meal-planner/internal/mealplan"
)

// Reconcile builds the flat list for a freshly aggregated set of items.
// Checked state carries over from previous by case-insensitive display name,
// because ids change on every aggregation run. Manual items are carried over
// untouched and never matched against aggregated ones.
func Reconcile(previous List, fresh []Item) List {
	checked := make(map[string]bool)
	for _, it := range previous.Items {
		if it.Checked {
			checked[strings.ToLower(it.Item)] = true
		}
	}

	items := make([]Item, len(fresh))
	copy(items, fresh)
	for i := range items {
		if checked[strings.ToLower(items[i].Item)] {
			items[i].Checked = true
		}
	}

	manual := make([]Item, len(previous.ManualItems))
	copy(manual, previous.ManualItems)

	return List{
		Items:       Flatten(Categorize(items)),
		ManualItems: manual,
	}
}

// Build aggregates meals into a flat list with no prior state.
func Build(meals []mealplan.Meal, opts Options) List {
	return Reconcile(List{}, Aggregate(meals, opts))
}
