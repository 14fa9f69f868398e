package grocery

import (
	"strings"

	"meal-planner/internal/mealplan"
)

// WineBottle is one bottle to buy for a wine type suggested by the plan.
type WineBottle struct {
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	Bottles     int      `json:"bottles"`
	MealIDs     []string `json:"mealIds"`
}

// Wines lists one bottle per unique wine type (case-insensitive), in
// first-seen order. Wine never appears in the aggregated grocery items.
func Wines(meals []mealplan.Meal) []WineBottle {
	index := make(map[string]int)
	bottles := []WineBottle{}

	for _, meal := range meals {
		if meal.BeveragePairing == nil || meal.BeveragePairing.Wine == nil {
			continue
		}
		w := meal.BeveragePairing.Wine
		key := strings.ToLower(strings.TrimSpace(w.Type))
		if key == "" {
			continue
		}
		if idx, ok := index[key]; ok {
			bottles[idx].MealIDs = appendUnique(bottles[idx].MealIDs, meal.ID)
			continue
		}
		index[key] = len(bottles)
		bottles = append(bottles, WineBottle{
			Type:        strings.TrimSpace(w.Type),
			Description: w.Description,
			Bottles:     1,
			MealIDs:     appendUnique([]string{}, meal.ID),
		})
	}
	return bottles
}
