package planner

import (
	"context"
	_ "embed"
	"fmt"

	"meal-planner/internal/llm"
	"meal-planner/internal/mealplan"
)

//go:embed beverage_prompt.md
var beveragePrompt string

type beveragePromptData struct {
	MainDish *mealplan.Recipe
	Sides    []mealplan.SideDish
	Servings int
}

type BeverageResult struct {
	Pairing mealplan.BeveragePairing
	Meta    llm.AgentMeta
}

// GenerateBeverages suggests a cocktail and a wine for a meal.
func (p *Planner) GenerateBeverages(ctx context.Context, meal mealplan.Meal) (BeverageResult, error) {
	if meal.MainDish == nil && len(meal.SideDishes) == 0 {
		return BeverageResult{}, fmt.Errorf("beverage pairing needs at least one dish")
	}

	prompt, err := renderPrompt("beverages", beveragePrompt, beveragePromptData{
		MainDish: meal.MainDish,
		Sides:    meal.SideDishes,
		Servings: meal.Servings,
	})
	if err != nil {
		return BeverageResult{}, err
	}

	var raw struct {
		BeveragePairing mealplan.BeveragePairing `json:"beveragePairing"`
	}
	meta, err := p.run(ctx, "Sommelier", prompt, &raw)
	if err != nil {
		return BeverageResult{Meta: meta}, err
	}

	if len(raw.BeveragePairing.Cocktails) == 0 && raw.BeveragePairing.Wine == nil {
		return BeverageResult{Meta: meta}, fmt.Errorf("beverage response has no pairing")
	}

	return BeverageResult{Pairing: raw.BeveragePairing, Meta: meta}, nil
}
