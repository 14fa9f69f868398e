package planner

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"meal-planner/internal/llm"
	"meal-planner/internal/mealplan"
)

//go:embed side_dish_prompt.md
var sideDishPrompt string

type sideDishPromptData struct {
	MainDish *mealplan.Recipe
	Existing []string
	Hint     string
	Servings int
}

type SideDishResult struct {
	SideDish mealplan.SideDish
	Meta     llm.AgentMeta
}

// GenerateSideDish suggests one side dish that complements main. existing
// names the sides already on the plate so they are not repeated.
func (p *Planner) GenerateSideDish(ctx context.Context, main *mealplan.Recipe, existing []string, hint string, servings int) (SideDishResult, error) {
	if main == nil {
		return SideDishResult{}, fmt.Errorf("side dish needs a main dish")
	}

	prompt, err := renderPrompt("sidedish", sideDishPrompt, sideDishPromptData{
		MainDish: main,
		Existing: existing,
		Hint:     strings.TrimSpace(hint),
		Servings: servings,
	})
	if err != nil {
		return SideDishResult{}, err
	}

	var raw struct {
		SideDish mealplan.SideDish `json:"sideDish"`
	}
	meta, err := p.run(ctx, "SideDish", prompt, &raw)
	if err != nil {
		return SideDishResult{Meta: meta}, err
	}

	if strings.TrimSpace(raw.SideDish.Name) == "" {
		return SideDishResult{Meta: meta}, fmt.Errorf("side dish response has no name")
	}

	return SideDishResult{SideDish: raw.SideDish, Meta: meta}, nil
}
