package planner

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
	"time"

	"meal-planner/internal/llm"
	"meal-planner/internal/mealplan"

	"github.com/google/uuid"
)

//go:embed plan_prompt.md
var planPrompt string

// DefaultDays is used when a PlanningContext names no days.
var DefaultDays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// PlanningContext describes the household a plan is generated for.
type PlanningContext struct {
	Adults           int
	Children         int
	ChildrenAges     []int
	Days             []string
	IncludeBeverages bool
	// Avoid lists dish names that should not be proposed again.
	Avoid []string
}

// Servings is the portion count each dinner is sized for.
func (pc PlanningContext) Servings() int {
	if n := pc.Adults + pc.Children; n > 0 {
		return n
	}
	return 1
}

func (pc PlanningContext) days() []string {
	if len(pc.Days) == 0 {
		return DefaultDays
	}
	return pc.Days
}

// Planner handles the generation of meal plans.
type Planner struct {
	textGen llm.TextGenerator
}

// NewPlanner creates a new Planner instance.
func NewPlanner(textGen llm.TextGenerator) *Planner {
	return &Planner{textGen: textGen}
}

type PlanResult struct {
	Meals []mealplan.Meal
	Meta  llm.AgentMeta
}

type planPromptData struct {
	UserRequest      string
	Adults           int
	Children         int
	ChildrenAges     []int
	Servings         int
	Days             []string
	IncludeBeverages bool
	Avoid            []string
}

// GeneratePlan asks the model for one dinner per planned day. Every returned
// meal gets a fresh id and the household's serving count.
func (p *Planner) GeneratePlan(ctx context.Context, userRequest string, pc PlanningContext) (PlanResult, error) {
	start := time.Now()
	prompt, err := renderPrompt("plan", planPrompt, planPromptData{
		UserRequest:      userRequest,
		Adults:           pc.Adults,
		Children:         pc.Children,
		ChildrenAges:     pc.ChildrenAges,
		Servings:         pc.Servings(),
		Days:             pc.days(),
		IncludeBeverages: pc.IncludeBeverages,
		Avoid:            pc.Avoid,
	})
	if err != nil {
		return PlanResult{}, err
	}

	var raw struct {
		Meals []mealplan.Meal `json:"meals"`
	}
	meta, err := p.run(ctx, "Planner", prompt, &raw)
	if err != nil {
		return PlanResult{Meta: meta}, err
	}

	meals := make([]mealplan.Meal, 0, len(raw.Meals))
	days := pc.days()
	for i, m := range raw.Meals {
		if m.MainDish == nil || strings.TrimSpace(m.MainDish.Name) == "" {
			continue
		}
		m.ID = uuid.NewString()
		m.Servings = pc.Servings()
		m.IsAlaCarte = false
		if m.Day == "" && i < len(days) {
			m.Day = days[i]
		}
		if !pc.IncludeBeverages {
			m.BeveragePairing = nil
		}
		meals = append(meals, m)
	}
	if len(meals) == 0 {
		return PlanResult{Meta: meta}, fmt.Errorf("planner returned no meals")
	}

	meta.Latency = time.Since(start)
	return PlanResult{Meals: meals, Meta: meta}, nil
}

// run sends prompt to the model and decodes the JSON answer into out.
func (p *Planner) run(ctx context.Context, agent, prompt string, out any) (llm.AgentMeta, error) {
	start := time.Now()
	resp, err := p.textGen.GenerateContent(ctx, prompt)
	if err != nil {
		return llm.AgentMeta{AgentName: agent}, fmt.Errorf("failed to generate %s response: %w", strings.ToLower(agent), err)
	}

	meta := llm.AgentMeta{
		AgentName: agent,
		Usage:     resp.Usage,
		Latency:   time.Since(start),
	}

	if err := json.Unmarshal([]byte(extractJSON(resp.Content)), out); err != nil {
		return meta, fmt.Errorf(
			"failed to parse %s response %w. Response: %s",
			strings.ToLower(agent),
			err,
			resp.Content,
		)
	}
	return meta, nil
}

func renderPrompt(name, text string, data any) (string, error) {
	tmpl, err := template.New(name).Parse(text)
	if err != nil {
		return "", fmt.Errorf("failed to parse %s prompt: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s prompt: %w", name, err)
	}

	return buf.String(), nil
}

// extractJSON strips a markdown code fence some models wrap around JSON.
func extractJSON(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
