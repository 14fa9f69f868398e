package app

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"meal-planner/internal/clipper"
	"meal-planner/internal/grocery"
	"meal-planner/internal/llm"
	"meal-planner/internal/mealplan"
	"meal-planner/internal/planner"
	"meal-planner/internal/shopping"
)

type memPlans struct {
	mu     sync.Mutex
	nextID int64
	plans  map[int64]mealplan.Plan
}

func newMemPlans() *memPlans {
	return &memPlans{plans: make(map[int64]mealplan.Plan)}
}

func (m *memPlans) Save(ctx context.Context, plan *mealplan.Plan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if plan.ID == 0 {
		for id, p := range m.plans {
			if p.UserID == plan.UserID && p.WeekStart.Equal(plan.WeekStart) {
				plan.ID = id
			}
		}
	}
	if plan.ID == 0 {
		m.nextID++
		plan.ID = m.nextID
	}
	plan.UpdatedAt = time.Now()
	m.plans[plan.ID] = clonePlan(*plan)
	return nil
}

func (m *memPlans) Latest(ctx context.Context, userID string) (*mealplan.Plan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *mealplan.Plan
	for _, p := range m.plans {
		if p.UserID != userID {
			continue
		}
		if latest == nil || p.ID > latest.ID {
			cp := clonePlan(p)
			latest = &cp
		}
	}
	return latest, nil
}

func (m *memPlans) ExistsForWeek(ctx context.Context, userID string, weekStart time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.plans {
		if p.UserID == userID && p.WeekStart.Equal(weekStart) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memPlans) ForWeek(ctx context.Context, userID string, weekStart time.Time) (*mealplan.Plan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.plans {
		if p.UserID == userID && p.WeekStart.Equal(weekStart) {
			cp := clonePlan(p)
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memPlans) ListRecentByUserID(ctx context.Context, userID string, limit int) ([]mealplan.Plan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var plans []mealplan.Plan
	for _, p := range m.plans {
		if p.UserID == userID {
			plans = append(plans, clonePlan(p))
		}
	}
	sort.Slice(plans, func(i, j int) bool { return plans[i].WeekStart.After(plans[j].WeekStart) })
	if len(plans) > limit {
		plans = plans[:limit]
	}
	return plans, nil
}

// clonePlan deep-copies the meals slice so stored plans are not aliased.
func clonePlan(p mealplan.Plan) mealplan.Plan {
	meals := make([]mealplan.Meal, len(p.Meals))
	for i, m := range p.Meals {
		m.SideDishes = append([]mealplan.SideDish(nil), m.SideDishes...)
		if m.BeveragePairing != nil {
			bp := *m.BeveragePairing
			bp.Cocktails = append([]mealplan.Cocktail(nil), bp.Cocktails...)
			m.BeveragePairing = &bp
		}
		meals[i] = m
	}
	p.Meals = meals
	return p
}

type memLists struct {
	mu    sync.Mutex
	lists map[int64]grocery.List
	saves int
}

func newMemLists() *memLists {
	return &memLists{lists: make(map[int64]grocery.List)}
}

func (m *memLists) Save(ctx context.Context, mealPlanID int64, list grocery.List) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	m.lists[mealPlanID] = grocery.List{
		Items:       append([]grocery.Item{}, list.Items...),
		ManualItems: append([]grocery.Item{}, list.ManualItems...),
	}
	return mealPlanID, nil
}

func (m *memLists) GetByMealPlanID(ctx context.Context, mealPlanID int64) (*shopping.ShoppingList, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.lists[mealPlanID]
	if !ok {
		return nil, nil
	}
	return &shopping.ShoppingList{
		MealPlanID: mealPlanID,
		List: grocery.List{
			Items:       append([]grocery.Item{}, l.Items...),
			ManualItems: append([]grocery.Item{}, l.ManualItems...),
		},
	}, nil
}

type fakeGenerator struct {
	mu        sync.Mutex
	plans     [][]mealplan.Meal
	side      mealplan.SideDish
	pairing   mealplan.BeveragePairing
	err       error
	lastCtx   planner.PlanningContext
	lastReq   string
	calls     int
	sideHints []string
}

var meta = llm.AgentMeta{AgentName: "Fake", Usage: llm.TokenUsage{PromptTokens: 10, CompletionTokens: 5}}

func (f *fakeGenerator) GeneratePlan(ctx context.Context, request string, pc planner.PlanningContext) (planner.PlanResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastCtx, f.lastReq = pc, request
	if f.err != nil {
		return planner.PlanResult{Meta: meta}, f.err
	}
	if len(f.plans) == 0 {
		return planner.PlanResult{Meta: meta}, errors.New("no canned plan")
	}
	meals := f.plans[0]
	if len(f.plans) > 1 {
		f.plans = f.plans[1:]
	}
	f.calls++
	out := make([]mealplan.Meal, len(meals))
	copy(out, meals)
	return planner.PlanResult{Meals: out, Meta: meta}, nil
}

func (f *fakeGenerator) GenerateSideDish(ctx context.Context, main *mealplan.Recipe, existing []string, hint string, servings int) (planner.SideDishResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sideHints = append(f.sideHints, hint)
	if f.err != nil {
		return planner.SideDishResult{Meta: meta}, f.err
	}
	return planner.SideDishResult{SideDish: f.side, Meta: meta}, nil
}

func (f *fakeGenerator) GenerateBeverages(ctx context.Context, meal mealplan.Meal) (planner.BeverageResult, error) {
	if f.err != nil {
		return planner.BeverageResult{Meta: meta}, f.err
	}
	return planner.BeverageResult{Pairing: f.pairing, Meta: meta}, nil
}

type fakeClipper struct {
	recipe mealplan.Recipe
	err    error
}

func (f *fakeClipper) ClipURL(ctx context.Context, url string) (clipper.ClipResult, error) {
	if f.err != nil {
		return clipper.ClipResult{}, f.err
	}
	return clipper.ClipResult{Recipe: f.recipe, SourceURL: url, Meta: meta}, nil
}

type memMetrics struct {
	mu    sync.Mutex
	metas []llm.AgentMeta
}

func (m *memMetrics) RecordMeta(meta llm.AgentMeta) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metas = append(m.metas, meta)
	return nil
}
