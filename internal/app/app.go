package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"meal-planner/internal/clipper"
	"meal-planner/internal/config"
	"meal-planner/internal/grocery"
	"meal-planner/internal/llm"
	"meal-planner/internal/mealplan"
	"meal-planner/internal/planner"
	"meal-planner/internal/shopping"
)

var ErrNoPlan = errors.New("no meal plan found")

// PlanStore persists meal plans. Latest returns nil, nil when the user has
// no plan.
type PlanStore interface {
	Save(ctx context.Context, plan *mealplan.Plan) error
	Latest(ctx context.Context, userID string) (*mealplan.Plan, error)
	ExistsForWeek(ctx context.Context, userID string, weekStart time.Time) (bool, error)
	ForWeek(ctx context.Context, userID string, weekStart time.Time) (*mealplan.Plan, error)
	ListRecentByUserID(ctx context.Context, userID string, limit int) ([]mealplan.Plan, error)
}

// ListStore persists the grocery list of a plan. GetByMealPlanID returns
// nil, nil when no list was saved yet.
type ListStore interface {
	Save(ctx context.Context, mealPlanID int64, list grocery.List) (int64, error)
	GetByMealPlanID(ctx context.Context, mealPlanID int64) (*shopping.ShoppingList, error)
}

type Generator interface {
	GeneratePlan(ctx context.Context, request string, pc planner.PlanningContext) (planner.PlanResult, error)
	GenerateSideDish(ctx context.Context, main *mealplan.Recipe, existing []string, hint string, servings int) (planner.SideDishResult, error)
	GenerateBeverages(ctx context.Context, meal mealplan.Meal) (planner.BeverageResult, error)
}

type RecipeClipper interface {
	ClipURL(ctx context.Context, url string) (clipper.ClipResult, error)
}

type MetricsRecorder interface {
	RecordMeta(meta llm.AgentMeta) error
}

// PlanView is a plan together with its current grocery list.
type PlanView struct {
	Plan        *mealplan.Plan          `json:"plan"`
	Grocery     grocery.List            `json:"grocery"`
	Categorized grocery.CategorizedList `json:"categorized"`
	Wines       []grocery.WineBottle    `json:"wines"`
	Remaining   int                     `json:"remaining"`
}

// App holds the application's dependencies and owns the plan lifecycle.
// Every change to a plan rebuilds its grocery list from scratch, carrying
// checked state over by item name and keeping manual items.
type App struct {
	cfg     *config.Config
	plans   PlanStore
	lists   ListStore
	gen     Generator
	clipper RecipeClipper
	metrics MetricsRecorder
	now     func() time.Time

	mu        sync.Mutex
	userLocks map[string]*userLock
}

// userLock is dropped from App.userLocks once nobody holds or waits for it.
type userLock struct {
	mu   sync.Mutex
	refs int
}

// NewApp creates and initializes a new App instance.
func NewApp(
	cfg *config.Config,
	plans PlanStore,
	lists ListStore,
	gen Generator,
	recipeClipper RecipeClipper,
	metricsRecorder MetricsRecorder,
) *App {
	return &App{
		cfg:       cfg,
		plans:     plans,
		lists:     lists,
		gen:       gen,
		clipper:   recipeClipper,
		metrics:   metricsRecorder,
		now:       time.Now,
		userLocks: make(map[string]*userLock),
	}
}

// lockUser serializes plan mutations of one user.
func (a *App) lockUser(userID string) func() {
	a.mu.Lock()
	l, ok := a.userLocks[userID]
	if !ok {
		l = &userLock{}
		a.userLocks[userID] = l
	}
	l.refs++
	a.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		a.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(a.userLocks, userID)
		}
		a.mu.Unlock()
	}
}

func (a *App) planningContext(includeBeverages bool) planner.PlanningContext {
	return planner.PlanningContext{
		Adults:           a.cfg.DefaultAdults,
		Children:         a.cfg.DefaultChildren,
		IncludeBeverages: includeBeverages,
	}
}

func (a *App) record(meta llm.AgentMeta) {
	if a.metrics == nil {
		return
	}
	if err := a.metrics.RecordMeta(meta); err != nil {
		log.Printf("Warning: failed to record metrics for %s: %v", meta.AgentName, err)
	}
}

// NextWeekStart is the week a new plan is created for by default.
func (a *App) NextWeekStart() time.Time {
	return mealplan.GetNextMonday(a.now())
}

// PlanExistsForWeek reports whether the user already has a plan for weekStart.
func (a *App) PlanExistsForWeek(ctx context.Context, userID string, weekStart time.Time) (bool, error) {
	return a.plans.ExistsForWeek(ctx, userID, weekStart)
}

// GeneratePlan creates the plan for weekStart (next Monday when zero) from a
// free-text request. An existing plan for that week is replaced; its manual
// grocery items, checked state and beverage setting are kept.
func (a *App) GeneratePlan(ctx context.Context, userID, request string, weekStart time.Time) (*PlanView, error) {
	if weekStart.IsZero() {
		weekStart = a.NextWeekStart()
	}
	unlock := a.lockUser(userID)
	defer unlock()

	includeBeverages := a.cfg.DefaultIncludeBeverages
	existing, err := a.plans.ForWeek(ctx, userID, weekStart)
	if err != nil {
		return nil, fmt.Errorf("failed to load plan for week: %w", err)
	}
	if existing != nil {
		includeBeverages = existing.IncludeBeverages
	}

	log.Printf("Generating plan for user %s (week %s): %s", userID, weekStart.Format("2006-01-02"), request)
	result, err := a.gen.GeneratePlan(ctx, request, a.planningContext(includeBeverages))
	a.record(result.Meta)
	if err != nil {
		return nil, fmt.Errorf("failed to generate plan: %w", err)
	}

	plan := &mealplan.Plan{
		UserID:           userID,
		WeekStart:        weekStart,
		IncludeBeverages: includeBeverages,
		Request:          request,
	}
	for _, m := range result.Meals {
		plan.AddMeal(m)
	}

	return a.persist(ctx, plan)
}

// RecentPlans lists the user's latest plans, newest week first.
func (a *App) RecentPlans(ctx context.Context, userID string, limit int) ([]mealplan.Plan, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", ErrInvalidInput)
	}
	plans, err := a.plans.ListRecentByUserID(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	if plans == nil {
		plans = []mealplan.Plan{}
	}
	return plans, nil
}

// CurrentPlan returns the user's most recent plan and its grocery list.
func (a *App) CurrentPlan(ctx context.Context, userID string) (*PlanView, error) {
	plan, err := a.latest(ctx, userID)
	if err != nil {
		return nil, err
	}
	list, err := a.loadList(ctx, plan)
	if err != nil {
		return nil, err
	}
	return a.view(plan, list), nil
}

func (a *App) AddMeal(ctx context.Context, userID string, meal mealplan.Meal) (*PlanView, error) {
	return a.mutatePlan(ctx, userID, func(plan *mealplan.Plan) error {
		if meal.MainDish == nil && len(meal.SideDishes) == 0 && len(meal.Cocktails()) == 0 {
			return fmt.Errorf("%w: meal has no dishes", ErrInvalidInput)
		}
		meal.ID = ""
		if meal.Servings == 0 {
			meal.Servings = a.planningContext(false).Servings()
		}
		plan.AddMeal(meal)
		return nil
	})
}

func (a *App) RemoveMeal(ctx context.Context, userID, mealID string) (*PlanView, error) {
	return a.mutatePlan(ctx, userID, func(plan *mealplan.Plan) error {
		return plan.RemoveMeal(mealID)
	})
}

// RegenerateMeal asks the generator for a different dinner on the same day.
func (a *App) RegenerateMeal(ctx context.Context, userID, mealID, hint string) (*PlanView, error) {
	return a.mutatePlan(ctx, userID, func(plan *mealplan.Plan) error {
		current, err := plan.Meal(mealID)
		if err != nil {
			return err
		}

		pc := a.planningContext(plan.IncludeBeverages)
		if current.Day != "" {
			pc.Days = []string{current.Day}
		} else {
			pc.Days = []string{"Any day"}
		}
		for _, m := range plan.Meals {
			pc.Avoid = append(pc.Avoid, m.DishNames()...)
		}

		request := strings.TrimSpace(hint)
		if request == "" {
			request = plan.Request
		}

		result, err := a.gen.GeneratePlan(ctx, request, pc)
		a.record(result.Meta)
		if err != nil {
			return fmt.Errorf("failed to regenerate meal: %w", err)
		}
		if len(result.Meals) == 0 {
			return fmt.Errorf("failed to regenerate meal: generator returned no meals")
		}

		replacement := result.Meals[0]
		if current.Day == "" {
			replacement.Day = ""
		}
		return plan.ReplaceMeal(mealID, replacement)
	})
}

// ClipMeal imports a recipe from a web page as an unscheduled meal.
func (a *App) ClipMeal(ctx context.Context, userID, url string) (*PlanView, error) {
	if a.clipper == nil {
		return nil, fmt.Errorf("recipe clipping is not configured")
	}

	return a.mutatePlan(ctx, userID, func(plan *mealplan.Plan) error {
		result, err := a.clipper.ClipURL(ctx, url)
		a.record(result.Meta)
		if err != nil {
			return fmt.Errorf("failed to clip recipe: %w", err)
		}

		recipe := result.Recipe
		servings := recipe.Servings
		if servings == 0 {
			servings = a.planningContext(false).Servings()
		}
		plan.AddMeal(mealplan.Meal{
			MainDish:   &recipe,
			Servings:   servings,
			IsAlaCarte: true,
		})
		return nil
	})
}

func (a *App) AddSideDish(ctx context.Context, userID, mealID string, sd mealplan.SideDish) (*PlanView, error) {
	if strings.TrimSpace(sd.Name) == "" {
		return nil, fmt.Errorf("%w: side dish name is empty", ErrInvalidInput)
	}
	return a.mutatePlan(ctx, userID, func(plan *mealplan.Plan) error {
		return plan.AddSideDish(mealID, sd)
	})
}

// SuggestSideDish generates a side dish for the meal's main dish and adds it.
func (a *App) SuggestSideDish(ctx context.Context, userID, mealID, hint string) (*PlanView, error) {
	return a.mutatePlan(ctx, userID, func(plan *mealplan.Plan) error {
		meal, err := plan.Meal(mealID)
		if err != nil {
			return err
		}
		if meal.MainDish == nil {
			return fmt.Errorf("%w: meal %s has no main dish", ErrInvalidInput, mealID)
		}

		existing := make([]string, 0, len(meal.SideDishes))
		for _, sd := range meal.SideDishes {
			existing = append(existing, sd.Name)
		}

		result, err := a.gen.GenerateSideDish(ctx, meal.MainDish, existing, hint, meal.Servings)
		a.record(result.Meta)
		if err != nil {
			return fmt.Errorf("failed to suggest side dish: %w", err)
		}
		return plan.AddSideDish(mealID, result.SideDish)
	})
}

func (a *App) RemoveSideDish(ctx context.Context, userID, mealID, name string) (*PlanView, error) {
	return a.mutatePlan(ctx, userID, func(plan *mealplan.Plan) error {
		return plan.RemoveSideDish(mealID, name)
	})
}

func (a *App) AddCocktail(ctx context.Context, userID, mealID string, c mealplan.Cocktail) (*PlanView, error) {
	if strings.TrimSpace(c.Name) == "" {
		return nil, fmt.Errorf("%w: cocktail name is empty", ErrInvalidInput)
	}
	return a.mutatePlan(ctx, userID, func(plan *mealplan.Plan) error {
		return plan.AddCocktail(mealID, c)
	})
}

// SuggestBeverages replaces the meal's beverage pairing with a generated one.
func (a *App) SuggestBeverages(ctx context.Context, userID, mealID string) (*PlanView, error) {
	return a.mutatePlan(ctx, userID, func(plan *mealplan.Plan) error {
		meal, err := plan.Meal(mealID)
		if err != nil {
			return err
		}

		result, err := a.gen.GenerateBeverages(ctx, *meal)
		a.record(result.Meta)
		if err != nil {
			return fmt.Errorf("failed to suggest beverages: %w", err)
		}
		pairing := result.Pairing
		return plan.SetBeveragePairing(mealID, &pairing)
	})
}

func (a *App) RemoveCocktail(ctx context.Context, userID, mealID, name string) (*PlanView, error) {
	return a.mutatePlan(ctx, userID, func(plan *mealplan.Plan) error {
		return plan.RemoveCocktail(mealID, name)
	})
}

// SetWine sets the wine suggested for a meal. A nil or blank wine clears it.
func (a *App) SetWine(ctx context.Context, userID, mealID string, w *mealplan.Wine) (*PlanView, error) {
	if w != nil {
		w.Type = strings.TrimSpace(w.Type)
		if w.Type == "" {
			w = nil
		}
	}
	return a.mutatePlan(ctx, userID, func(plan *mealplan.Plan) error {
		return plan.SetWine(mealID, w)
	})
}

// SetIncludeBeverages toggles whether cocktail ingredients are on the list.
func (a *App) SetIncludeBeverages(ctx context.Context, userID string, include bool) (*PlanView, error) {
	return a.mutatePlan(ctx, userID, func(plan *mealplan.Plan) error {
		plan.IncludeBeverages = include
		return nil
	})
}

func (a *App) AddManualItem(ctx context.Context, userID, name, quantity, category string) (*PlanView, error) {
	item, err := grocery.NewManualItem(name, quantity, category)
	if err != nil {
		return nil, err
	}
	return a.mutateList(ctx, userID, func(list *grocery.List) error {
		list.AddManualItem(item)
		return nil
	})
}

func (a *App) RemoveManualItem(ctx context.Context, userID, itemID string) (*PlanView, error) {
	return a.mutateList(ctx, userID, func(list *grocery.List) error {
		return list.RemoveManualItem(itemID)
	})
}

func (a *App) SetItemChecked(ctx context.Context, userID, itemID string, checked bool) (*PlanView, error) {
	return a.mutateList(ctx, userID, func(list *grocery.List) error {
		return list.SetChecked(itemID, checked)
	})
}

// ToggleItem flips the checked state of the item with the given name.
func (a *App) ToggleItem(ctx context.Context, userID, name string) (grocery.Item, *PlanView, error) {
	var toggled grocery.Item
	view, err := a.mutateList(ctx, userID, func(list *grocery.List) error {
		var err error
		toggled, err = list.ToggleByName(name)
		return err
	})
	return toggled, view, err
}

func (a *App) ClearChecked(ctx context.Context, userID string) (*PlanView, error) {
	return a.mutateList(ctx, userID, func(list *grocery.List) error {
		list.ClearChecked()
		return nil
	})
}

func (a *App) latest(ctx context.Context, userID string) (*mealplan.Plan, error) {
	plan, err := a.plans.Latest(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load plan: %w", err)
	}
	if plan == nil {
		return nil, ErrNoPlan
	}
	return plan, nil
}

// mutatePlan applies fn to the user's latest plan and rebuilds its list.
func (a *App) mutatePlan(ctx context.Context, userID string, fn func(*mealplan.Plan) error) (*PlanView, error) {
	unlock := a.lockUser(userID)
	defer unlock()

	plan, err := a.latest(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := fn(plan); err != nil {
		return nil, err
	}
	return a.persist(ctx, plan)
}

// mutateList applies fn to the user's grocery list without touching the plan.
func (a *App) mutateList(ctx context.Context, userID string, fn func(*grocery.List) error) (*PlanView, error) {
	unlock := a.lockUser(userID)
	defer unlock()

	plan, err := a.latest(ctx, userID)
	if err != nil {
		return nil, err
	}
	list, err := a.loadList(ctx, plan)
	if err != nil {
		return nil, err
	}
	if err := fn(&list); err != nil {
		return nil, err
	}
	if _, err := a.lists.Save(ctx, plan.ID, list); err != nil {
		return nil, fmt.Errorf("failed to save grocery list: %w", err)
	}
	return a.view(plan, list), nil
}

// persist saves the plan and regenerates its grocery list.
func (a *App) persist(ctx context.Context, plan *mealplan.Plan) (*PlanView, error) {
	if err := a.plans.Save(ctx, plan); err != nil {
		return nil, fmt.Errorf("failed to save plan: %w", err)
	}

	var previous grocery.List
	if stored, err := a.lists.GetByMealPlanID(ctx, plan.ID); err != nil {
		return nil, fmt.Errorf("failed to load grocery list: %w", err)
	} else if stored != nil {
		previous = stored.List
	}

	list := grocery.Reconcile(previous, grocery.Aggregate(plan.Meals, grocery.Options{IncludeBeverages: plan.IncludeBeverages}))
	if _, err := a.lists.Save(ctx, plan.ID, list); err != nil {
		return nil, fmt.Errorf("failed to save grocery list: %w", err)
	}
	return a.view(plan, list), nil
}

// loadList returns the stored list of the plan, building one when none was
// saved yet.
func (a *App) loadList(ctx context.Context, plan *mealplan.Plan) (grocery.List, error) {
	stored, err := a.lists.GetByMealPlanID(ctx, plan.ID)
	if err != nil {
		return grocery.List{}, fmt.Errorf("failed to load grocery list: %w", err)
	}
	if stored == nil {
		return grocery.Build(plan.Meals, grocery.Options{IncludeBeverages: plan.IncludeBeverages}), nil
	}
	return stored.List, nil
}

func (a *App) view(plan *mealplan.Plan, list grocery.List) *PlanView {
	wines := []grocery.WineBottle{}
	if plan.IncludeBeverages {
		wines = grocery.Wines(plan.Meals)
	}
	return &PlanView{
		Plan:        plan,
		Grocery:     list,
		Categorized: list.Categorized(),
		Wines:       wines,
		Remaining:   list.Remaining(),
	}
}
