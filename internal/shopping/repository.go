package shopping

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"meal-planner/internal/database"
	"meal-planner/internal/grocery"
)

// ShoppingList is the persisted grocery list of a meal plan.
type ShoppingList struct {
	ID         int64        `json:"id"`
	MealPlanID int64        `json:"mealPlanId"`
	List       grocery.List `json:"list"`
	UpdatedAt  time.Time    `json:"updatedAt"`
}

// Repository handles persistence of shopping lists.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new shopping list repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

// Save stores the list for a meal plan, replacing any previous one.
func (r *Repository) Save(ctx context.Context, mealPlanID int64, list grocery.List) (int64, error) {
	itemsJSON, err := marshalItems(list.Items)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal shopping list items: %w", err)
	}
	manualJSON, err := marshalItems(list.ManualItems)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal manual items: %w", err)
	}

	var id int64
	err = r.db.QueryRowContext(ctx, `
		INSERT INTO grocery_lists (meal_plan_id, items, manual_items, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (meal_plan_id) DO UPDATE SET
			items = excluded.items,
			manual_items = excluded.manual_items,
			updated_at = excluded.updated_at
		RETURNING id`,
		mealPlanID, itemsJSON, manualJSON, database.Timestamp(time.Now()),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to save shopping list: %w", err)
	}
	return id, nil
}

// GetByMealPlanID retrieves a shopping list by meal plan ID.
func (r *Repository) GetByMealPlanID(ctx context.Context, mealPlanID int64) (*ShoppingList, error) {
	var (
		sl                    ShoppingList
		itemsJSON, manualJSON string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, meal_plan_id, items, manual_items, updated_at FROM grocery_lists WHERE meal_plan_id = ?`,
		mealPlanID,
	).Scan(&sl.ID, &sl.MealPlanID, &itemsJSON, &manualJSON, &sl.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // No shopping list found
		}
		return nil, fmt.Errorf("failed to get shopping list by meal plan ID: %w", err)
	}

	if err := json.Unmarshal([]byte(itemsJSON), &sl.List.Items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal shopping list items: %w", err)
	}
	if err := json.Unmarshal([]byte(manualJSON), &sl.List.ManualItems); err != nil {
		return nil, fmt.Errorf("failed to unmarshal manual items: %w", err)
	}
	if sl.List.Items == nil {
		sl.List.Items = []grocery.Item{}
	}
	if sl.List.ManualItems == nil {
		sl.List.ManualItems = []grocery.Item{}
	}

	return &sl, nil
}

func marshalItems(items []grocery.Item) (string, error) {
	if items == nil {
		items = []grocery.Item{}
	}
	b, err := json.Marshal(items)
	return string(b), err
}
