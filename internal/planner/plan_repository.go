package planner

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"meal-planner/internal/database"
	"meal-planner/internal/mealplan"
)

// PlanRepository is a database-backed repository for meal plans. There is at
// most one plan per user and week.
type PlanRepository struct {
	db *sql.DB
}

// NewPlanRepository creates a new PlanRepository.
func NewPlanRepository(d *sql.DB) *PlanRepository {
	return &PlanRepository{db: d}
}

// Save inserts or replaces the plan for (UserID, WeekStart) and fills in the
// plan's ID and timestamps.
func (r *PlanRepository) Save(ctx context.Context, plan *mealplan.Plan) error {
	mealsJSON, err := json.Marshal(plan.Meals)
	if err != nil {
		return fmt.Errorf("failed to marshal meals: %w", err)
	}

	now := time.Now().UTC()
	if plan.CreatedAt.IsZero() {
		plan.CreatedAt = now
	}
	plan.UpdatedAt = now

	err = r.db.QueryRowContext(ctx, `
		INSERT INTO meal_plans (user_id, week_start, include_beverages, request, meals, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, week_start) DO UPDATE SET
			include_beverages = excluded.include_beverages,
			request = excluded.request,
			meals = excluded.meals,
			updated_at = excluded.updated_at
		RETURNING id`,
		plan.UserID,
		database.Timestamp(plan.WeekStart),
		plan.IncludeBeverages,
		plan.Request,
		string(mealsJSON),
		database.Timestamp(plan.CreatedAt),
		database.Timestamp(plan.UpdatedAt),
	).Scan(&plan.ID)
	if err != nil {
		return fmt.Errorf("failed to save meal plan for user %s: %w", plan.UserID, err)
	}
	return nil
}

// Latest returns the most recently updated plan of a user, or nil when the
// user has none.
func (r *PlanRepository) Latest(ctx context.Context, userID string) (*mealplan.Plan, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, week_start, include_beverages, request, meals, created_at, updated_at
		  FROM meal_plans
		 WHERE user_id = ?
		 ORDER BY updated_at DESC, id DESC
		 LIMIT 1`, userID)

	plan, err := scanPlan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest meal plan for user %s: %w", userID, err)
	}
	return plan, nil
}

// ForWeek returns the user's plan starting at weekStart, or nil when there is
// none.
func (r *PlanRepository) ForWeek(ctx context.Context, userID string, weekStart time.Time) (*mealplan.Plan, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, week_start, include_beverages, request, meals, created_at, updated_at
		  FROM meal_plans
		 WHERE user_id = ? AND week_start = ?`, userID, database.Timestamp(weekStart))

	plan, err := scanPlan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get meal plan for user %s: %w", userID, err)
	}
	return plan, nil
}

// ExistsForWeek reports whether the user already has a plan starting at weekStart.
func (r *PlanRepository) ExistsForWeek(ctx context.Context, userID string, weekStart time.Time) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM meal_plans WHERE user_id = ? AND week_start = ?`,
		userID, database.Timestamp(weekStart),
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check meal plan existence: %w", err)
	}
	return n > 0, nil
}

// ListRecentByUserID retrieves the N most recent meal plans for a given user.
func (r *PlanRepository) ListRecentByUserID(ctx context.Context, userID string, limit int) ([]mealplan.Plan, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, week_start, include_beverages, request, meals, created_at, updated_at
		  FROM meal_plans
		 WHERE user_id = ?
		 ORDER BY week_start DESC
		 LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent meal plans for user %s: %w", userID, err)
	}
	defer rows.Close()

	var plans []mealplan.Plan
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan meal plan: %w", err)
		}
		plans = append(plans, *plan)
	}
	return plans, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlan(row rowScanner) (*mealplan.Plan, error) {
	var (
		plan      mealplan.Plan
		mealsJSON string
	)
	if err := row.Scan(
		&plan.ID,
		&plan.UserID,
		&plan.WeekStart,
		&plan.IncludeBeverages,
		&plan.Request,
		&mealsJSON,
		&plan.CreatedAt,
		&plan.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(mealsJSON), &plan.Meals); err != nil {
		return nil, fmt.Errorf("failed to unmarshal meals of plan %d: %w", plan.ID, err)
	}
	return &plan, nil
}
