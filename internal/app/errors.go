package app

import (
	"errors"

	"meal-planner/internal/clipper"
	"meal-planner/internal/grocery"
	"meal-planner/internal/mealplan"
)

// ErrInvalidInput marks a request the caller can fix.
var ErrInvalidInput = errors.New("invalid input")

// IsNotFound reports whether err means the addressed plan, meal, dish or item
// does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNoPlan) ||
		errors.Is(err, mealplan.ErrMealNotFound) ||
		errors.Is(err, mealplan.ErrSideDishNotFound) ||
		errors.Is(err, mealplan.ErrCocktailNotFound) ||
		errors.Is(err, grocery.ErrItemNotFound)
}

// IsInvalid reports whether err was caused by the caller's input.
func IsInvalid(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, grocery.ErrEmptyItem) ||
		errors.Is(err, clipper.ErrNoRecipe)
}
