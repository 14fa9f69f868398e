package mealplan

import (
	"errors"
	"time"
)

var (
	ErrMealNotFound     = errors.New("meal not found")
	ErrSideDishNotFound = errors.New("side dish not found")
	ErrCocktailNotFound = errors.New("cocktail not found")
)

// Ingredient is a single line of a recipe as produced by the generator.
// None of the fields are validated; quantity is free text ("2 cups", "½ tsp").
type Ingredient struct {
	Item     string `json:"item"`
	Quantity string `json:"quantity"`
	Category string `json:"category,omitempty"`
}

// Recipe is the main dish of a dinner.
type Recipe struct {
	Name         string       `json:"name"`
	Description  string       `json:"description,omitempty"`
	Ingredients  []Ingredient `json:"ingredients"`
	Instructions []string     `json:"instructions,omitempty"`
	PrepTime     string       `json:"prepTime,omitempty"`
	Servings     int          `json:"servings,omitempty"`
}

// SideDish accompanies a main dish, or stands alone in an à la carte entry.
type SideDish struct {
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Ingredients []Ingredient `json:"ingredients"`
	PrepTime    string       `json:"prepTime,omitempty"`
}

type Cocktail struct {
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Ingredients []Ingredient `json:"ingredients"`
}

// Wine is never itemized into the grocery list.
type Wine struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// BeveragePairing holds the drinks suggested for a meal. Older payloads carry a
// single "cocktail" object; both shapes decode into Cocktails.
type BeveragePairing struct {
	Cocktails []Cocktail `json:"cocktails,omitempty"`
	Wine      *Wine      `json:"wine,omitempty"`
}

// Meal is one entry of a meal plan. A meal without a main dish is an à la
// carte entry holding only side dishes or beverages.
type Meal struct {
	ID              string           `json:"id"`
	Day             string           `json:"day,omitempty"`
	MainDish        *Recipe          `json:"mainDish,omitempty"`
	SideDishes      []SideDish       `json:"sideDishes,omitempty"`
	BeveragePairing *BeveragePairing `json:"beveragePairing,omitempty"`
	Servings        int              `json:"servings,omitempty"`
	IsAlaCarte      bool             `json:"isAlaCarte"`
}

// Plan is a user's weekly meal plan.
type Plan struct {
	ID               int64     `json:"id,omitempty"`
	UserID           string    `json:"userId"`
	WeekStart        time.Time `json:"weekStart"`
	IncludeBeverages bool      `json:"includeBeverages"`
	Meals            []Meal    `json:"meals"`
	Request          string    `json:"request,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// Cocktails returns the effective cocktail list of the meal, or nil.
func (m Meal) Cocktails() []Cocktail {
	if m.BeveragePairing == nil {
		return nil
	}
	return m.BeveragePairing.Cocktails
}

// Title is the name shown for the meal: the main dish, or the first dish of an
// à la carte entry.
func (m Meal) Title() string {
	names := m.DishNames()
	if len(names) == 0 {
		return "Untitled meal"
	}
	return names[0]
}

// DishNames lists every named dish of the meal in display order.
func (m Meal) DishNames() []string {
	var names []string
	if m.MainDish != nil && m.MainDish.Name != "" {
		names = append(names, m.MainDish.Name)
	}
	for _, sd := range m.SideDishes {
		if sd.Name != "" {
			names = append(names, sd.Name)
		}
	}
	for _, c := range m.Cocktails() {
		if c.Name != "" {
			names = append(names, c.Name)
		}
	}
	return names
}

// GetNextMonday returns midnight UTC of the Monday following t. A Monday input
// yields the Monday one week later.
func GetNextMonday(t time.Time) time.Time {
	t = t.UTC()
	days := (int(time.Monday) - int(t.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	next := t.AddDate(0, 0, days)
	return time.Date(next.Year(), next.Month(), next.Day(), 0, 0, 0, 0, time.UTC)
}
