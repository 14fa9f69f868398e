// Package grocery turns a set of planned meals into a deduplicated,
// quantity-combined and categorized shopping list.
//
// Aggregation is a pure function of its inputs: it performs no I/O, keeps no
// state between calls and is safe for concurrent use. Item ids are generated
// fresh on every run, so callers reconcile checked state by display name
// (see Reconcile).
package grocery

import "errors"

var (
	ErrItemNotFound = errors.New("grocery item not found")
	ErrEmptyItem    = errors.New("grocery item name is empty")
)

// Item is a single line of the shopping list.
type Item struct {
	ID       string   `json:"id"`
	Item     string   `json:"item"`
	Quantity string   `json:"quantity"`
	Category string   `json:"category"`
	Checked  bool     `json:"checked"`
	Sources  []string `json:"sources"`
	MealIDs  []string `json:"mealIds"`
}

// Options controls which parts of a meal contribute ingredients.
type Options struct {
	IncludeBeverages bool `json:"includeBeverages"`
}

// List is the flat form of a grocery list. ManualItems are typed in by the user
// and never take part in aggregation.
type List struct {
	Items       []Item `json:"items"`
	ManualItems []Item `json:"manualItems"`
}
