package api

import (
	"encoding/json"
	"net/http"

	"meal-planner/internal/grocery"
	"meal-planner/internal/mealplan"

	"github.com/gin-gonic/gin"
)

const (
	formatCategorized = "categorized"
	formatFlat        = "flat"
)

type groceryListRequest struct {
	Meals            json.RawMessage `json:"meals"`
	IncludeBeverages bool            `json:"includeBeverages"`
	Format           string          `json:"format"`
	Previous         *grocery.List   `json:"previous"`
}

// groceryList aggregates the posted meals without touching any stored state.
func groceryList(c *gin.Context) {
	var req groceryListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if !mealplan.IsJSONArray(req.Meals) {
		badRequest(c, "meals must be an array")
		return
	}

	var meals []mealplan.Meal
	if err := json.Unmarshal(req.Meals, &meals); err != nil {
		badRequest(c, "invalid meals: "+err.Error())
		return
	}

	var previous grocery.List
	if req.Previous != nil {
		previous = *req.Previous
	}
	list := grocery.Reconcile(previous, grocery.Aggregate(meals, grocery.Options{IncludeBeverages: req.IncludeBeverages}))

	switch req.Format {
	case "", formatCategorized:
		c.JSON(http.StatusOK, list.Categorized())
	case formatFlat:
		if list.ManualItems == nil {
			list.ManualItems = []grocery.Item{}
		}
		if list.Items == nil {
			list.Items = []grocery.Item{}
		}
		c.JSON(http.StatusOK, list)
	default:
		badRequest(c, "format must be categorized or flat")
	}
}
