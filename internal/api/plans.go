package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"meal-planner/internal/mealplan"

	"github.com/gin-gonic/gin"
)

type generatePlanRequest struct {
	Request string `json:"request"`
	// WeekStart is a YYYY-MM-DD date; empty means next Monday.
	WeekStart string `json:"weekStart"`
}

const defaultHistoryLimit = 10

type hintRequest struct {
	Hint string `json:"hint"`
}

type clipRequest struct {
	URL string `json:"url" binding:"required"`
}

type includeBeveragesRequest struct {
	Include *bool `json:"include" binding:"required"`
}

type manualItemRequest struct {
	Item     string `json:"item" binding:"required"`
	Quantity string `json:"quantity"`
	Category string `json:"category"`
}

type checkedRequest struct {
	Checked *bool `json:"checked" binding:"required"`
}

func (h *handler) currentPlan(c *gin.Context) {
	view, err := h.svc.CurrentPlan(c.Request.Context(), currentUser(c))
	respond(c, http.StatusOK, view, err)
}

// recentPlans lists past weeks, newest first. ?limit caps the count.
func (h *handler) recentPlans(c *gin.Context) {
	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			badRequest(c, "limit must be a positive integer")
			return
		}
		limit = n
	}
	plans, err := h.svc.RecentPlans(c.Request.Context(), currentUser(c), limit)
	respond(c, http.StatusOK, plans, err)
}

func (h *handler) generatePlan(c *gin.Context) {
	var req generatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	var weekStart time.Time
	if req.WeekStart != "" {
		parsed, err := time.Parse(time.DateOnly, req.WeekStart)
		if err != nil {
			badRequest(c, fmt.Sprintf("invalid weekStart %q, use YYYY-MM-DD", req.WeekStart))
			return
		}
		weekStart = parsed
	}

	view, err := h.svc.GeneratePlan(c.Request.Context(), currentUser(c), req.Request, weekStart)
	respond(c, http.StatusCreated, view, err)
}

func (h *handler) setIncludeBeverages(c *gin.Context) {
	var req includeBeveragesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "include is required")
		return
	}
	view, err := h.svc.SetIncludeBeverages(c.Request.Context(), currentUser(c), *req.Include)
	respond(c, http.StatusOK, view, err)
}

func (h *handler) clipMeal(c *gin.Context) {
	var req clipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "url is required")
		return
	}
	view, err := h.svc.ClipMeal(c.Request.Context(), currentUser(c), req.URL)
	respond(c, http.StatusCreated, view, err)
}

func (h *handler) addMeal(c *gin.Context) {
	var meal mealplan.Meal
	if err := c.ShouldBindJSON(&meal); err != nil {
		badRequest(c, "invalid meal")
		return
	}
	view, err := h.svc.AddMeal(c.Request.Context(), currentUser(c), meal)
	respond(c, http.StatusCreated, view, err)
}

func (h *handler) removeMeal(c *gin.Context) {
	view, err := h.svc.RemoveMeal(c.Request.Context(), currentUser(c), c.Param("mealID"))
	respond(c, http.StatusOK, view, err)
}

func (h *handler) regenerateMeal(c *gin.Context) {
	var req hintRequest
	// The body is optional.
	_ = c.ShouldBindJSON(&req)
	view, err := h.svc.RegenerateMeal(c.Request.Context(), currentUser(c), c.Param("mealID"), req.Hint)
	respond(c, http.StatusOK, view, err)
}

func (h *handler) addSideDish(c *gin.Context) {
	var sd mealplan.SideDish
	if err := c.ShouldBindJSON(&sd); err != nil {
		badRequest(c, "invalid side dish")
		return
	}
	view, err := h.svc.AddSideDish(c.Request.Context(), currentUser(c), c.Param("mealID"), sd)
	respond(c, http.StatusCreated, view, err)
}

func (h *handler) suggestSideDish(c *gin.Context) {
	var req hintRequest
	_ = c.ShouldBindJSON(&req)
	view, err := h.svc.SuggestSideDish(c.Request.Context(), currentUser(c), c.Param("mealID"), req.Hint)
	respond(c, http.StatusCreated, view, err)
}

func (h *handler) removeSideDish(c *gin.Context) {
	view, err := h.svc.RemoveSideDish(c.Request.Context(), currentUser(c), c.Param("mealID"), c.Param("name"))
	respond(c, http.StatusOK, view, err)
}

func (h *handler) addCocktail(c *gin.Context) {
	var cocktail mealplan.Cocktail
	if err := c.ShouldBindJSON(&cocktail); err != nil {
		badRequest(c, "invalid cocktail")
		return
	}
	view, err := h.svc.AddCocktail(c.Request.Context(), currentUser(c), c.Param("mealID"), cocktail)
	respond(c, http.StatusCreated, view, err)
}

func (h *handler) suggestBeverages(c *gin.Context) {
	view, err := h.svc.SuggestBeverages(c.Request.Context(), currentUser(c), c.Param("mealID"))
	respond(c, http.StatusOK, view, err)
}

func (h *handler) removeCocktail(c *gin.Context) {
	view, err := h.svc.RemoveCocktail(c.Request.Context(), currentUser(c), c.Param("mealID"), c.Param("name"))
	respond(c, http.StatusOK, view, err)
}

func (h *handler) setWine(c *gin.Context) {
	var wine mealplan.Wine
	if err := c.ShouldBindJSON(&wine); err != nil {
		badRequest(c, "invalid wine")
		return
	}
	view, err := h.svc.SetWine(c.Request.Context(), currentUser(c), c.Param("mealID"), &wine)
	respond(c, http.StatusOK, view, err)
}

func (h *handler) addManualItem(c *gin.Context) {
	var req manualItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "item is required")
		return
	}
	view, err := h.svc.AddManualItem(c.Request.Context(), currentUser(c), req.Item, req.Quantity, req.Category)
	respond(c, http.StatusCreated, view, err)
}

func (h *handler) removeManualItem(c *gin.Context) {
	view, err := h.svc.RemoveManualItem(c.Request.Context(), currentUser(c), c.Param("itemID"))
	respond(c, http.StatusOK, view, err)
}

func (h *handler) setItemChecked(c *gin.Context) {
	var req checkedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "checked is required")
		return
	}
	view, err := h.svc.SetItemChecked(c.Request.Context(), currentUser(c), c.Param("itemID"), *req.Checked)
	respond(c, http.StatusOK, view, err)
}

func (h *handler) clearChecked(c *gin.Context) {
	view, err := h.svc.ClearChecked(c.Request.Context(), currentUser(c))
	respond(c, http.StatusOK, view, err)
}
