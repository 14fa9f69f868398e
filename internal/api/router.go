package api

import (
	"context"
	"net/http"
	"slices"
	"time"

	"meal-planner/internal/app"
	"meal-planner/internal/mealplan"
	"meal-planner/internal/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// PlanService is the plan lifecycle the authenticated routes expose.
type PlanService interface {
	GeneratePlan(ctx context.Context, userID, request string, weekStart time.Time) (*app.PlanView, error)
	CurrentPlan(ctx context.Context, userID string) (*app.PlanView, error)
	RecentPlans(ctx context.Context, userID string, limit int) ([]mealplan.Plan, error)
	AddMeal(ctx context.Context, userID string, meal mealplan.Meal) (*app.PlanView, error)
	RemoveMeal(ctx context.Context, userID, mealID string) (*app.PlanView, error)
	RegenerateMeal(ctx context.Context, userID, mealID, hint string) (*app.PlanView, error)
	ClipMeal(ctx context.Context, userID, url string) (*app.PlanView, error)
	AddSideDish(ctx context.Context, userID, mealID string, sd mealplan.SideDish) (*app.PlanView, error)
	SuggestSideDish(ctx context.Context, userID, mealID, hint string) (*app.PlanView, error)
	RemoveSideDish(ctx context.Context, userID, mealID, name string) (*app.PlanView, error)
	AddCocktail(ctx context.Context, userID, mealID string, c mealplan.Cocktail) (*app.PlanView, error)
	SuggestBeverages(ctx context.Context, userID, mealID string) (*app.PlanView, error)
	RemoveCocktail(ctx context.Context, userID, mealID, name string) (*app.PlanView, error)
	SetWine(ctx context.Context, userID, mealID string, w *mealplan.Wine) (*app.PlanView, error)
	SetIncludeBeverages(ctx context.Context, userID string, include bool) (*app.PlanView, error)
	AddManualItem(ctx context.Context, userID, name, quantity, category string) (*app.PlanView, error)
	RemoveManualItem(ctx context.Context, userID, itemID string) (*app.PlanView, error)
	SetItemChecked(ctx context.Context, userID, itemID string, checked bool) (*app.PlanView, error)
	ClearChecked(ctx context.Context, userID string) (*app.PlanView, error)
}

type Options struct {
	JWTSecret      string
	AllowedOrigins []string
	// DataDir is reported in the health check's disk usage.
	DataDir string
	// Webhook, when set, receives Telegram updates on POST /webhook.
	Webhook http.Handler
}

type handler struct {
	svc PlanService
}

// NewRouter wires every route. svc may be nil, in which case only the health
// check and the stateless grocery endpoint are served.
func NewRouter(svc PlanService, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	corsCfg := cors.DefaultConfig()
	if len(opts.AllowedOrigins) == 0 || slices.Contains(opts.AllowedOrigins, "*") {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = opts.AllowedOrigins
	}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"system": metrics.GetSysHealth(opts.DataDir),
		})
	})

	if opts.Webhook != nil {
		r.POST("/webhook", gin.WrapH(opts.Webhook))
	}

	v1 := r.Group("/api/v1")
	v1.POST("/grocery-list", groceryList)

	if svc == nil {
		return r
	}

	h := &handler{svc: svc}
	authed := v1.Group("", AuthMiddleware(opts.JWTSecret))
	{
		authed.GET("/plan", h.currentPlan)
		authed.POST("/plan", h.generatePlan)
		authed.PUT("/plan/beverages", h.setIncludeBeverages)
		authed.POST("/plan/clip", h.clipMeal)
		authed.GET("/plans", h.recentPlans)

		authed.POST("/plan/meals", h.addMeal)
		authed.DELETE("/plan/meals/:mealID", h.removeMeal)
		authed.POST("/plan/meals/:mealID/regenerate", h.regenerateMeal)

		authed.POST("/plan/meals/:mealID/sides", h.addSideDish)
		authed.POST("/plan/meals/:mealID/sides/suggest", h.suggestSideDish)
		authed.DELETE("/plan/meals/:mealID/sides/:name", h.removeSideDish)

		authed.POST("/plan/meals/:mealID/cocktails", h.addCocktail)
		authed.POST("/plan/meals/:mealID/beverages/suggest", h.suggestBeverages)
		authed.DELETE("/plan/meals/:mealID/cocktails/:name", h.removeCocktail)
		authed.PUT("/plan/meals/:mealID/wine", h.setWine)

		authed.POST("/grocery/items", h.addManualItem)
		authed.DELETE("/grocery/items/:itemID", h.removeManualItem)
		authed.PUT("/grocery/items/:itemID/checked", h.setItemChecked)
		authed.POST("/grocery/clear-checked", h.clearChecked)
	}

	return r
}

// respond writes body or maps err onto a status code.
func respond(c *gin.Context, status int, body any, err error) {
	switch {
	case err == nil:
		c.JSON(status, body)
	case app.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case app.IsInvalid(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
