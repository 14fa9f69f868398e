package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"meal-planner/internal/app"
	"meal-planner/internal/grocery"
	"meal-planner/internal/mealplan"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

// stubService implements PlanService. Each call records the user and returns
// err when set.
type stubService struct {
	PlanService
	err       error
	userID    string
	request   string
	weekStart time.Time
	checked   *bool
	mealID    string
	wine      *mealplan.Wine
	limit     int
}

func (s *stubService) view() (*app.PlanView, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &app.PlanView{Plan: &mealplan.Plan{UserID: s.userID}}, nil
}

func (s *stubService) CurrentPlan(ctx context.Context, userID string) (*app.PlanView, error) {
	s.userID = userID
	return s.view()
}

func (s *stubService) GeneratePlan(ctx context.Context, userID, request string, weekStart time.Time) (*app.PlanView, error) {
	s.userID, s.request, s.weekStart = userID, request, weekStart
	return s.view()
}

func (s *stubService) RemoveMeal(ctx context.Context, userID, mealID string) (*app.PlanView, error) {
	s.userID = userID
	return s.view()
}

func (s *stubService) SetItemChecked(ctx context.Context, userID, itemID string, checked bool) (*app.PlanView, error) {
	s.userID, s.checked = userID, &checked
	return s.view()
}

func (s *stubService) SetWine(ctx context.Context, userID, mealID string, w *mealplan.Wine) (*app.PlanView, error) {
	s.userID, s.mealID, s.wine = userID, mealID, w
	return s.view()
}

func (s *stubService) RecentPlans(ctx context.Context, userID string, limit int) ([]mealplan.Plan, error) {
	s.userID, s.limit = userID, limit
	if s.err != nil {
		return nil, s.err
	}
	return []mealplan.Plan{
		{ID: 2, UserID: userID, WeekStart: time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)},
		{ID: 1, UserID: userID, WeekStart: time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC)},
	}, nil
}

func setupRouter(svc PlanService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewRouter(svc, Options{JWTSecret: testSecret, DataDir: "."})
}

func doJSON(t *testing.T, r http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["error"]
}

func TestHealth(t *testing.T) {
	r := setupRouter(nil)
	w := doJSON(t, r, http.MethodGet, "/health", "", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
	assert.Contains(t, w.Body.String(), `"goroutines"`)
}

const scenarioMeals = `[
	{"id": "m1", "mainDish": {"name": "Tacos", "ingredients": [
		{"item": "Ground Beef", "quantity": "1 lb", "category": "protein"},
		{"item": "onion", "quantity": "1", "category": "produce"}]}},
	{"id": "m2", "mainDish": {"name": "Chili", "ingredients": [
		{"item": "ground beef", "quantity": "1 lb", "category": "protein"},
		{"item": "Onion", "quantity": "2", "category": "produce"}]},
	 "beveragePairing": {"cocktails": [{"name": "Paloma", "ingredients": [{"item": "tequila", "quantity": "2 oz"}]}]}}
]`

func TestGroceryList(t *testing.T) {
	r := setupRouter(nil)

	t.Run("Categorized", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/api/v1/grocery-list", `{"meals": `+scenarioMeals+`}`, "")
		require.Equal(t, http.StatusOK, w.Code)

		var list grocery.CategorizedList
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
		require.Len(t, list, 2)

		beef := list.Get(grocery.CategoryProtein)
		require.Len(t, beef, 1)
		assert.Equal(t, "2 lb", beef[0].Quantity)
		assert.Equal(t, []string{"Tacos", "Chili"}, beef[0].Sources)
		assert.Equal(t, "3", list.Get(grocery.CategoryProduce)[0].Quantity)
		assert.Empty(t, list.Get(grocery.CategoryBeverages))
	})

	t.Run("IncludeBeverages", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/api/v1/grocery-list", `{"includeBeverages": true, "meals": `+scenarioMeals+`}`, "")
		require.Equal(t, http.StatusOK, w.Code)

		var list grocery.CategorizedList
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
		require.Len(t, list.Get(grocery.CategoryBeverages), 1)
	})

	t.Run("FlatReconcilesPrevious", func(t *testing.T) {
		body := `{"format": "flat", "meals": ` + scenarioMeals + `, "previous": {
			"items": [{"id": "old", "item": "ONION", "quantity": "1", "category": "produce", "checked": true}],
			"manualItems": [{"id": "x", "item": "paper towels", "quantity": "", "category": "other", "checked": false}]
		}}`
		w := doJSON(t, r, http.MethodPost, "/api/v1/grocery-list", body, "")
		require.Equal(t, http.StatusOK, w.Code)

		var list grocery.List
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
		require.Len(t, list.Items, 2)
		for _, it := range list.Items {
			assert.Equal(t, it.Item == "onion", it.Checked, it.Item)
		}
		require.Len(t, list.ManualItems, 1)
		assert.Equal(t, "paper towels", list.ManualItems[0].Item)
	})

	t.Run("FlatEmpty", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/api/v1/grocery-list", `{"format": "flat", "meals": []}`, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"items": [], "manualItems": []}`, w.Body.String())
	})

	t.Run("MealsNotArray", func(t *testing.T) {
		for _, body := range []string{`{"meals": {"id": "m1"}}`, `{"meals": "tacos"}`, `{}`, `{"meals": null}`} {
			w := doJSON(t, r, http.MethodPost, "/api/v1/grocery-list", body, "")
			assert.Equal(t, http.StatusBadRequest, w.Code, body)
			assert.Equal(t, "meals must be an array", errorBody(t, w), body)
		}
	})

	t.Run("BadFormat", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/api/v1/grocery-list", `{"format": "pdf", "meals": []}`, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("MalformedBody", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/api/v1/grocery-list", `{"meals": [`, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestTokens(t *testing.T) {
	token, err := GenerateToken(testSecret, "user-1", time.Hour)
	require.NoError(t, err)

	userID, err := ValidateToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)

	_, err = ValidateToken("other-secret", token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := GenerateToken(testSecret, "user-1", -time.Minute)
	require.NoError(t, err)
	_, err = ValidateToken(testSecret, expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = GenerateToken(testSecret, "", time.Hour)
	assert.Error(t, err)
	_, err = GenerateToken("", "user-1", time.Hour)
	assert.Error(t, err)
}

func TestAuthMiddleware(t *testing.T) {
	svc := &stubService{}
	r := setupRouter(svc)

	t.Run("MissingHeader", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/api/v1/plan", "", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "missing authorization header", errorBody(t, w))
	})

	t.Run("WrongScheme", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/plan", nil)
		req.Header.Set("Authorization", "Token abc")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("InvalidToken", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/api/v1/plan", "", "not-a-jwt")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("ValidToken", func(t *testing.T) {
		token, err := GenerateToken(testSecret, "user-7", time.Hour)
		require.NoError(t, err)

		w := doJSON(t, r, http.MethodGet, "/api/v1/plan", "", token)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "user-7", svc.userID)
	})
}

func TestPlanRoutes(t *testing.T) {
	token, err := GenerateToken(testSecret, "user-1", time.Hour)
	require.NoError(t, err)

	t.Run("GeneratePlan", func(t *testing.T) {
		svc := &stubService{}
		r := setupRouter(svc)

		w := doJSON(t, r, http.MethodPost, "/api/v1/plan", `{"request": "vegetarian week", "weekStart": "2026-10-19"}`, token)
		require.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "vegetarian week", svc.request)
		assert.Equal(t, time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC), svc.weekStart)
	})

	t.Run("GeneratePlanDefaultsWeek", func(t *testing.T) {
		svc := &stubService{}
		r := setupRouter(svc)

		w := doJSON(t, r, http.MethodPost, "/api/v1/plan", `{"request": "anything"}`, token)
		require.Equal(t, http.StatusCreated, w.Code)
		assert.True(t, svc.weekStart.IsZero())
	})

	t.Run("GeneratePlanBadWeek", func(t *testing.T) {
		r := setupRouter(&stubService{})
		w := doJSON(t, r, http.MethodPost, "/api/v1/plan", `{"weekStart": "next monday"}`, token)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("SetItemChecked", func(t *testing.T) {
		svc := &stubService{}
		r := setupRouter(svc)

		w := doJSON(t, r, http.MethodPut, "/api/v1/grocery/items/abc/checked", `{"checked": false}`, token)
		require.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, svc.checked)
		assert.False(t, *svc.checked)

		w = doJSON(t, r, http.MethodPut, "/api/v1/grocery/items/abc/checked", `{}`, token)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("SetWine", func(t *testing.T) {
		svc := &stubService{}
		r := setupRouter(svc)

		w := doJSON(t, r, http.MethodPut, "/api/v1/plan/meals/m2/wine", `{"type": "Rioja", "description": "light red"}`, token)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "user-1", svc.userID)
		assert.Equal(t, "m2", svc.mealID)
		require.NotNil(t, svc.wine)
		assert.Equal(t, "Rioja", svc.wine.Type)

		w = doJSON(t, r, http.MethodPut, "/api/v1/plan/meals/m2/wine", `not json`, token)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		r = setupRouter(&stubService{err: mealplan.ErrMealNotFound})
		w = doJSON(t, r, http.MethodPut, "/api/v1/plan/meals/nope/wine", `{"type": "Rioja"}`, token)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("RecentPlans", func(t *testing.T) {
		svc := &stubService{}
		r := setupRouter(svc)

		w := doJSON(t, r, http.MethodGet, "/api/v1/plans", "", token)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, defaultHistoryLimit, svc.limit)

		var plans []mealplan.Plan
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &plans))
		require.Len(t, plans, 2)
		assert.Equal(t, int64(2), plans[0].ID)

		w = doJSON(t, r, http.MethodGet, "/api/v1/plans?limit=3", "", token)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 3, svc.limit)

		for _, bad := range []string{"0", "-1", "ten"} {
			w = doJSON(t, r, http.MethodGet, "/api/v1/plans?limit="+bad, "", token)
			assert.Equal(t, http.StatusBadRequest, w.Code, bad)
		}

		w = doJSON(t, r, http.MethodGet, "/api/v1/plans", "", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("ErrorMapping", func(t *testing.T) {
		tests := []struct {
			name string
			err  error
			want int
		}{
			{"NoPlan", app.ErrNoPlan, http.StatusNotFound},
			{"MealNotFound", mealplan.ErrMealNotFound, http.StatusNotFound},
			{"Invalid", app.ErrInvalidInput, http.StatusBadRequest},
			{"Other", errors.New("database is locked"), http.StatusInternalServerError},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				r := setupRouter(&stubService{err: tt.err})
				w := doJSON(t, r, http.MethodDelete, "/api/v1/plan/meals/m1", "", token)
				assert.Equal(t, tt.want, w.Code)
				if tt.want == http.StatusInternalServerError {
					assert.Equal(t, "internal error", errorBody(t, w))
				}
			})
		}
	})
}
