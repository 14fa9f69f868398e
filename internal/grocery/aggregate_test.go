package grocery

import (
	"encoding/json"
	"strings"
	"testing"

	"meal-planner/internal/mealplan"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ing(item, qty, category string) mealplan.Ingredient {
	return mealplan.Ingredient{Item: item, Quantity: qty, Category: category}
}

func tacoNight() []mealplan.Meal {
	return []mealplan.Meal{
		{
			ID: "m1",
			MainDish: &mealplan.Recipe{Name: "Tacos", Ingredients: []mealplan.Ingredient{
				ing("Ground Beef", "1 lb", "protein"),
				ing("onion", "1", "produce"),
			}},
		},
		{
			ID: "m2",
			MainDish: &mealplan.Recipe{Name: "Chili", Ingredients: []mealplan.Ingredient{
				ing("ground beef", "1 lb", "protein"),
				ing("Onion", "2", "produce"),
			}},
		},
	}
}

func withCocktail() []mealplan.Meal {
	return []mealplan.Meal{
		{
			ID: "m1",
			MainDish: &mealplan.Recipe{Name: "Fish Tacos", Ingredients: []mealplan.Ingredient{
				ing("cod", "1 lb", "protein"),
				ing("lime", "2", "produce"),
			}},
			SideDishes: []mealplan.SideDish{
				{Name: "Slaw", Ingredients: []mealplan.Ingredient{ing("cabbage", "½ head", "produce"), ing("lime", "1", "produce")}},
			},
			BeveragePairing: &mealplan.BeveragePairing{
				Cocktails: []mealplan.Cocktail{
					{Name: "Margarita", Ingredients: []mealplan.Ingredient{
						{Item: "tequila", Quantity: "2 oz"},
						{Item: "Lime", Quantity: "1"},
					}},
				},
				Wine: &mealplan.Wine{Type: "Albariño"},
			},
		},
	}
}

func keyed(items []Item) map[string]Item {
	out := make(map[string]Item)
	for _, it := range items {
		out[NormalizeKey(it.Item)] = it
	}
	return out
}

func TestAggregate_Scenario(t *testing.T) {
	items := Aggregate(tacoNight(), Options{})
	require.Len(t, items, 2)

	list := Categorize(items)
	require.Len(t, list, 2)
	assert.Equal(t, CategoryProduce, list[0].Name)
	assert.Equal(t, CategoryProtein, list[1].Name)

	beef := list.Get(CategoryProtein)
	require.Len(t, beef, 1)
	assert.Contains(t, strings.ToLower(beef[0].Item), "beef")
	assert.Equal(t, "Ground Beef", beef[0].Item)
	assert.Equal(t, "2 lb", beef[0].Quantity)
	assert.Equal(t, []string{"Tacos", "Chili"}, beef[0].Sources)
	assert.Equal(t, []string{"m1", "m2"}, beef[0].MealIDs)

	onion := list.Get(CategoryProduce)
	require.Len(t, onion, 1)
	assert.Equal(t, "3", onion[0].Quantity)
	assert.False(t, onion[0].Checked)
}

func TestAggregate_ModifierInsensitive(t *testing.T) {
	meals := []mealplan.Meal{{
		ID: "m1",
		MainDish: &mealplan.Recipe{Name: "Stir Fry", Ingredients: []mealplan.Ingredient{
			ing("Fresh Garlic", "2 cloves", "produce"),
			ing("garlic", "3 cloves", "produce"),
		}},
	}}

	items := Aggregate(meals, Options{})
	require.Len(t, items, 1)
	assert.Equal(t, "Fresh Garlic", items[0].Item)
	assert.Equal(t, "5 cloves", items[0].Quantity)
	assert.Equal(t, []string{"Stir Fry"}, items[0].Sources)
}

func TestAggregate_BeverageGating(t *testing.T) {
	t.Run("Excluded", func(t *testing.T) {
		items := keyed(Aggregate(withCocktail(), Options{IncludeBeverages: false}))

		assert.NotContains(t, items, "tequila")
		for _, it := range items {
			assert.NotEqual(t, []string{"Margarita"}, it.Sources)
		}
		assert.Equal(t, "3", items["lime"].Quantity)
		assert.Equal(t, []string{"Fish Tacos", "Slaw"}, items["lime"].Sources)
	})

	t.Run("Included", func(t *testing.T) {
		items := keyed(Aggregate(withCocktail(), Options{IncludeBeverages: true}))

		require.Contains(t, items, "tequila")
		assert.Equal(t, CategoryBeverages, items["tequila"].Category)
		assert.Equal(t, "2 oz", items["tequila"].Quantity)
		assert.Equal(t, "4", items["lime"].Quantity)
		assert.Equal(t, []string{"Fish Tacos", "Slaw", "Margarita"}, items["lime"].Sources)
		assert.Equal(t, CategoryProduce, items["lime"].Category)
	})

	t.Run("WineNeverItemized", func(t *testing.T) {
		items := keyed(Aggregate(withCocktail(), Options{IncludeBeverages: true}))
		assert.NotContains(t, items, "albariño")
	})
}

func TestAggregate_SkipsBlankAndMalformed(t *testing.T) {
	meals := []mealplan.Meal{
		{ID: "empty"},
		{ID: "a-la-carte", IsAlaCarte: true, SideDishes: []mealplan.SideDish{
			{Name: "Bread", Ingredients: []mealplan.Ingredient{ing("", "1 loaf", "pantry"), ing("   ", "2", ""), ing("baguette", "1", "")}},
		}},
		{ID: "nil-pairing", MainDish: &mealplan.Recipe{Name: "Nothing"}},
	}

	items := Aggregate(meals, Options{IncludeBeverages: true})
	require.Len(t, items, 1)
	assert.Equal(t, "baguette", items[0].Item)
	assert.Equal(t, CategoryOther, items[0].Category)

	assert.Empty(t, Aggregate(nil, Options{}))
}

func TestAggregate_MergeIdentityAndUniqueKeys(t *testing.T) {
	meals := append(tacoNight(), withCocktail()...)
	meals = append(meals, tacoNight()...)

	items := Aggregate(meals, Options{IncludeBeverages: true})
	seen := make(map[string]bool)
	for _, it := range items {
		key := NormalizeKey(it.Item)
		assert.False(t, seen[key], "duplicate key %q", key)
		seen[key] = true
	}

	beef := keyed(items)["beef"]
	assert.Equal(t, "4 lb", beef.Quantity)
	assert.Equal(t, []string{"Tacos", "Chili"}, beef.Sources, "sources are de-duplicated")
}

func TestAggregate_Deterministic(t *testing.T) {
	meals := append(tacoNight(), withCocktail()...)

	first := Aggregate(meals, Options{IncludeBeverages: true})
	second := Aggregate(meals, Options{IncludeBeverages: true})
	require.Len(t, second, len(first))

	firstByKey, secondByKey := keyed(first), keyed(second)
	for key, it := range firstByKey {
		other, ok := secondByKey[key]
		require.True(t, ok, "missing key %q", key)
		assert.Equal(t, it.Quantity, other.Quantity)
		assert.Equal(t, it.Sources, other.Sources)
		assert.NotEqual(t, it.ID, other.ID, "ids are generated per run")
	}
}

func TestAggregate_FromLegacyJSON(t *testing.T) {
	payload := `[{
		"id": "m1",
		"mainDish": {"name": "Pasta", "ingredients": [{"item": "Dried Basil", "quantity": "1 tsp", "category": "spices"}]},
		"sideDish": {"name": "Salad", "ingredients": [{"item": "basil", "quantity": "½ tsp", "category": "spices"}]},
		"beveragePairing": {"cocktail": {"name": "Negroni", "ingredients": [{"item": "gin", "quantity": "1 oz"}]}}
	}]`

	var meals []mealplan.Meal
	require.NoError(t, json.Unmarshal([]byte(payload), &meals))

	items := keyed(Aggregate(meals, Options{IncludeBeverages: true}))
	assert.Equal(t, "1½ tsp", items["basil"].Quantity)
	assert.Equal(t, []string{"Pasta", "Salad"}, items["basil"].Sources)
	assert.Equal(t, CategoryBeverages, items["gin"].Category)
}
