package mealplan

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Meal payloads come from the generator and from older clients, so decoding is
// lenient: a field with an unexpected shape is dropped instead of failing the
// whole document.

func (i *Ingredient) UnmarshalJSON(data []byte) error {
	*i = Ingredient{}
	fields := objectFields(data)
	i.Item = textField(fields, "item")
	i.Quantity = textField(fields, "quantity")
	i.Category = textField(fields, "category")
	return nil
}

func (r *Recipe) UnmarshalJSON(data []byte) error {
	*r = Recipe{}
	fields := objectFields(data)
	r.Name = textField(fields, "name")
	r.Description = textField(fields, "description")
	r.Ingredients = ingredientsField(fields)
	r.PrepTime = textField(fields, "prepTime")
	r.Servings = intField(fields, "servings")

	if raw, ok := fields["instructions"]; ok {
		var steps []string
		if json.Unmarshal(raw, &steps) == nil {
			r.Instructions = steps
		} else if s := textValue(raw); s != "" {
			r.Instructions = []string{s}
		}
	}
	return nil
}

func (s *SideDish) UnmarshalJSON(data []byte) error {
	*s = SideDish{}
	fields := objectFields(data)
	s.Name = textField(fields, "name")
	s.Description = textField(fields, "description")
	s.Ingredients = ingredientsField(fields)
	s.PrepTime = textField(fields, "prepTime")
	return nil
}

func (c *Cocktail) UnmarshalJSON(data []byte) error {
	*c = Cocktail{}
	fields := objectFields(data)
	c.Name = textField(fields, "name")
	c.Description = textField(fields, "description")
	c.Ingredients = ingredientsField(fields)
	return nil
}

func (w *Wine) UnmarshalJSON(data []byte) error {
	*w = Wine{}
	fields := objectFields(data)
	w.Type = textField(fields, "type")
	w.Description = textField(fields, "description")
	return nil
}

func (b *BeveragePairing) UnmarshalJSON(data []byte) error {
	*b = BeveragePairing{}
	fields := objectFields(data)

	var cocktails []Cocktail
	if raw, ok := fields["cocktails"]; ok && isArray(raw) {
		_ = json.Unmarshal(raw, &cocktails)
	}
	if raw, ok := fields["cocktail"]; ok && isObject(raw) {
		var legacy Cocktail
		_ = json.Unmarshal(raw, &legacy)
		if !hasCocktail(cocktails, legacy.Name) {
			cocktails = append([]Cocktail{legacy}, cocktails...)
		}
	}
	b.Cocktails = cocktails

	if raw, ok := fields["wine"]; ok && isObject(raw) {
		var w Wine
		_ = json.Unmarshal(raw, &w)
		b.Wine = &w
	}
	return nil
}

func (m *Meal) UnmarshalJSON(data []byte) error {
	*m = Meal{}
	fields := objectFields(data)
	m.ID = textField(fields, "id")
	m.Day = textField(fields, "day")
	m.Servings = intField(fields, "servings")

	if raw, ok := fields["isAlaCarte"]; ok {
		_ = json.Unmarshal(raw, &m.IsAlaCarte)
	}

	if raw, ok := fields["mainDish"]; ok && isObject(raw) {
		var r Recipe
		_ = json.Unmarshal(raw, &r)
		m.MainDish = &r
	}

	var sides []SideDish
	if raw, ok := fields["sideDishes"]; ok && isArray(raw) {
		_ = json.Unmarshal(raw, &sides)
	}
	if raw, ok := fields["sideDish"]; ok && isObject(raw) {
		var legacy SideDish
		_ = json.Unmarshal(raw, &legacy)
		if !hasSideDish(sides, legacy.Name) {
			sides = append([]SideDish{legacy}, sides...)
		}
	}
	m.SideDishes = sides

	if raw, ok := fields["beveragePairing"]; ok && isObject(raw) {
		var bp BeveragePairing
		_ = json.Unmarshal(raw, &bp)
		m.BeveragePairing = &bp
	}
	return nil
}

func objectFields(data []byte) map[string]json.RawMessage {
	if !isObject(data) {
		return nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil
	}
	return fields
}

func textField(fields map[string]json.RawMessage, key string) string {
	raw, ok := fields[key]
	if !ok {
		return ""
	}
	return textValue(raw)
}

// textValue accepts a JSON string or number; anything else is empty.
func textValue(raw json.RawMessage) string {
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var n float64
	if json.Unmarshal(raw, &n) == nil {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	return ""
}

func intField(fields map[string]json.RawMessage, key string) int {
	raw, ok := fields[key]
	if !ok {
		return 0
	}
	var n float64
	if json.Unmarshal(raw, &n) == nil {
		return int(n)
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		if v, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return v
		}
	}
	return 0
}

func ingredientsField(fields map[string]json.RawMessage) []Ingredient {
	raw, ok := fields["ingredients"]
	if !ok || !isArray(raw) {
		return nil
	}
	var ingredients []Ingredient
	_ = json.Unmarshal(raw, &ingredients)
	return ingredients
}

func isObject(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

func isArray(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && trimmed[0] == '['
}

// IsJSONArray reports whether data holds a JSON array at the top level.
func IsJSONArray(data []byte) bool {
	return isArray(data)
}

func hasCocktail(cocktails []Cocktail, name string) bool {
	for _, c := range cocktails {
		if strings.EqualFold(c.Name, name) {
			return true
		}
	}
	return false
}

func hasSideDish(sides []SideDish, name string) bool {
	for _, s := range sides {
		if strings.EqualFold(s.Name, name) {
			return true
		}
	}
	return false
}
