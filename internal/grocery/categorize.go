package grocery

import (
	"bytes"
	"encoding/json"
	"slices"
	"sort"
	"strings"
)

const (
	CategoryProduce   = "produce"
	CategoryProtein   = "protein"
	CategoryDairy     = "dairy"
	CategoryPantry    = "pantry"
	CategorySpices    = "spices"
	CategoryBeverages = "beverages"
	CategoryOther     = "other"
)

// CategoryOrder is the display order of the store sections.
var CategoryOrder = []string{
	CategoryProduce,
	CategoryProtein,
	CategoryDairy,
	CategoryPantry,
	CategorySpices,
	CategoryBeverages,
	CategoryOther,
}

// CanonicalCategory maps a declared category onto one of CategoryOrder,
// ignoring case. Unknown or empty categories become "other".
func CanonicalCategory(category string) string {
	c := strings.ToLower(strings.TrimSpace(category))
	if slices.Contains(CategoryOrder, c) {
		return c
	}
	return CategoryOther
}

type CategoryGroup struct {
	Name  string
	Items []Item
}

// CategorizedList holds the non-empty categories in CategoryOrder. It encodes
// as a JSON object keyed by category name, preserving that order.
type CategorizedList []CategoryGroup

// Categorize groups items by category and sorts each group alphabetically by
// display name. The items themselves are not modified.
func Categorize(items []Item) CategorizedList {
	buckets := make(map[string][]Item)
	for _, it := range items {
		cat := CanonicalCategory(it.Category)
		buckets[cat] = append(buckets[cat], it)
	}

	out := CategorizedList{}
	for _, name := range CategoryOrder {
		group := buckets[name]
		if len(group) == 0 {
			continue
		}
		sortByName(group)
		out = append(out, CategoryGroup{Name: name, Items: group})
	}
	return out
}

// Flatten concatenates the groups in display order.
func Flatten(list CategorizedList) []Item {
	items := []Item{}
	for _, g := range list {
		items = append(items, g.Items...)
	}
	return items
}

// Get returns the items of one category, or nil.
func (c CategorizedList) Get(category string) []Item {
	for _, g := range c {
		if g.Name == category {
			return g.Items
		}
	}
	return nil
}

func (c CategorizedList) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, g := range c {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(g.Name)
		if err != nil {
			return nil, err
		}
		items := g.Items
		if items == nil {
			items = []Item{}
		}
		body, err := json.Marshal(items)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(body)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (c *CategorizedList) UnmarshalJSON(data []byte) error {
	var raw map[string][]Item
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		ri, rj := categoryRank(names[i]), categoryRank(names[j])
		if ri != rj {
			return ri < rj
		}
		return names[i] < names[j]
	})

	out := make(CategorizedList, 0, len(names))
	for _, name := range names {
		out = append(out, CategoryGroup{Name: name, Items: raw[name]})
	}
	*c = out
	return nil
}

func categoryRank(name string) int {
	if idx := slices.Index(CategoryOrder, name); idx >= 0 {
		return idx
	}
	return len(CategoryOrder)
}

func sortByName(items []Item) {
	slices.SortStableFunc(items, func(a, b Item) int {
		return strings.Compare(strings.ToLower(a.Item), strings.ToLower(b.Item))
	})
}
