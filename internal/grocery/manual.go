package grocery

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// NewManualItem creates a user-typed entry. The category is canonicalized the
// same way aggregated items are grouped.
func NewManualItem(name, quantity, category string) (Item, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Item{}, ErrEmptyItem
	}
	return Item{
		ID:       uuid.NewString(),
		Item:     name,
		Quantity: strings.TrimSpace(quantity),
		Category: CanonicalCategory(category),
		Sources:  []string{},
		MealIDs:  []string{},
	}, nil
}

func (l *List) AddManualItem(it Item) {
	l.ManualItems = append(l.ManualItems, it)
}

func (l *List) RemoveManualItem(id string) error {
	for i := range l.ManualItems {
		if l.ManualItems[i].ID == id {
			l.ManualItems = append(l.ManualItems[:i], l.ManualItems[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrItemNotFound, id)
}

// SetChecked updates the checked flag of the item with the given id in either
// pool.
func (l *List) SetChecked(id string, checked bool) error {
	if it := l.find(func(it *Item) bool { return it.ID == id }); it != nil {
		it.Checked = checked
		return nil
	}
	return fmt.Errorf("%w: %s", ErrItemNotFound, id)
}

// ToggleByName flips the first item whose display name matches, aggregated
// items first. It returns the updated item.
func (l *List) ToggleByName(name string) (Item, error) {
	it := l.find(func(it *Item) bool { return strings.EqualFold(it.Item, strings.TrimSpace(name)) })
	if it == nil {
		return Item{}, fmt.Errorf("%w: %s", ErrItemNotFound, name)
	}
	it.Checked = !it.Checked
	return *it, nil
}

// ClearChecked unchecks everything, manual items included.
func (l *List) ClearChecked() {
	for i := range l.Items {
		l.Items[i].Checked = false
	}
	for i := range l.ManualItems {
		l.ManualItems[i].Checked = false
	}
}

// Categorized returns the display view of the aggregated items.
func (l List) Categorized() CategorizedList {
	return Categorize(l.Items)
}

// Remaining counts unchecked items across both pools.
func (l List) Remaining() int {
	n := 0
	for _, it := range l.Items {
		if !it.Checked {
			n++
		}
	}
	for _, it := range l.ManualItems {
		if !it.Checked {
			n++
		}
	}
	return n
}

func (l *List) find(match func(*Item) bool) *Item {
	for i := range l.Items {
		if match(&l.Items[i]) {
			return &l.Items[i]
		}
	}
	for i := range l.ManualItems {
		if match(&l.ManualItems[i]) {
			return &l.ManualItems[i]
		}
	}
	return nil
}
