package mealplan

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// AddMeal appends a meal to the plan and returns it as stored.
func (p *Plan) AddMeal(m Meal) Meal {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.MainDish == nil {
		m.IsAlaCarte = true
	}
	p.Meals = append(p.Meals, m)
	return m
}

func (p *Plan) RemoveMeal(id string) error {
	idx := p.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrMealNotFound, id)
	}
	p.Meals = append(p.Meals[:idx], p.Meals[idx+1:]...)
	return nil
}

// ReplaceMeal swaps the meal in place, keeping its id and day.
func (p *Plan) ReplaceMeal(id string, m Meal) error {
	idx := p.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrMealNotFound, id)
	}
	m.ID = id
	if m.Day == "" {
		m.Day = p.Meals[idx].Day
	}
	if m.MainDish == nil {
		m.IsAlaCarte = true
	}
	p.Meals[idx] = m
	return nil
}

// Meal returns a pointer into the plan so callers can mutate it.
func (p *Plan) Meal(id string) (*Meal, error) {
	idx := p.indexOf(id)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrMealNotFound, id)
	}
	return &p.Meals[idx], nil
}

func (p *Plan) AddSideDish(mealID string, sd SideDish) error {
	m, err := p.Meal(mealID)
	if err != nil {
		return err
	}
	m.SideDishes = append(m.SideDishes, sd)
	return nil
}

func (p *Plan) RemoveSideDish(mealID, name string) error {
	m, err := p.Meal(mealID)
	if err != nil {
		return err
	}
	for i, sd := range m.SideDishes {
		if strings.EqualFold(sd.Name, name) {
			m.SideDishes = append(m.SideDishes[:i], m.SideDishes[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrSideDishNotFound, name)
}

func (p *Plan) AddCocktail(mealID string, c Cocktail) error {
	m, err := p.Meal(mealID)
	if err != nil {
		return err
	}
	if m.BeveragePairing == nil {
		m.BeveragePairing = &BeveragePairing{}
	}
	m.BeveragePairing.Cocktails = append(m.BeveragePairing.Cocktails, c)
	return nil
}

func (p *Plan) RemoveCocktail(mealID, name string) error {
	m, err := p.Meal(mealID)
	if err != nil {
		return err
	}
	if m.BeveragePairing != nil {
		for i, c := range m.BeveragePairing.Cocktails {
			if strings.EqualFold(c.Name, name) {
				m.BeveragePairing.Cocktails = append(m.BeveragePairing.Cocktails[:i], m.BeveragePairing.Cocktails[i+1:]...)
				return nil
			}
		}
	}
	return fmt.Errorf("%w: %s", ErrCocktailNotFound, name)
}

// SetWine replaces the wine suggestion; nil clears it.
func (p *Plan) SetWine(mealID string, w *Wine) error {
	m, err := p.Meal(mealID)
	if err != nil {
		return err
	}
	if m.BeveragePairing == nil {
		if w == nil {
			return nil
		}
		m.BeveragePairing = &BeveragePairing{}
	}
	m.BeveragePairing.Wine = w
	return nil
}

// SetBeveragePairing replaces the whole pairing of a meal.
func (p *Plan) SetBeveragePairing(mealID string, bp *BeveragePairing) error {
	m, err := p.Meal(mealID)
	if err != nil {
		return err
	}
	m.BeveragePairing = bp
	return nil
}

func (p *Plan) indexOf(id string) int {
	for i := range p.Meals {
		if p.Meals[i].ID == id {
			return i
		}
	}
	return -1
}
