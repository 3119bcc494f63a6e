package client

import (
	"context"
	"sync/atomic"
)

// MealBook edits one day's meals optimistically.
type MealBook struct {
	client *Client
	date   string
	list   *List[Meal]
	nextID atomic.Int64 // placeholder ids for unsaved meals are negative
}

func mealKey(m Meal) int { return m.ID }

// OpenMealBook loads the meals for date (empty means today).
func (c *Client) OpenMealBook(ctx context.Context, date string) (*MealBook, error) {
	day, err := c.Meals(ctx, date)
	if err != nil {
		return nil, err
	}
	return &MealBook{client: c, date: day.Date, list: NewList(day.Items, mealKey)}, nil
}

// Date is the day the book covers, as the server resolved it.
func (b *MealBook) Date() string { return b.date }

// Meals returns the visible meals, including one still being saved.
func (b *MealBook) Meals() []Meal { return b.list.Items() }

// Calories totals the visible meals.
func (b *MealBook) Calories() int {
	total := 0
	for _, m := range b.list.Items() {
		total += m.Calories
	}
	return total
}

// Add shows the meal at once under a placeholder id and swaps in the saved row.
func (b *MealBook) Add(ctx context.Context, in MealInput) (Meal, error) {
	if in.Date == "" {
		in.Date = b.date
	}
	placeholder := Meal{
		ID:       int(b.nextID.Add(-1)),
		Date:     in.Date,
		MealType: in.MealType,
		Name:     in.Name,
		Calories: in.Calories,
		ProteinG: in.ProteinG,
		CarbsG:   in.CarbsG,
		FatG:     in.FatG,
	}
	return b.list.Insert(ctx, placeholder, func(ctx context.Context) (Meal, error) {
		return b.client.CreateMeal(ctx, in)
	})
}

// Update applies patch locally and sends it.
func (b *MealBook) Update(ctx context.Context, id int, patch MealPatch) (Meal, error) {
	current, ok := b.list.Get(id)
	if !ok {
		return Meal{}, ErrNotInList
	}
	if patch.MealType != nil {
		current.MealType = *patch.MealType
	}
	if patch.Name != nil {
		current.Name = *patch.Name
	}
	if patch.Calories != nil {
		current.Calories = *patch.Calories
	}
	if patch.ProteinG != nil {
		current.ProteinG = patch.ProteinG
	}
	if patch.CarbsG != nil {
		current.CarbsG = patch.CarbsG
	}
	if patch.FatG != nil {
		current.FatG = patch.FatG
	}
	return b.list.Replace(ctx, current, func(ctx context.Context) (Meal, error) {
		return b.client.UpdateMeal(ctx, id, patch)
	})
}

// Delete hides the meal and deletes it on the server.
func (b *MealBook) Delete(ctx context.Context, id int) error {
	return b.list.Remove(ctx, id, func(ctx context.Context) error {
		return b.client.DeleteMeal(ctx, id)
	})
}

// Refresh reloads the day from the server.
func (b *MealBook) Refresh(ctx context.Context) error {
	day, err := b.client.Meals(ctx, b.date)
	if err != nil {
		return err
	}
	return b.list.Reset(day.Items)
}
