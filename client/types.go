package client

// Meal mirrors a meal entry as the API returns it. Dates are YYYY-MM-DD.
type Meal struct {
	ID       int      `json:"id"`
	Date     string   `json:"date"`
	MealType string   `json:"meal_type"`
	Name     string   `json:"name"`
	Calories int      `json:"calories"`
	ProteinG *float64 `json:"protein_g"`
	CarbsG   *float64 `json:"carbs_g"`
	FatG     *float64 `json:"fat_g"`
}

// MealInput is the body for creating a meal.
type MealInput struct {
	Date     string   `json:"date,omitempty"`
	MealType string   `json:"meal_type"`
	Name     string   `json:"name"`
	Calories int      `json:"calories"`
	ProteinG *float64 `json:"protein_g,omitempty"`
	CarbsG   *float64 `json:"carbs_g,omitempty"`
	FatG     *float64 `json:"fat_g,omitempty"`
}

// MealPatch is a partial meal update.
type MealPatch struct {
	MealType *string  `json:"meal_type,omitempty"`
	Name     *string  `json:"name,omitempty"`
	Calories *int     `json:"calories,omitempty"`
	ProteinG *float64 `json:"protein_g,omitempty"`
	CarbsG   *float64 `json:"carbs_g,omitempty"`
	FatG     *float64 `json:"fat_g,omitempty"`
}

// MealDay is one day's meals and totals.
type MealDay struct {
	Date     string         `json:"date"`
	Items    []Meal         `json:"items"`
	ByType   map[string]int `json:"calories_by_meal_type"`
	Calories int            `json:"calories"`
	ProteinG float64        `json:"protein_g"`
	CarbsG   float64        `json:"carbs_g"`
	FatG     float64        `json:"fat_g"`
}

type HabitStats struct {
	CurrentStreak  int     `json:"current_streak"`
	LongestStreak  int     `json:"longest_streak"`
	CompletionRate float64 `json:"completion_rate"`
	DoneToday      bool    `json:"done_today"`
	Rule           string  `json:"rule"`
}

type Habit struct {
	ID          int        `json:"id"`
	Name        string     `json:"name"`
	TargetValue float64    `json:"target_value"`
	Unit        *string    `json:"unit"`
	IsActive    bool       `json:"is_active"`
	Stats       HabitStats `json:"stats"`
}

type HabitLog struct {
	ID        int     `json:"id"`
	HabitID   int     `json:"habit_id"`
	Date      string  `json:"date"`
	Value     float64 `json:"value"`
	Completed bool    `json:"completed"`
}

// Dashboard holds the dashboard fields the terminal client prints.
type Dashboard struct {
	Date       string  `json:"date"`
	Remaining  int     `json:"remaining_calories"`
	BMI        float64 `json:"bmi"`
	HabitsDone float64 `json:"habits_done_pct"`
	Energy     struct {
		BMR    int `json:"bmr"`
		TDEE   int `json:"tdee"`
		Target int `json:"target"`
	} `json:"energy"`
	Habits  []Habit           `json:"habits"`
	Display map[string]string `json:"display"`
}
