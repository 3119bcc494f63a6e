package main

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

const dateLayout = "2006-01-02"

// DateOnly wraps time.Time to serialize as "YYYY-MM-DD" in JSON.
type DateOnly struct{ time.Time }

func (d DateOnly) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Time.Format(dateLayout) + `"`), nil
}

func (d *DateOnly) UnmarshalJSON(b []byte) error {
	t, err := time.Parse(`"`+dateLayout+`"`, string(b))
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// ScanDate implements pgtype.DateScanner so pgx can scan PostgreSQL date
// columns (OID 1082) into DateOnly. NULL values zero the time and return nil
// so that *DateOnly pointer fields can be set to nil by pgx's NULL handling.
func (d *DateOnly) ScanDate(v pgtype.Date) error {
	if !v.Valid {
		d.Time = time.Time{}
		return nil
	}
	d.Time = v.Time
	return nil
}

// Key returns the calendar date as "YYYY-MM-DD", used to bucket records by day.
func (d DateOnly) Key() string {
	return d.Time.Format(dateLayout)
}

/* ─── Domain structs ─────────────────────────────────────────────────── */

// user maps to the users table. AuthToken and Password are hidden from JSON responses.
type user struct {
	ID        int        `json:"id" db:"id"`
	Username  string     `json:"username" db:"username"`
	Email     string     `json:"email" db:"email"`
	AuthToken string     `json:"-" db:"auth_token"`
	Password  string     `json:"-" db:"password"`
	CreatedAt *time.Time `json:"created_at" db:"created_at"`
}

// profile maps to the profiles table. One row per user; every body field is
// nullable so a fresh account still renders (missing values fall back to
// defaultProfile).
type profile struct {
	UserID         int       `json:"user_id"          db:"user_id"`
	Gender         *string   `json:"gender"           db:"gender"`
	DateOfBirth    *DateOnly `json:"date_of_birth"    db:"date_of_birth"`
	HeightCM       *float64  `json:"height_cm"        db:"height_cm"`
	TargetCalories *int      `json:"target_calories"  db:"target_calories"`
	ActivityLevel  *string   `json:"activity_level"   db:"activity_level"`
	Goal           *string   `json:"goal"             db:"goal"`
	TargetWeightKG *float64  `json:"target_weight_kg" db:"target_weight_kg"`

	// Computed fields, populated server-side and never stored.
	ComputedAge    *int `json:"computed_age,omitempty"    db:"-"`
	ComputedBMR    *int `json:"computed_bmr,omitempty"    db:"-"`
	ComputedTDEE   *int `json:"computed_tdee,omitempty"   db:"-"`
	ComputedTarget *int `json:"computed_target,omitempty" db:"-"`
}

// preferences maps to user_preferences: display language and theme.
type preferences struct {
	UserID   int    `json:"-"        db:"user_id"`
	Language string `json:"language" db:"language"`
	Theme    string `json:"theme"    db:"theme"`
}

// weightEntry maps to weight_entries. At most one row per (user, date).
type weightEntry struct {
	ID         int        `json:"id"           db:"id"`
	UserID     int        `json:"user_id"      db:"user_id"`
	Date       DateOnly   `json:"date"         db:"date"`
	WeightKG   float64    `json:"weight_kg"    db:"weight_kg"`
	BodyFatPct *float64   `json:"body_fat_pct" db:"body_fat_pct"`
	WaistCM    *float64   `json:"waist_cm"     db:"waist_cm"`
	HipsCM     *float64   `json:"hips_cm"      db:"hips_cm"`
	ChestCM    *float64   `json:"chest_cm"     db:"chest_cm"`
	Notes      *string    `json:"notes"        db:"notes"`
	CreatedAt  *time.Time `json:"created_at"   db:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at"   db:"updated_at"`
}

// mealEntry maps to meal_entries. Macro columns are nullable.
type mealEntry struct {
	ID        int        `json:"id"         db:"id"`
	UserID    int        `json:"user_id"    db:"user_id"`
	Date      DateOnly   `json:"date"       db:"date"`
	MealType  string     `json:"meal_type"  db:"meal_type"`
	Name      string     `json:"name"       db:"name"`
	Calories  int        `json:"calories"   db:"calories"`
	ProteinG  *float64   `json:"protein_g"  db:"protein_g"`
	CarbsG    *float64   `json:"carbs_g"    db:"carbs_g"`
	FatG      *float64   `json:"fat_g"      db:"fat_g"`
	CreatedAt *time.Time `json:"created_at" db:"created_at"`
	UpdatedAt *time.Time `json:"updated_at" db:"updated_at"`
}

// workoutEntry maps to workout_entries. DistanceKM is only set for
// distance-bearing workout types.
type workoutEntry struct {
	ID              int        `json:"id"               db:"id"`
	UserID          int        `json:"user_id"          db:"user_id"`
	Date            DateOnly   `json:"date"             db:"date"`
	Type            string     `json:"type"             db:"type"`
	Name            *string    `json:"name"             db:"name"`
	DurationMinutes int        `json:"duration_minutes" db:"duration_minutes"`
	DistanceKM      *float64   `json:"distance_km"      db:"distance_km"`
	CaloriesBurned  *int       `json:"calories_burned"  db:"calories_burned"`
	Notes           *string    `json:"notes"            db:"notes"`
	CreatedAt       *time.Time `json:"created_at"       db:"created_at"`
	UpdatedAt       *time.Time `json:"updated_at"       db:"updated_at"`
}

// habit maps to habits: a daily recurring target.
type habit struct {
	ID          int        `json:"id"           db:"id"`
	UserID      int        `json:"user_id"      db:"user_id"`
	Name        string     `json:"name"         db:"name"`
	TargetValue float64    `json:"target_value" db:"target_value"`
	Unit        *string    `json:"unit"         db:"unit"`
	IsActive    bool       `json:"is_active"    db:"is_active"`
	CreatedAt   *time.Time `json:"created_at"   db:"created_at"`
}

// habitLog maps to habit_logs. At most one row per (habit, date); Completed is
// written as value >= target_value whenever the row changes.
type habitLog struct {
	ID        int        `json:"id"         db:"id"`
	UserID    int        `json:"user_id"    db:"user_id"`
	HabitID   int        `json:"habit_id"   db:"habit_id"`
	Date      DateOnly   `json:"date"       db:"date"`
	Value     float64    `json:"value"      db:"value"`
	Completed bool       `json:"completed"  db:"completed"`
	CreatedAt *time.Time `json:"created_at" db:"created_at"`
	UpdatedAt *time.Time `json:"updated_at" db:"updated_at"`
}

// journalEntry maps to journal_entries. ContentHTML is rendered on the way out.
type journalEntry struct {
	ID          int        `json:"id"           db:"id"`
	UserID      int        `json:"user_id"      db:"user_id"`
	Date        DateOnly   `json:"date"         db:"date"`
	Mood        string     `json:"mood"         db:"mood"`
	EnergyLevel int        `json:"energy_level" db:"energy_level"`
	Content     string     `json:"content"      db:"content"`
	ContentHTML string     `json:"content_html" db:"-"`
	CreatedAt   *time.Time `json:"created_at"   db:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"   db:"updated_at"`
}
