package main

import (
	"testing"
	"time"
)

func meal(d time.Time, kcal int, protein, carbs, fat *float64) mealEntry {
	return mealEntry{Date: DateOnly{d}, MealType: "lunch", Name: "test", Calories: kcal, ProteinG: protein, CarbsG: carbs, FatG: fat}
}

func workout(d time.Time, typ string, minutes, kcal int, km *float64) workoutEntry {
	return workoutEntry{Date: DateOnly{d}, Type: typ, DurationMinutes: minutes, CaloriesBurned: &kcal, DistanceKM: km}
}

/* ─── Daily summaries ────────────────────────────────────────────────── */

// TestSummarizeDay: two meals of 300 and 500 and one 200 kcal workout.
func TestSummarizeDay(t *testing.T) {
	today := day(2026, time.October, 17)
	meals := []mealEntry{
		meal(today, 300, ptr(20.0), nil, nil),
		meal(today, 500, ptr(10.0), ptr(40.0), nil),
		meal(today.AddDate(0, 0, -1), 900, nil, nil, nil),
	}
	workouts := []workoutEntry{workout(today, "cardio", 25, 200, nil)}

	got := summarizeDay(today, meals, workouts)
	if got.CaloriesConsumed != 800 || got.CaloriesBurned != 200 || got.NetCalories != 600 {
		t.Errorf("summary = %+v, want consumed 800 burned 200 net 600", got)
	}
	if got.ProteinG != 30 || got.CarbsG != 40 || got.FatG != 0 {
		t.Errorf("macros = %v/%v/%v, want 30/40/0", got.ProteinG, got.CarbsG, got.FatG)
	}
	if got.MealCount != 2 || got.WorkoutCount != 1 || got.WorkoutMinutes != 25 {
		t.Errorf("counts = %+v", got)
	}
}

func TestSummarizeDay_Empty(t *testing.T) {
	today := day(2026, time.October, 17)
	got := summarizeDay(today, nil, nil)
	if got.hasData() || got.NetCalories != 0 || !got.Date.Equal(today) {
		t.Errorf("empty day = %+v", got)
	}
}

// TestSummarizeDay_WorkoutWithoutCalories counts a nil calories_burned as 0.
func TestSummarizeDay_WorkoutWithoutCalories(t *testing.T) {
	today := day(2026, time.October, 17)
	w := workoutEntry{Date: DateOnly{today}, Type: "yoga", DurationMinutes: 30}
	got := summarizeDay(today, nil, []workoutEntry{w})
	if got.CaloriesBurned != 0 || got.WorkoutCount != 1 {
		t.Errorf("summary = %+v", got)
	}
}

func TestDailySeries(t *testing.T) {
	start := day(2026, time.October, 10)
	end := day(2026, time.October, 14)
	meals := []mealEntry{meal(day(2026, time.October, 12), 400, nil, nil, nil)}

	filled := dailySeries(start, end, meals, nil, false)
	if len(filled) != 5 {
		t.Fatalf("zero-filled len = %d, want 5", len(filled))
	}
	if filled[2].CaloriesConsumed != 400 || filled[0].CaloriesConsumed != 0 {
		t.Errorf("filled = %+v", filled)
	}

	logged := dailySeries(start, end, meals, nil, true)
	if len(logged) != 1 || !logged[0].Date.Equal(day(2026, time.October, 12)) {
		t.Errorf("onlyLogged = %+v", logged)
	}

	if got := dailySeries(end, start, meals, nil, false); len(got) != 0 {
		t.Errorf("inverted range should be empty, got %d rows", len(got))
	}
}

func TestWeeklyTrend(t *testing.T) {
	today := day(2026, time.October, 17)
	meals := []mealEntry{
		meal(today, 1200, nil, nil, nil),
		meal(today.AddDate(0, 0, -6), 800, nil, nil, nil),
		meal(today.AddDate(0, 0, -7), 5000, nil, nil, nil),
	}
	got := weeklyTrend(today, meals, nil)
	if len(got) != 7 {
		t.Fatalf("len = %d, want 7", len(got))
	}
	if !got[0].Date.Equal(today.AddDate(0, 0, -6)) || !got[6].Date.Equal(today) {
		t.Errorf("range = %s..%s", got[0].Date.Key(), got[6].Date.Key())
	}
	if got[0].CaloriesIn != 800 || got[6].CaloriesIn != 1200 || got[3].CaloriesIn != 0 {
		t.Errorf("points = %+v", got)
	}
}

/* ─── Overlay ────────────────────────────────────────────────────────── */

// TestCalorieWeightOverlay_CarryForward: the day before the first entry uses
// the default 70kg; later days carry 80kg forward. BMR at 80kg with default
// height/age is 1717.5 → 1718, sedentary TDEE 2061.6 → 2062.
func TestCalorieWeightOverlay_CarryForward(t *testing.T) {
	today := day(2026, time.October, 17)
	weights := []weightEntry{{Date: DateOnly{today.AddDate(0, 0, -2)}, WeightKG: 80}}

	got := calorieWeightOverlay(today, 4, nil, nil, weights, profile{})
	if len(got) != 4 {
		t.Fatalf("len = %d, want 4", len(got))
	}
	wantWeights := []float64{70, 80, 80, 80}
	wantLogged := []bool{false, true, false, false}
	for i, p := range got {
		if p.WeightKG != wantWeights[i] || p.WeightLogged != wantLogged[i] {
			t.Errorf("day %d: weight %v logged %v, want %v %v", i, p.WeightKG, p.WeightLogged, wantWeights[i], wantLogged[i])
		}
	}
	if got[0].BMR != 1618 || got[3].BMR != 1718 || got[3].TDEE != 2062 {
		t.Errorf("energy = %+v / %+v", got[0], got[3])
	}
}

func TestCalorieWeightOverlay_TargetWeightFallback(t *testing.T) {
	today := day(2026, time.October, 17)
	got := calorieWeightOverlay(today, 2, nil, nil, nil, profile{TargetWeightKG: ptr(65.0)})
	for _, p := range got {
		if p.WeightKG != 65 || p.WeightLogged {
			t.Errorf("point = %+v, want 65kg not logged", p)
		}
	}
}

func TestCalorieWeightOverlay_NoDays(t *testing.T) {
	if got := calorieWeightOverlay(day(2026, time.October, 17), 0, nil, nil, nil, profile{}); len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}

/* ─── Macros ─────────────────────────────────────────────────────────── */

// TestMacroDistribution averages per logged day (two days here) and reports
// shares of total grams: 60/100/40 of 200g.
func TestMacroDistribution(t *testing.T) {
	d1, d2 := day(2026, time.October, 16), day(2026, time.October, 17)
	meals := []mealEntry{
		meal(d1, 500, ptr(30.0), ptr(50.0), ptr(20.0)),
		meal(d1, 100, ptr(10.0), nil, nil),
		meal(d2, 600, ptr(20.0), ptr(50.0), ptr(20.0)),
	}
	got := macroDistribution(meals)
	want := macroSplit{DaysLogged: 2, AvgProteinG: 30, AvgCarbsG: 50, AvgFatG: 20, ProteinPct: 30, CarbsPct: 50, FatPct: 20}
	if got != want {
		t.Errorf("macroDistribution = %+v, want %+v", got, want)
	}
}

func TestMacroDistribution_Empty(t *testing.T) {
	if got := macroDistribution(nil); got != (macroSplit{}) {
		t.Errorf("empty = %+v", got)
	}
	// Meals without macros: a logged day but no percentages.
	got := macroDistribution([]mealEntry{meal(day(2026, time.October, 17), 300, nil, nil, nil)})
	if got.DaysLogged != 1 || got.ProteinPct != 0 {
		t.Errorf("no macros = %+v", got)
	}
}

/* ─── BMI ────────────────────────────────────────────────────────────── */

func TestCalculateBMI(t *testing.T) {
	if got := calculateBMI(74.5, 170); got != 25.78 {
		t.Errorf("calculateBMI(74.5, 170) = %v, want 25.78", got)
	}
	if got := calculateBMI(70, 0); got != 0 {
		t.Errorf("zero height = %v, want 0", got)
	}
	if got := calculateBMI(70, -170); got != 0 {
		t.Errorf("negative height = %v, want 0", got)
	}
}

func TestBMICategory(t *testing.T) {
	cases := []struct {
		bmi  float64
		want string
	}{
		{17.9, "Underweight"},
		{18.5, "Normal"},
		{24.99, "Normal"},
		{25, "Overweight"},
		{25.78, "Overweight"},
		{30, "Obese"},
	}
	for _, tc := range cases {
		if got := bmiCategory(tc.bmi); got != tc.want {
			t.Errorf("bmiCategory(%v) = %q, want %q", tc.bmi, got, tc.want)
		}
	}
}

/* ─── Weight trend ───────────────────────────────────────────────────── */

func TestWeightTrendFor(t *testing.T) {
	d := day(2026, time.October, 1)
	series := func(kgs ...float64) []weightEntry {
		out := make([]weightEntry, len(kgs))
		for i, kg := range kgs {
			// Reverse date order to check sorting.
			out[i] = weightEntry{Date: DateOnly{d.AddDate(0, 0, len(kgs)-i)}, WeightKG: kg}
		}
		return out
	}
	cases := []struct {
		name      string
		entries   []weightEntry
		direction string
		delta     float64
		favorable bool
	}{
		{"empty is stable", nil, "stable", 0, true},
		{"single entry", series(80), "stable", 0, true},
		{"loss", series(79, 79.5, 80), "down", -1, true},
		{"within threshold", series(80.3, 80), "stable", 0.3, true},
		{"gain", series(81, 80), "up", 1, false},
		{"exactly half a kilo down", series(79.5, 80), "stable", -0.5, true},
		{"exactly half a kilo up", series(80.5, 80), "stable", 0.5, true},
		// -0.504 kg is reported as -0.50 but still crosses the threshold.
		{"just past threshold down", series(79.5, 80.004), "down", -0.5, true},
		{"just past threshold up", series(80.504, 80), "up", 0.5, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := weightTrendFor(tc.entries)
			if got.Direction != tc.direction || got.DeltaKG != tc.delta || got.Favorable != tc.favorable {
				t.Errorf("weightTrendFor = %+v, want %s %v favorable=%v", got, tc.direction, tc.delta, tc.favorable)
			}
		})
	}
}

func TestLatestWeight(t *testing.T) {
	if latestWeight(nil) != nil {
		t.Error("latestWeight(nil) should be nil")
	}
	entries := []weightEntry{
		{Date: DateOnly{day(2026, time.October, 17)}, WeightKG: 78},
		{Date: DateOnly{day(2026, time.October, 1)}, WeightKG: 80},
	}
	if got := latestWeight(entries); got.WeightKG != 78 {
		t.Errorf("latestWeight = %v, want 78", got.WeightKG)
	}
}

/* ─── Rollups ────────────────────────────────────────────────────────── */

func TestWeeklyRollup(t *testing.T) {
	start := day(2026, time.October, 8) // Thursday; first week starts Monday the 5th
	end := day(2026, time.October, 17)
	meals := []mealEntry{
		meal(day(2026, time.October, 8), 300, nil, nil, nil),
		meal(day(2026, time.October, 14), 500, nil, nil, nil),
		meal(day(2026, time.October, 1), 9999, nil, nil, nil),
	}
	workouts := []workoutEntry{workout(day(2026, time.October, 14), "cycling", 30, 200, ptr(5.25))}

	got := weeklyRollup(start, end, meals, workouts)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if !got[0].WeekStart.Equal(day(2026, time.October, 5)) || !got[1].WeekStart.Equal(day(2026, time.October, 12)) {
		t.Errorf("week starts = %s, %s", got[0].WeekStart.Key(), got[1].WeekStart.Key())
	}
	if got[0].CaloriesIn != 300 || got[0].DaysLogged != 1 {
		t.Errorf("week 1 = %+v", got[0])
	}
	w2 := got[1]
	if w2.CaloriesIn != 500 || w2.CaloriesBurned != 200 || w2.NetCalories != 300 || w2.DistanceKM != 5.25 || w2.WorkoutCount != 1 {
		t.Errorf("week 2 = %+v", w2)
	}
}

func TestWeeklyRollup_EmptyWeeksZeroFilled(t *testing.T) {
	got := weeklyRollup(day(2026, time.September, 28), day(2026, time.October, 17), nil, nil)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	for _, w := range got {
		if w.DaysLogged != 0 || w.CaloriesIn != 0 {
			t.Errorf("week %s not zero: %+v", w.WeekStart.Key(), w)
		}
	}
}

func TestWorkoutBreakdown(t *testing.T) {
	d := day(2026, time.October, 17)
	got := workoutBreakdown([]workoutEntry{
		workout(d, "yoga", 60, 200, nil),
		workout(d, "cycling", 30, 250, ptr(10.0)),
		workout(d, "cycling", 45, 350, ptr(15.5)),
	})
	want := []workoutTypeTotal{
		{Type: "cycling", Count: 2, Minutes: 75, Calories: 600, DistanceKM: 25.5},
		{Type: "yoga", Count: 1, Minutes: 60, Calories: 200},
	}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestComputeProgress(t *testing.T) {
	days := []dailySummary{
		{CaloriesConsumed: 2000, NetCalories: 2000, MealCount: 1},
		{CaloriesConsumed: 2500, CaloriesBurned: 300, NetCalories: 2200, MealCount: 2, WorkoutCount: 1},
		{},
	}
	got := computeProgress(days, 2100)
	want := progressStats{DaysTracked: 2, DaysOnBudget: 1, AvgCaloriesConsumed: 2250, AvgCaloriesBurned: 150, AvgNetCalories: 2100, TotalCaloriesLeft: 0}
	if got != want {
		t.Errorf("computeProgress = %+v, want %+v", got, want)
	}
	if got := computeProgress(nil, 2000); got != (progressStats{}) {
		t.Errorf("empty = %+v", got)
	}
}
