package main

import (
	"math"
	"sort"
	"time"
)

/* ─── Shapes ─────────────────────────────────────────────────────────── */

// dailySummary is one day's energy balance and macro totals.
type dailySummary struct {
	Date             DateOnly `json:"date"`
	CaloriesConsumed int      `json:"calories_consumed"`
	CaloriesBurned   int      `json:"calories_burned"`
	NetCalories      int      `json:"net_calories"`
	ProteinG         float64  `json:"protein_g"`
	CarbsG           float64  `json:"carbs_g"`
	FatG             float64  `json:"fat_g"`
	MealCount        int      `json:"meal_count"`
	WorkoutCount     int      `json:"workout_count"`
	WorkoutMinutes   int      `json:"workout_minutes"`
}

// hasData reports whether anything was logged that day.
func (d dailySummary) hasData() bool {
	return d.MealCount > 0 || d.WorkoutCount > 0
}

// trendPoint is one row of the weekly calorie chart.
type trendPoint struct {
	Date           DateOnly `json:"date"`
	CaloriesIn     int      `json:"calories_in"`
	CaloriesBurned int      `json:"calories_burned"`
}

// overlayPoint is one day of the calorie/weight overlay chart. WeightLogged is
// false when WeightKG was carried forward or came from a fallback.
type overlayPoint struct {
	Date           DateOnly `json:"date"`
	CaloriesIn     int      `json:"calories_in"`
	CaloriesBurned int      `json:"calories_burned"`
	WeightKG       float64  `json:"weight_kg"`
	WeightLogged   bool     `json:"weight_logged"`
	BMR            int      `json:"bmr"`
	TDEE           int      `json:"tdee"`
}

// macroSplit averages macros per logged day and expresses each as a share of
// total grams (not total calories).
type macroSplit struct {
	DaysLogged  int     `json:"days_logged"`
	AvgProteinG float64 `json:"avg_protein_g"`
	AvgCarbsG   float64 `json:"avg_carbs_g"`
	AvgFatG     float64 `json:"avg_fat_g"`
	ProteinPct  float64 `json:"protein_pct"`
	CarbsPct    float64 `json:"carbs_pct"`
	FatPct      float64 `json:"fat_pct"`
}

// weightTrend compares the newest and oldest entries of a window.
type weightTrend struct {
	Direction string  `json:"direction"` // down, up, stable
	DeltaKG   float64 `json:"delta_kg"`
	Favorable bool    `json:"favorable"`
	StartKG   float64 `json:"start_kg"`
	EndKG     float64 `json:"end_kg"`
	Entries   int     `json:"entries"`
}

// weekRollup sums one Monday-starting week.
type weekRollup struct {
	WeekStart      DateOnly `json:"week_start"`
	CaloriesIn     int      `json:"calories_in"`
	CaloriesBurned int      `json:"calories_burned"`
	NetCalories    int      `json:"net_calories"`
	ProteinG       float64  `json:"protein_g"`
	CarbsG         float64  `json:"carbs_g"`
	FatG           float64  `json:"fat_g"`
	WorkoutCount   int      `json:"workout_count"`
	WorkoutMinutes int      `json:"workout_minutes"`
	DistanceKM     float64  `json:"distance_km"`
	DaysLogged     int      `json:"days_logged"`
}

// workoutTypeTotal is the volume for one workout type.
type workoutTypeTotal struct {
	Type       string  `json:"type"`
	Count      int     `json:"count"`
	Minutes    int     `json:"minutes"`
	Calories   int     `json:"calories"`
	DistanceKM float64 `json:"distance_km"`
}

// progressStats summarises a range of logged days against a calorie target.
type progressStats struct {
	DaysTracked         int `json:"days_tracked"`
	DaysOnBudget        int `json:"days_on_budget"`
	AvgCaloriesConsumed int `json:"avg_calories_consumed"`
	AvgCaloriesBurned   int `json:"avg_calories_burned"`
	AvgNetCalories      int `json:"avg_net_calories"`
	TotalCaloriesLeft   int `json:"total_calories_left"`
}

/* ─── Helpers ────────────────────────────────────────────────────────── */

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

func derefInt(i *int) int {
	if i == nil {
		return 0
	}
	return *i
}

func round1(f float64) float64 { return math.Round(f*10) / 10 }

func round2(f float64) float64 { return math.Round(f*100) / 100 }

// dayIndex buckets meals and workouts into per-day summaries keyed by civil day.
func dayIndex(meals []mealEntry, workouts []workoutEntry) map[time.Time]*dailySummary {
	idx := make(map[time.Time]*dailySummary)
	get := func(d time.Time) *dailySummary {
		day := civilDay(d)
		s, ok := idx[day]
		if !ok {
			s = &dailySummary{Date: DateOnly{day}}
			idx[day] = s
		}
		return s
	}
	for _, m := range meals {
		s := get(m.Date.Time)
		s.CaloriesConsumed += m.Calories
		s.ProteinG += deref(m.ProteinG)
		s.CarbsG += deref(m.CarbsG)
		s.FatG += deref(m.FatG)
		s.MealCount++
	}
	for _, w := range workouts {
		s := get(w.Date.Time)
		s.CaloriesBurned += derefInt(w.CaloriesBurned)
		s.WorkoutMinutes += w.DurationMinutes
		s.WorkoutCount++
	}
	for _, s := range idx {
		s.NetCalories = s.CaloriesConsumed - s.CaloriesBurned
	}
	return idx
}

/* ─── Aggregations ───────────────────────────────────────────────────── */

// summarizeDay totals the meals and workouts that fall on date.
func summarizeDay(date time.Time, meals []mealEntry, workouts []workoutEntry) dailySummary {
	day := civilDay(date)
	if s, ok := dayIndex(meals, workouts)[day]; ok {
		return *s
	}
	return dailySummary{Date: DateOnly{day}}
}

// dailySeries returns one summary per day in [start, end]. With onlyLogged the
// empty days are dropped; otherwise they are zero-filled.
func dailySeries(start, end time.Time, meals []mealEntry, workouts []workoutEntry, onlyLogged bool) []dailySummary {
	idx := dayIndex(meals, workouts)
	first, last := civilDay(start), civilDay(end)
	out := []dailySummary{}
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		s, ok := idx[d]
		if !ok {
			if onlyLogged {
				continue
			}
			s = &dailySummary{Date: DateOnly{d}}
		}
		out = append(out, *s)
	}
	return out
}

// weeklyTrend returns seven rows ending today (inclusive), oldest first.
func weeklyTrend(today time.Time, meals []mealEntry, workouts []workoutEntry) []trendPoint {
	series := dailySeries(today.AddDate(0, 0, -6), today, meals, workouts, false)
	points := make([]trendPoint, len(series))
	for i, s := range series {
		points[i] = trendPoint{Date: s.Date, CaloriesIn: s.CaloriesConsumed, CaloriesBurned: s.CaloriesBurned}
	}
	return points
}

// calorieWeightOverlay builds `days` rows ending today. Each day's weight is the
// entry for that day, else the most recent earlier entry, else the fallback
// chain in resolveBodyStats. BMR and TDEE are computed per day from that weight.
func calorieWeightOverlay(today time.Time, days int, meals []mealEntry, workouts []workoutEntry, weights []weightEntry, p profile) []overlayPoint {
	if days <= 0 {
		return []overlayPoint{}
	}
	sorted := sortedWeights(weights)
	series := dailySeries(today.AddDate(0, 0, -(days-1)), today, meals, workouts, false)

	points := make([]overlayPoint, len(series))
	next := 0
	var carried *weightEntry
	for i, s := range series {
		for next < len(sorted) && !civilDay(sorted[next].Date.Time).After(s.Date.Time) {
			carried = &sorted[next]
			next++
		}
		stats := resolveBodyStats(p, carried, s.Date.Time)
		bmr := calculateBMR(stats.WeightKG, stats.HeightCM, stats.AgeYears, stats.Gender)
		points[i] = overlayPoint{
			Date:           s.Date,
			CaloriesIn:     s.CaloriesConsumed,
			CaloriesBurned: s.CaloriesBurned,
			WeightKG:       stats.WeightKG,
			WeightLogged:   carried != nil && civilDay(carried.Date.Time).Equal(s.Date.Time),
			BMR:            bmr,
			TDEE:           calculateTDEE(bmr, activityMultiplier(stats.ActivityLevel)),
		}
	}
	return points
}

// macroDistribution averages protein/carbs/fat per day that has meals and
// reports each macro's share of total grams. Empty input yields zeros.
func macroDistribution(meals []mealEntry) macroSplit {
	var split macroSplit
	days := make(map[time.Time]bool)
	var protein, carbs, fat float64
	for _, m := range meals {
		days[civilDay(m.Date.Time)] = true
		protein += deref(m.ProteinG)
		carbs += deref(m.CarbsG)
		fat += deref(m.FatG)
	}
	split.DaysLogged = len(days)
	if split.DaysLogged == 0 {
		return split
	}
	n := float64(split.DaysLogged)
	split.AvgProteinG = round1(protein / n)
	split.AvgCarbsG = round1(carbs / n)
	split.AvgFatG = round1(fat / n)

	total := protein + carbs + fat
	if total > 0 {
		split.ProteinPct = round1(protein / total * 100)
		split.CarbsPct = round1(carbs / total * 100)
		split.FatPct = round1(fat / total * 100)
	}
	return split
}

// calculateBMI returns weight / height² rounded to two decimals, or 0 when the
// height is not positive.
func calculateBMI(weightKg, heightCm float64) float64 {
	if heightCm <= 0 {
		return 0
	}
	m := heightCm / 100
	return round2(weightKg / (m * m))
}

// bmiCategory maps a BMI to its WHO band.
func bmiCategory(bmi float64) string {
	switch {
	case bmi < 18.5:
		return "Underweight"
	case bmi < 25:
		return "Normal"
	case bmi < 30:
		return "Overweight"
	default:
		return "Obese"
	}
}

// weightTrendThresholdKG is the change below which a trend reads as stable.
// weightTrendEpsilon absorbs float noise so exactly 0.5 kg stays stable.
const (
	weightTrendThresholdKG = 0.5
	weightTrendEpsilon     = 1e-9
)

// weightTrendFor compares the latest and oldest entries. A drop beyond the
// threshold is "down" and favorable, a gain beyond it is "up".
func weightTrendFor(entries []weightEntry) weightTrend {
	trend := weightTrend{Direction: "stable", Favorable: true, Entries: len(entries)}
	if len(entries) == 0 {
		return trend
	}
	sorted := sortedWeights(entries)
	trend.StartKG = sorted[0].WeightKG
	trend.EndKG = sorted[len(sorted)-1].WeightKG
	delta := trend.EndKG - trend.StartKG
	trend.DeltaKG = round2(delta)

	switch {
	case delta < -weightTrendThresholdKG-weightTrendEpsilon:
		trend.Direction = "down"
	case delta > weightTrendThresholdKG+weightTrendEpsilon:
		trend.Direction = "up"
		trend.Favorable = false
	}
	return trend
}

// weeklyRollup groups [start, end] into Monday-starting weeks, zero-filling weeks
// with nothing logged.
func weeklyRollup(start, end time.Time, meals []mealEntry, workouts []workoutEntry) []weekRollup {
	first, last := civilDay(start), civilDay(end)
	if last.Before(first) {
		return []weekRollup{}
	}
	var weeks []weekRollup
	pos := make(map[time.Time]int)
	for w := startOfWeek(first); !w.After(last); w = w.AddDate(0, 0, 7) {
		pos[w] = len(weeks)
		weeks = append(weeks, weekRollup{WeekStart: DateOnly{w}})
	}

	for _, s := range dailySeries(first, last, meals, workouts, true) {
		r := &weeks[pos[startOfWeek(s.Date.Time)]]
		r.CaloriesIn += s.CaloriesConsumed
		r.CaloriesBurned += s.CaloriesBurned
		r.ProteinG += s.ProteinG
		r.CarbsG += s.CarbsG
		r.FatG += s.FatG
		r.WorkoutCount += s.WorkoutCount
		r.WorkoutMinutes += s.WorkoutMinutes
		r.DaysLogged++
	}
	for _, w := range workouts {
		d := civilDay(w.Date.Time)
		if d.Before(first) || d.After(last) {
			continue
		}
		weeks[pos[startOfWeek(d)]].DistanceKM += deref(w.DistanceKM)
	}
	for i := range weeks {
		weeks[i].NetCalories = weeks[i].CaloriesIn - weeks[i].CaloriesBurned
		weeks[i].DistanceKM = round2(weeks[i].DistanceKM)
	}
	return weeks
}

// workoutBreakdown totals workouts per type, sorted by type name.
func workoutBreakdown(workouts []workoutEntry) []workoutTypeTotal {
	byType := make(map[string]*workoutTypeTotal)
	for _, w := range workouts {
		t, ok := byType[w.Type]
		if !ok {
			t = &workoutTypeTotal{Type: w.Type}
			byType[w.Type] = t
		}
		t.Count++
		t.Minutes += w.DurationMinutes
		t.Calories += derefInt(w.CaloriesBurned)
		t.DistanceKM += deref(w.DistanceKM)
	}
	out := make([]workoutTypeTotal, 0, len(byType))
	for _, t := range byType {
		t.DistanceKM = round2(t.DistanceKM)
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

// computeProgress converts logged days into budget adherence and averages.
// A day is on budget when net calories do not exceed target.
func computeProgress(days []dailySummary, target int) progressStats {
	var stats progressStats
	for _, d := range days {
		if !d.hasData() {
			continue
		}
		stats.DaysTracked++
		if d.NetCalories <= target {
			stats.DaysOnBudget++
		}
		stats.AvgCaloriesConsumed += d.CaloriesConsumed
		stats.AvgCaloriesBurned += d.CaloriesBurned
		stats.AvgNetCalories += d.NetCalories
		stats.TotalCaloriesLeft += target - d.NetCalories
	}
	// Convert totals to averages.
	if stats.DaysTracked > 0 {
		stats.AvgCaloriesConsumed /= stats.DaysTracked
		stats.AvgCaloriesBurned /= stats.DaysTracked
		stats.AvgNetCalories /= stats.DaysTracked
	}
	return stats
}

// sortedWeights returns a copy of entries ordered by date ascending.
func sortedWeights(entries []weightEntry) []weightEntry {
	sorted := make([]weightEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date.Time) })
	return sorted
}

// latestWeight returns the newest entry, or nil when there are none.
func latestWeight(entries []weightEntry) *weightEntry {
	if len(entries) == 0 {
		return nil
	}
	sorted := sortedWeights(entries)
	return &sorted[len(sorted)-1]
}
